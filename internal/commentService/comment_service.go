package comment

import (
	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"
	"context"
	"fmt"
	"strings"
	"time"
)

type CommentService struct {
	repo repository.AuctionDB
}

func NewCommentService(repo repository.AuctionDB) *CommentService {
	return &CommentService{repo: repo}
}

// AddComment appends a comment to a listing. Blank text is rejected.
func (s *CommentService) AddComment(ctx context.Context, listingID, userID, text string) (models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return models.Comment{}, fmt.Errorf("service: %w - listing %s", auctionerrors.ErrEmptyText, listingID)
	}
	if userID == "" {
		return models.Comment{}, fmt.Errorf("service: %w - missing userID", auctionerrors.ErrUnauthenticated)
	}

	comment := models.Comment{
		CommentID: utils.GenerateID(),
		ListingID: listingID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.AddComment(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("service: failed to add comment to listing %s: %w", listingID, err)
	}
	return comment, nil
}

// Comments returns a listing's comments in insertion order
func (s *CommentService) Comments(ctx context.Context, listingID string) ([]models.Comment, error) {
	comments, err := s.repo.GetComments(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get comments for listing %s: %w", listingID, err)
	}
	return comments, nil
}

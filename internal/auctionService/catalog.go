package auction

import (
	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/utils"
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLength        = 100
	maxCategoryNameLength = 50
)

// NewListing carries the owner-supplied fields of a listing to be created
type NewListing struct {
	Title       string
	Description string
	ImageURL    string
	StartingBid models.Money
	CategoryID  string
}

// CreateListing validates the input and stores an active listing owned by ownerID
func (s *AuctionService) CreateListing(ctx context.Context, ownerID string, in NewListing) (models.Listing, error) {
	if ownerID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - missing owner", auctionerrors.ErrUnauthenticated)
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	switch {
	case title == "":
		return models.Listing{}, fmt.Errorf("service: %w - empty title", auctionerrors.ErrInvalidListing)
	case utf8.RuneCountInString(title) > maxTitleLength:
		return models.Listing{}, fmt.Errorf("service: %w - title longer than %d characters", auctionerrors.ErrInvalidListing, maxTitleLength)
	case description == "":
		return models.Listing{}, fmt.Errorf("service: %w - empty description", auctionerrors.ErrInvalidListing)
	case in.StartingBid <= 0 || in.StartingBid > models.MaxMoney:
		return models.Listing{}, fmt.Errorf("service: %w - starting bid out of range", auctionerrors.ErrInvalidListing)
	}

	listing := models.Listing{
		ListingID:   utils.GenerateID(),
		Title:       title,
		Description: description,
		IsActive:    true,
		StartingBid: in.StartingBid,
		OwnerID:     ownerID,
		CreatedAt:   s.now(),
	}

	if raw := strings.TrimSpace(in.ImageURL); raw != "" {
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return models.Listing{}, fmt.Errorf("service: %w - invalid image URL", auctionerrors.ErrInvalidListing)
		}
		listing.ImageURL = &raw
	}

	if categoryID := strings.TrimSpace(in.CategoryID); categoryID != "" {
		listing.CategoryID = &categoryID
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to create listing: %w", err)
	}

	utils.Info("listing created", map[string]any{
		"listing_id":   listing.ListingID,
		"owner_id":     ownerID,
		"starting_bid": listing.StartingBid.String(),
	})
	return listing, nil
}

// GetListing returns a single listing
func (s *AuctionService) GetListing(ctx context.Context, listingID string) (models.Listing, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	return listing, nil
}

// ListActiveListings returns every active listing, newest first
func (s *AuctionService) ListActiveListings(ctx context.Context) ([]models.Listing, error) {
	listings, err := s.repo.ListActiveListings(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("service: failed to list active listings: %w", err)
	}
	return listings, nil
}

func (s *AuctionService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

// CategoryListings returns a category and its active listings
func (s *AuctionService) CategoryListings(ctx context.Context, categoryID string) (models.Category, []models.Listing, error) {
	category, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return models.Category{}, nil, fmt.Errorf("service: failed to get category %s: %w", categoryID, err)
	}

	listings, err := s.repo.ListActiveListings(ctx, categoryID)
	if err != nil {
		return models.Category{}, nil, fmt.Errorf("service: failed to list listings of category %s: %w", categoryID, err)
	}
	return category, listings, nil
}

// SeedCategories creates the named categories when the store has none yet.
// It returns how many were created.
func (s *AuctionService) SeedCategories(ctx context.Context, names []string) (int, error) {
	existing, err := s.repo.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("service: failed to list categories: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	seen := make(map[string]bool, len(names))
	created := 0
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		if utf8.RuneCountInString(name) > maxCategoryNameLength {
			return created, fmt.Errorf("service: category name %q longer than %d characters", name, maxCategoryNameLength)
		}
		seen[name] = true

		if err := s.repo.CreateCategory(ctx, models.Category{CategoryID: utils.GenerateID(), Name: name}); err != nil {
			return created, fmt.Errorf("service: failed to seed category %q: %w", name, err)
		}
		created++
	}
	return created, nil
}

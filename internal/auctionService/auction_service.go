package auction

import (
	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"
	"context"
	"errors"
	"fmt"
	"time"
)

// maxWriteAttempts bounds the re-read/re-validate loop when a listing changes under us
const maxWriteAttempts = 3

// AuctionService holds the auction rules: bidding, closing and winner resolution
type AuctionService struct {
	repo repository.AuctionDB
	now  func() time.Time
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB) *AuctionService {
	return &AuctionService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// PlaceBid validates and records a bid. With no bids yet the amount must reach the
// starting bid; otherwise it must beat the highest bid by at least models.MinIncrement.
func (s *AuctionService) PlaceBid(ctx context.Context, listingID, bidderID string, amount models.Money) (models.Bid, error) {
	if listingID == "" || bidderID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing listingID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	for attempt := 1; ; attempt++ {
		listing, err := s.repo.GetListing(ctx, listingID)
		if err != nil {
			return models.Bid{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
		}

		if err := s.validateBid(ctx, listing, bidderID, amount); err != nil {
			return models.Bid{}, err
		}

		bid := models.Bid{
			BidID:     utils.GenerateID(),
			ListingID: listingID,
			BidderID:  bidderID,
			Amount:    amount,
			CreatedAt: s.now(),
		}

		err = s.repo.RecordBid(ctx, bid, listing.Version)
		if err == nil {
			return bid, nil
		}
		if !errors.Is(err, auctionerrors.ErrConcurrentUpdate) || attempt == maxWriteAttempts {
			return models.Bid{}, fmt.Errorf("service: failed to record bid for listing %s by user %s: %w", listingID, bidderID, err)
		}

		utils.Debug("listing changed while bidding, retrying", map[string]any{
			"listing_id": listingID,
			"attempt":    attempt,
		})
	}
}

// validateBid checks the lifecycle, ownership and amount rules against a listing snapshot
func (s *AuctionService) validateBid(ctx context.Context, listing models.Listing, bidderID string, amount models.Money) error {
	if !listing.IsActive {
		return fmt.Errorf("service: %w - listing %s", auctionerrors.ErrAuctionClosed, listing.ListingID)
	}
	if listing.OwnerID == bidderID {
		return fmt.Errorf("service: %w - listing %s", auctionerrors.ErrOwnerCannotBid, listing.ListingID)
	}

	highest, err := s.repo.GetHighestBid(ctx, listing.ListingID)
	switch {
	case errors.Is(err, auctionerrors.ErrNoBids):
		if amount < listing.StartingBid {
			return fmt.Errorf("service: %w - must be at least the starting bid of %s", auctionerrors.ErrBidTooLow, listing.StartingBid)
		}
	case err != nil:
		return fmt.Errorf("service: failed to check highest bid: %w", err)
	default:
		if amount < highest.Amount+models.MinIncrement {
			return fmt.Errorf("service: %w - current highest bid is %s", auctionerrors.ErrBidTooLow, highest.Amount)
		}
	}
	return nil
}

// CloseAuction ends an auction on behalf of its owner and fixes the winner
// to the highest bidder, if any
func (s *AuctionService) CloseAuction(ctx context.Context, listingID, requesterID string) (models.Listing, error) {
	for attempt := 1; ; attempt++ {
		listing, err := s.repo.GetListing(ctx, listingID)
		if err != nil {
			return models.Listing{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
		}

		if listing.OwnerID != requesterID {
			return models.Listing{}, fmt.Errorf("service: %w - listing %s", auctionerrors.ErrNotOwner, listingID)
		}
		if !listing.IsActive {
			return models.Listing{}, fmt.Errorf("service: %w - listing %s", auctionerrors.ErrAlreadyClosed, listingID)
		}

		winnerID, err := s.highestBidder(ctx, listingID)
		if err != nil {
			return models.Listing{}, err
		}

		err = s.repo.CloseListing(ctx, listingID, winnerID, listing.Version)
		if err == nil {
			listing.IsActive = false
			listing.WinnerID = winnerID
			listing.Version++
			return listing, nil
		}
		if !errors.Is(err, auctionerrors.ErrConcurrentUpdate) || attempt == maxWriteAttempts {
			return models.Listing{}, fmt.Errorf("service: failed to close listing %s: %w", listingID, err)
		}
	}
}

// ResolveWinnerIfMissing assigns the winner of a closed listing that has none.
// It is a no-op for active listings and for listings that already have a winner.
func (s *AuctionService) ResolveWinnerIfMissing(ctx context.Context, listingID string) (models.Listing, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}
	if listing.IsActive || listing.WinnerID != nil {
		return listing, nil
	}

	winnerID, err := s.highestBidder(ctx, listingID)
	if err != nil || winnerID == nil {
		return listing, err
	}

	if err := s.repo.SetWinner(ctx, listingID, *winnerID); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to set winner for listing %s: %w", listingID, err)
	}

	// re-read: a concurrent closure may have set a winner first
	listing, err = s.repo.GetListing(ctx, listingID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to reload listing %s: %w", listingID, err)
	}
	return listing, nil
}

// highestBidder returns the bidder of the highest bid, or nil when there are no bids
func (s *AuctionService) highestBidder(ctx context.Context, listingID string) (*string, error) {
	highest, err := s.HighestBid(ctx, listingID)
	if err != nil || highest == nil {
		return nil, err
	}
	return &highest.BidderID, nil
}

// HighestBid returns the highest bid for a listing, or nil if nobody has bid yet
func (s *AuctionService) HighestBid(ctx context.Context, listingID string) (*models.Bid, error) {
	if listingID == "" {
		return nil, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrInvalidBid)
	}

	highest, err := s.repo.GetHighestBid(ctx, listingID)
	if errors.Is(err, auctionerrors.ErrNoBids) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("service: failed to get highest bid for listing %s: %w", listingID, err)
	}
	return &highest, nil
}

// GetBidsForListing returns the bid history of a listing, oldest first
func (s *AuctionService) GetBidsForListing(ctx context.Context, listingID string) ([]models.Bid, error) {
	if listingID == "" {
		return nil, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for listing %s: %w", listingID, err)
	}
	return bids, nil
}

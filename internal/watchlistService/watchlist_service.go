package watchlist

import (
	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"context"
	"errors"
	"fmt"
)

// WatchlistService manages each user's saved set of listings
type WatchlistService struct {
	repo repository.AuctionDB
}

// NewWatchlistService creates a new WatchlistService instance
func NewWatchlistService(repo repository.AuctionDB) *WatchlistService {
	return &WatchlistService{repo: repo}
}

// Toggle adds the listing to the user's watchlist, or removes it if already present.
// It returns the membership after the toggle.
func (s *WatchlistService) Toggle(ctx context.Context, userID, listingID string) (bool, error) {
	if _, err := s.repo.GetListing(ctx, listingID); err != nil {
		return false, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}

	wl, err := s.repo.GetOrCreateWatchlist(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("service: failed to get watchlist for user %s: %w", userID, err)
	}

	contains, err := s.repo.WatchlistContains(ctx, wl.WatchlistID, listingID)
	if err != nil {
		return false, fmt.Errorf("service: failed to check watchlist for user %s: %w", userID, err)
	}

	if contains {
		if err := s.repo.RemoveFromWatchlist(ctx, wl.WatchlistID, listingID); err != nil {
			return false, fmt.Errorf("service: failed to remove listing %s from watchlist: %w", listingID, err)
		}
		return false, nil
	}

	if err := s.repo.AddToWatchlist(ctx, wl.WatchlistID, listingID); err != nil {
		return false, fmt.Errorf("service: failed to add listing %s to watchlist: %w", listingID, err)
	}
	return true, nil
}

// Remove drops the listing from the user's watchlist. A missing watchlist or
// membership is not an error; an unknown listing is.
func (s *WatchlistService) Remove(ctx context.Context, userID, listingID string) error {
	if _, err := s.repo.GetListing(ctx, listingID); err != nil {
		return fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}

	wl, err := s.repo.FindWatchlist(ctx, userID)
	if errors.Is(err, auctionerrors.ErrWatchlistNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("service: failed to find watchlist for user %s: %w", userID, err)
	}

	if err := s.repo.RemoveFromWatchlist(ctx, wl.WatchlistID, listingID); err != nil {
		return fmt.Errorf("service: failed to remove listing %s from watchlist: %w", listingID, err)
	}
	return nil
}

// Contains reports membership; a user without a watchlist watches nothing
func (s *WatchlistService) Contains(ctx context.Context, userID, listingID string) (bool, error) {
	wl, err := s.repo.FindWatchlist(ctx, userID)
	if errors.Is(err, auctionerrors.ErrWatchlistNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("service: failed to find watchlist for user %s: %w", userID, err)
	}

	contains, err := s.repo.WatchlistContains(ctx, wl.WatchlistID, listingID)
	if err != nil {
		return false, fmt.Errorf("service: failed to check watchlist for user %s: %w", userID, err)
	}
	return contains, nil
}

// Count returns the size of the user's watchlist, creating an empty one if needed
func (s *WatchlistService) Count(ctx context.Context, userID string) (int, error) {
	wl, err := s.repo.GetOrCreateWatchlist(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("service: failed to get watchlist for user %s: %w", userID, err)
	}

	count, err := s.repo.CountWatchlist(ctx, wl.WatchlistID)
	if err != nil {
		return 0, fmt.Errorf("service: failed to count watchlist for user %s: %w", userID, err)
	}
	return count, nil
}

// Listings returns the watched listings, creating an empty watchlist if needed
func (s *WatchlistService) Listings(ctx context.Context, userID string) ([]models.Listing, error) {
	wl, err := s.repo.GetOrCreateWatchlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get watchlist for user %s: %w", userID, err)
	}

	listings, err := s.repo.WatchlistListings(ctx, wl.WatchlistID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list watchlist for user %s: %w", userID, err)
	}
	return listings, nil
}

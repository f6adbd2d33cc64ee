package watchlist

import (
	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func seededRepo(t *testing.T, listingIDs ...string) *repository.MemoryRepo {
	t.Helper()

	repo := repository.NewMemoryRepo()
	for i, id := range listingIDs {
		require.NoError(t, repo.CreateListing(context.Background(), models.Listing{
			ListingID:   id,
			Title:       id,
			Description: id,
			IsActive:    true,
			StartingBid: 100,
			OwnerID:     "owner",
			CreatedAt:   time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC),
		}))
	}
	return repo
}

func TestWatchlistService_ToggleIsItsOwnInverse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := NewWatchlistService(seededRepo(t, "listing1"))

	before, err := service.Contains(ctx, "user1", "listing1")
	require.NoError(t, err)
	require.False(t, before)

	on, err := service.Toggle(ctx, "user1", "listing1")
	require.NoError(t, err)
	require.True(t, on)

	contains, err := service.Contains(ctx, "user1", "listing1")
	require.NoError(t, err)
	require.True(t, contains)

	off, err := service.Toggle(ctx, "user1", "listing1")
	require.NoError(t, err)
	require.False(t, off)

	after, err := service.Contains(ctx, "user1", "listing1")
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestWatchlistService_Toggle_UnknownListing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := seededRepo(t)
	service := NewWatchlistService(repo)

	_, err := service.Toggle(ctx, "user1", "missing")
	require.True(t, errors.Is(err, auctionerrors.ErrListingNotFound), "expected error: %v, got: %v", auctionerrors.ErrListingNotFound, err)

	// no watchlist is created for a failed toggle
	_, err = repo.FindWatchlist(ctx, "user1")
	require.True(t, errors.Is(err, auctionerrors.ErrWatchlistNotFound))
}

func TestWatchlistService_Remove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := NewWatchlistService(seededRepo(t, "listing1", "listing2"))

	// no watchlist yet
	require.NoError(t, service.Remove(ctx, "user1", "listing1"))

	_, err := service.Toggle(ctx, "user1", "listing1")
	require.NoError(t, err)
	_, err = service.Toggle(ctx, "user1", "listing2")
	require.NoError(t, err)

	require.NoError(t, service.Remove(ctx, "user1", "listing1"))
	// not a member any more
	require.NoError(t, service.Remove(ctx, "user1", "listing1"))

	contains, err := service.Contains(ctx, "user1", "listing1")
	require.NoError(t, err)
	require.False(t, contains)

	count, err := service.Count(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	err = service.Remove(ctx, "user1", "missing")
	require.True(t, errors.Is(err, auctionerrors.ErrNotFound))
}

func TestWatchlistService_CountAndListings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := seededRepo(t, "listing1", "listing2", "listing3")
	service := NewWatchlistService(repo)

	count, err := service.Count(ctx, "fresh")
	require.NoError(t, err)
	require.Zero(t, count)

	// Count creates the watchlist lazily
	_, err = repo.FindWatchlist(ctx, "fresh")
	require.NoError(t, err)

	for _, id := range []string{"listing1", "listing3"} {
		_, err := service.Toggle(ctx, "user1", id)
		require.NoError(t, err)
	}

	count, err = service.Count(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	listings, err := service.Listings(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, listings, 2)
	require.Equal(t, "listing3", listings[0].ListingID)
	require.Equal(t, "listing1", listings[1].ListingID)

	empty, err := service.Listings(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, empty)
}

// Tests storage failures surface wrapped
func TestWatchlistService_RepoErrors(t *testing.T) {
	t.Parallel()

	repoErr := errors.New("db down")

	tests := []struct {
		name      string
		mockSetup func(m *repository.MockAuctionDB)
		call      func(s *WatchlistService) error
	}{
		{
			name: "toggle_watchlist_lookup_fails",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetListing(gomock.Any(), "listing1").Return(models.Listing{ListingID: "listing1"}, nil)
				m.EXPECT().GetOrCreateWatchlist(gomock.Any(), "user1").Return(models.Watchlist{}, repoErr)
			},
			call: func(s *WatchlistService) error {
				_, err := s.Toggle(context.Background(), "user1", "listing1")
				return err
			},
		},
		{
			name: "toggle_add_fails",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetListing(gomock.Any(), "listing1").Return(models.Listing{ListingID: "listing1"}, nil)
				m.EXPECT().GetOrCreateWatchlist(gomock.Any(), "user1").Return(models.Watchlist{WatchlistID: "wl1"}, nil)
				m.EXPECT().WatchlistContains(gomock.Any(), "wl1", "listing1").Return(false, nil)
				m.EXPECT().AddToWatchlist(gomock.Any(), "wl1", "listing1").Return(repoErr)
			},
			call: func(s *WatchlistService) error {
				_, err := s.Toggle(context.Background(), "user1", "listing1")
				return err
			},
		},
		{
			name: "contains_lookup_fails",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().FindWatchlist(gomock.Any(), "user1").Return(models.Watchlist{}, repoErr)
			},
			call: func(s *WatchlistService) error {
				_, err := s.Contains(context.Background(), "user1", "listing1")
				return err
			},
		},
		{
			name: "count_fails",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().GetOrCreateWatchlist(gomock.Any(), "user1").Return(models.Watchlist{WatchlistID: "wl1"}, nil)
				m.EXPECT().CountWatchlist(gomock.Any(), "wl1").Return(0, repoErr)
			},
			call: func(s *WatchlistService) error {
				_, err := s.Count(context.Background(), "user1")
				return err
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := repository.NewMockAuctionDB(ctrl)
			tc.mockSetup(mockRepo)

			err := tc.call(NewWatchlistService(mockRepo))
			require.True(t, errors.Is(err, repoErr), "expected error: %v, got: %v", repoErr, err)
		})
	}
}

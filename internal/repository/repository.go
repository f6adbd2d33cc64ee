package repository

import (
	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/utils"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

//go:generate mockgen -destination=mock_repository.go -package=repository auction-marketplace/internal/repository AuctionDB

// AuctionDB defines the storage interface for the marketplace
type AuctionDB interface {
	GetOrCreateUser(ctx context.Context, username string) (model.User, error)
	GetUser(ctx context.Context, userID string) (model.User, error)

	CreateCategory(ctx context.Context, category model.Category) error
	GetCategory(ctx context.Context, categoryID string) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error

	CreateListing(ctx context.Context, listing model.Listing) error
	GetListing(ctx context.Context, listingID string) (model.Listing, error)
	ListActiveListings(ctx context.Context, categoryID string) ([]model.Listing, error)

	RecordBid(ctx context.Context, bid model.Bid, expectedVersion int64) error
	GetHighestBid(ctx context.Context, listingID string) (model.Bid, error)
	GetBidsByListing(ctx context.Context, listingID string) ([]model.Bid, error)
	CloseListing(ctx context.Context, listingID string, winnerID *string, expectedVersion int64) error
	SetWinner(ctx context.Context, listingID, winnerID string) error

	AddComment(ctx context.Context, comment model.Comment) error
	GetComments(ctx context.Context, listingID string) ([]model.Comment, error)

	GetOrCreateWatchlist(ctx context.Context, userID string) (model.Watchlist, error)
	FindWatchlist(ctx context.Context, userID string) (model.Watchlist, error)
	AddToWatchlist(ctx context.Context, watchlistID, listingID string) error
	RemoveFromWatchlist(ctx context.Context, watchlistID, listingID string) error
	WatchlistContains(ctx context.Context, watchlistID, listingID string) (bool, error)
	WatchlistListings(ctx context.Context, watchlistID string) ([]model.Listing, error)
	CountWatchlist(ctx context.Context, watchlistID string) (int, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu             sync.RWMutex
	users          map[string]model.User           // key: userID
	usernames      map[string]string               // key: username -> userID
	categories     map[string]model.Category       // key: categoryID
	listings       map[string]model.Listing        // key: listingID
	bids           map[string][]model.Bid          // key: listingID -> bids in arrival order
	comments       map[string][]model.Comment      // key: listingID -> comments in arrival order
	watchlists     map[string]model.Watchlist      // key: userID
	watchlistItems map[string]map[string]time.Time // key: watchlistID -> listingID -> added at
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:          make(map[string]model.User),
		usernames:      make(map[string]string),
		categories:     make(map[string]model.Category),
		listings:       make(map[string]model.Listing),
		bids:           make(map[string][]model.Bid),
		comments:       make(map[string][]model.Comment),
		watchlists:     make(map[string]model.Watchlist),
		watchlistItems: make(map[string]map[string]time.Time),
	}
}

// GetOrCreateUser returns the user with the given username, creating it on first use
func (r *MemoryRepo) GetOrCreateUser(_ context.Context, username string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.usernames[username]; ok {
		return r.users[id], nil
	}

	user := model.User{
		UserID:    utils.GenerateID(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	r.users[user.UserID] = user
	r.usernames[username] = user.UserID
	return user, nil
}

// GetUser returns a user by ID
func (r *MemoryRepo) GetUser(_ context.Context, userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// CreateCategory stores a new category
func (r *MemoryRepo) CreateCategory(_ context.Context, category model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[category.CategoryID] = category
	return nil
}

// GetCategory returns a category by ID
func (r *MemoryRepo) GetCategory(_ context.Context, categoryID string) (model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[categoryID]
	if !ok {
		return model.Category{}, fmt.Errorf("get category %s: %w", categoryID, auctionerrors.ErrCategoryNotFound)
	}
	return category, nil
}

// ListCategories returns all categories ordered by name
func (r *MemoryRepo) ListCategories(_ context.Context) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// DeleteCategory removes a category and detaches its listings
func (r *MemoryRepo) DeleteCategory(_ context.Context, categoryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[categoryID]; !ok {
		return fmt.Errorf("delete category %s: %w", categoryID, auctionerrors.ErrCategoryNotFound)
	}
	delete(r.categories, categoryID)

	for id, l := range r.listings {
		if l.CategoryID != nil && *l.CategoryID == categoryID {
			l.CategoryID = nil
			r.listings[id] = l
		}
	}
	return nil
}

// CreateListing stores a new listing
func (r *MemoryRepo) CreateListing(_ context.Context, listing model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if listing.CategoryID != nil {
		if _, ok := r.categories[*listing.CategoryID]; !ok {
			return fmt.Errorf("create listing %s: %w", listing.ListingID, auctionerrors.ErrCategoryNotFound)
		}
	}
	r.listings[listing.ListingID] = listing
	return nil
}

// GetListing returns a listing by ID
func (r *MemoryRepo) GetListing(_ context.Context, listingID string) (model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return listing, nil
}

// ListActiveListings returns active listings, newest first, optionally filtered by category
func (r *MemoryRepo) ListActiveListings(_ context.Context, categoryID string) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings := make([]model.Listing, 0)
	for _, l := range r.listings {
		if !l.IsActive {
			continue
		}
		if categoryID != "" && (l.CategoryID == nil || *l.CategoryID != categoryID) {
			continue
		}
		listings = append(listings, l)
	}
	sortNewestFirst(listings)
	return listings, nil
}

// RecordBid appends a bid and mirrors its amount into the listing's current bid.
// The write only happens if the listing is active and still at expectedVersion.
func (r *MemoryRepo) RecordBid(_ context.Context, bid model.Bid, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[bid.ListingID]
	if !ok {
		return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, auctionerrors.ErrListingNotFound)
	}
	if !listing.IsActive || listing.Version != expectedVersion {
		return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, auctionerrors.ErrConcurrentUpdate)
	}

	r.bids[bid.ListingID] = append(r.bids[bid.ListingID], bid)

	amount := bid.Amount
	listing.CurrentBid = &amount
	listing.Version++
	r.listings[bid.ListingID] = listing
	return nil
}

// GetHighestBid returns the highest bid for a listing; the earliest wins a tie
func (r *MemoryRepo) GetHighestBid(_ context.Context, listingID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := r.bids[listingID]
	if len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, auctionerrors.ErrNoBids)
	}

	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > highest.Amount || (b.Amount == highest.Amount && b.CreatedAt.Before(highest.CreatedAt)) {
			highest = b
		}
	}
	return highest, nil
}

// GetBidsByListing returns all bids for a listing, oldest first
func (r *MemoryRepo) GetBidsByListing(_ context.Context, listingID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return append([]model.Bid{}, r.bids[listingID]...), nil
}

// CloseListing deactivates a listing and fixes its winner, guarded like RecordBid
func (r *MemoryRepo) CloseListing(_ context.Context, listingID string, winnerID *string, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return fmt.Errorf("close listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if !listing.IsActive || listing.Version != expectedVersion {
		return fmt.Errorf("close listing %s: %w", listingID, auctionerrors.ErrConcurrentUpdate)
	}

	listing.IsActive = false
	listing.WinnerID = copyString(winnerID)
	listing.Version++
	r.listings[listingID] = listing
	return nil
}

// SetWinner records the winner of a closed listing that has none yet
func (r *MemoryRepo) SetWinner(_ context.Context, listingID, winnerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return fmt.Errorf("set winner for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if listing.IsActive || listing.WinnerID != nil {
		return nil
	}

	listing.WinnerID = &winnerID
	listing.Version++
	r.listings[listingID] = listing
	return nil
}

// AddComment appends a comment to a listing
func (r *MemoryRepo) AddComment(_ context.Context, comment model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[comment.ListingID]; !ok {
		return fmt.Errorf("add comment to listing %s: %w", comment.ListingID, auctionerrors.ErrListingNotFound)
	}
	r.comments[comment.ListingID] = append(r.comments[comment.ListingID], comment)
	return nil
}

// GetComments returns a listing's comments in the order they were added
func (r *MemoryRepo) GetComments(_ context.Context, listingID string) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Comment{}, r.comments[listingID]...), nil
}

// GetOrCreateWatchlist returns the user's watchlist, creating an empty one if absent
func (r *MemoryRepo) GetOrCreateWatchlist(_ context.Context, userID string) (model.Watchlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if wl, ok := r.watchlists[userID]; ok {
		return wl, nil
	}

	wl := model.Watchlist{
		WatchlistID: utils.GenerateID(),
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}
	r.watchlists[userID] = wl
	r.watchlistItems[wl.WatchlistID] = make(map[string]time.Time)
	return wl, nil
}

// FindWatchlist returns the user's watchlist without creating it
func (r *MemoryRepo) FindWatchlist(_ context.Context, userID string) (model.Watchlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wl, ok := r.watchlists[userID]
	if !ok {
		return model.Watchlist{}, fmt.Errorf("find watchlist for user %s: %w", userID, auctionerrors.ErrWatchlistNotFound)
	}
	return wl, nil
}

// AddToWatchlist adds a listing to a watchlist; adding twice is a no-op
func (r *MemoryRepo) AddToWatchlist(_ context.Context, watchlistID, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, ok := r.watchlistItems[watchlistID]
	if !ok {
		return fmt.Errorf("add to watchlist %s: %w", watchlistID, auctionerrors.ErrWatchlistNotFound)
	}
	if _, ok := r.listings[listingID]; !ok {
		return fmt.Errorf("add listing %s to watchlist: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if _, exists := items[listingID]; !exists {
		items[listingID] = time.Now().UTC()
	}
	return nil
}

// RemoveFromWatchlist removes a listing from a watchlist if present
func (r *MemoryRepo) RemoveFromWatchlist(_ context.Context, watchlistID, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if items, ok := r.watchlistItems[watchlistID]; ok {
		delete(items, listingID)
	}
	return nil
}

// WatchlistContains reports whether a listing is in a watchlist
func (r *MemoryRepo) WatchlistContains(_ context.Context, watchlistID, listingID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.watchlistItems[watchlistID][listingID]
	return ok, nil
}

// WatchlistListings returns the listings of a watchlist, newest listing first
func (r *MemoryRepo) WatchlistListings(_ context.Context, watchlistID string) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.watchlistItems[watchlistID]
	listings := make([]model.Listing, 0, len(items))
	for id := range items {
		if l, ok := r.listings[id]; ok {
			listings = append(listings, l)
		}
	}
	sortNewestFirst(listings)
	return listings, nil
}

// CountWatchlist returns the number of listings in a watchlist
func (r *MemoryRepo) CountWatchlist(_ context.Context, watchlistID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.watchlistItems[watchlistID]), nil
}

func sortNewestFirst(listings []model.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

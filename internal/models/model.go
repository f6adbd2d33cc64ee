package models

import "time"

// User represents a participant in the marketplace
type User struct {
	UserID    string    `json:"user_id" db:"id"`
	Username  string    `json:"username" db:"username"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Category is an optional grouping for listings
type Category struct {
	CategoryID string `json:"category_id" db:"id"`
	Name       string `json:"name" db:"name"`
}

// Listing represents an item up for auction.
// CurrentBid mirrors the highest bid amount; WinnerID is set only once the auction is closed.
type Listing struct {
	ListingID   string    `json:"listing_id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	ImageURL    *string   `json:"image_url" db:"image_url"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	StartingBid Money     `json:"starting_bid" db:"starting_bid"`
	CurrentBid  *Money    `json:"current_bid" db:"current_bid"`
	CategoryID  *string   `json:"category_id" db:"category_id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	WinnerID    *string   `json:"winner_id" db:"winner_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// Version is bumped by every bid or closure write and guards them against lost updates
	Version int64 `json:"-" db:"version"`
}

// Bid represents a user's offer on a listing. Bids are never updated or deleted.
type Bid struct {
	BidID     string    `json:"bid_id" db:"id"`
	ListingID string    `json:"listing_id" db:"listing_id"`
	BidderID  string    `json:"bidder_id" db:"bidder_id"`
	Amount    Money     `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Comment is an immutable free-text note on a listing
type Comment struct {
	CommentID string    `json:"comment_id" db:"id"`
	ListingID string    `json:"listing_id" db:"listing_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Watchlist is a user's saved set of listings; at most one per user
type Watchlist struct {
	WatchlistID string    `json:"watchlist_id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

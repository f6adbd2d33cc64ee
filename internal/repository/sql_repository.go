package repository

import (
	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/utils"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const listingColumns = "id, title, description, image_url, is_active, starting_bid, current_bid, category_id, owner_id, winner_id, created_at, version"

// SQLRepo implements AuctionDB on top of sqlx. Queries are written with '?'
// placeholders and rebound for the driver, so Postgres and SQLite share them.
type SQLRepo struct {
	db *sqlx.DB
}

// NewSQLRepo wraps an open database handle
func NewSQLRepo(db *sqlx.DB) *SQLRepo {
	return &SQLRepo{db: db}
}

func prefixedListingColumns(alias string) string {
	cols := strings.Split(listingColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// GetOrCreateUser returns the user with the given username, creating it on first use
func (r *SQLRepo) GetOrCreateUser(ctx context.Context, username string) (model.User, error) {
	user := model.User{
		UserID:    utils.GenerateID(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, username, created_at)
		VALUES (:id, :username, :created_at)
		ON CONFLICT (username) DO NOTHING
	`, user)
	if err != nil {
		return model.User{}, fmt.Errorf("insert user %s: %w", username, err)
	}

	var stored model.User
	q := r.db.Rebind(`SELECT id, username, created_at FROM users WHERE username = ?`)
	if err := r.db.GetContext(ctx, &stored, q, username); err != nil {
		return model.User{}, fmt.Errorf("select user %s: %w", username, err)
	}
	return stored, nil
}

// GetUser returns a user by ID
func (r *SQLRepo) GetUser(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	q := r.db.Rebind(`SELECT id, username, created_at FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &user, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
		}
		return model.User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}

// CreateCategory stores a new category
func (r *SQLRepo) CreateCategory(ctx context.Context, category model.Category) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO categories (id, name) VALUES (:id, :name)`, category)
	if err != nil {
		return fmt.Errorf("create category %s: %w", category.Name, err)
	}
	return nil
}

// GetCategory returns a category by ID
func (r *SQLRepo) GetCategory(ctx context.Context, categoryID string) (model.Category, error) {
	var category model.Category
	q := r.db.Rebind(`SELECT id, name FROM categories WHERE id = ?`)
	if err := r.db.GetContext(ctx, &category, q, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, fmt.Errorf("get category %s: %w", categoryID, auctionerrors.ErrCategoryNotFound)
		}
		return model.Category{}, fmt.Errorf("get category %s: %w", categoryID, err)
	}
	return category, nil
}

// ListCategories returns all categories ordered by name
func (r *SQLRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := r.db.SelectContext(ctx, &categories, `SELECT id, name FROM categories ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes a category; its listings stay with a NULL category
func (r *SQLRepo) DeleteCategory(ctx context.Context, categoryID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete category %s: begin: %w", categoryID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE listings SET category_id = NULL WHERE category_id = ?`), categoryID); err != nil {
		return fmt.Errorf("delete category %s: detach listings: %w", categoryID, err)
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM categories WHERE id = ?`), categoryID)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", categoryID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete category %s: %w", categoryID, auctionerrors.ErrCategoryNotFound)
	}

	return tx.Commit()
}

// CreateListing stores a new listing
func (r *SQLRepo) CreateListing(ctx context.Context, listing model.Listing) error {
	if listing.CategoryID != nil {
		if _, err := r.GetCategory(ctx, *listing.CategoryID); err != nil {
			return fmt.Errorf("create listing %s: %w", listing.ListingID, err)
		}
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO listings
			(id, title, description, image_url, is_active, starting_bid, current_bid, category_id, owner_id, winner_id, created_at, version)
		VALUES
			(:id, :title, :description, :image_url, :is_active, :starting_bid, :current_bid, :category_id, :owner_id, :winner_id, :created_at, :version)
	`, listing)
	if err != nil {
		return fmt.Errorf("create listing %s: %w", listing.ListingID, err)
	}
	return nil
}

// GetListing returns a listing by ID
func (r *SQLRepo) GetListing(ctx context.Context, listingID string) (model.Listing, error) {
	var listing model.Listing
	q := r.db.Rebind(`SELECT ` + listingColumns + ` FROM listings WHERE id = ?`)
	if err := r.db.GetContext(ctx, &listing, q, listingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
		}
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, err)
	}
	return listing, nil
}

// ListActiveListings returns active listings, newest first, optionally filtered by category
func (r *SQLRepo) ListActiveListings(ctx context.Context, categoryID string) ([]model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE is_active = ?`
	args := []any{true}
	if categoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY created_at DESC`

	listings := []model.Listing{}
	if err := r.db.SelectContext(ctx, &listings, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list active listings: %w", err)
	}
	return listings, nil
}

// RecordBid inserts a bid and mirrors its amount into the listing in one transaction.
// The listing must be active and still at expectedVersion.
func (r *SQLRepo) RecordBid(ctx context.Context, bid model.Bid, expectedVersion int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record bid for listing %s: begin: %w", bid.ListingID, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE listings SET current_bid = ?, version = version + 1
		WHERE id = ? AND version = ? AND is_active = ?
	`), bid.Amount, bid.ListingID, expectedVersion, true)
	if err != nil {
		return fmt.Errorf("record bid for listing %s: update listing: %w", bid.ListingID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.conflictOrMissing(ctx, tx, "record bid", bid.ListingID)
	}

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO bids (id, listing_id, bidder_id, amount, created_at)
		VALUES (:id, :listing_id, :bidder_id, :amount, :created_at)
	`, bid); err != nil {
		return fmt.Errorf("record bid for listing %s: insert bid: %w", bid.ListingID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record bid for listing %s: commit: %w", bid.ListingID, err)
	}
	return nil
}

// conflictOrMissing explains why a guarded update touched no rows
func (r *SQLRepo) conflictOrMissing(ctx context.Context, q sqlx.QueryerContext, op, listingID string) error {
	var count int
	if err := sqlx.GetContext(ctx, q, &count, r.db.Rebind(`SELECT COUNT(1) FROM listings WHERE id = ?`), listingID); err != nil {
		return fmt.Errorf("%s for listing %s: %w", op, listingID, err)
	}
	if count == 0 {
		return fmt.Errorf("%s for listing %s: %w", op, listingID, auctionerrors.ErrListingNotFound)
	}
	return fmt.Errorf("%s for listing %s: %w", op, listingID, auctionerrors.ErrConcurrentUpdate)
}

// GetHighestBid returns the highest bid for a listing; the earliest wins a tie
func (r *SQLRepo) GetHighestBid(ctx context.Context, listingID string) (model.Bid, error) {
	var bid model.Bid
	q := r.db.Rebind(`
		SELECT id, listing_id, bidder_id, amount, created_at FROM bids
		WHERE listing_id = ?
		ORDER BY amount DESC, created_at ASC
		LIMIT 1
	`)
	if err := r.db.GetContext(ctx, &bid, q, listingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, auctionerrors.ErrNoBids)
		}
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, err)
	}
	return bid, nil
}

// GetBidsByListing returns all bids for a listing, oldest first
func (r *SQLRepo) GetBidsByListing(ctx context.Context, listingID string) ([]model.Bid, error) {
	if err := r.ensureListing(ctx, "get bids", listingID); err != nil {
		return nil, err
	}

	bids := []model.Bid{}
	q := r.db.Rebind(`
		SELECT id, listing_id, bidder_id, amount, created_at FROM bids
		WHERE listing_id = ?
		ORDER BY created_at ASC
	`)
	if err := r.db.SelectContext(ctx, &bids, q, listingID); err != nil {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, err)
	}
	return bids, nil
}

// CloseListing deactivates a listing and fixes its winner, guarded like RecordBid
func (r *SQLRepo) CloseListing(ctx context.Context, listingID string, winnerID *string, expectedVersion int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE listings SET is_active = ?, winner_id = ?, version = version + 1
		WHERE id = ? AND version = ? AND is_active = ?
	`), false, winnerID, listingID, expectedVersion, true)
	if err != nil {
		return fmt.Errorf("close listing %s: %w", listingID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.conflictOrMissing(ctx, r.db, "close listing", listingID)
	}
	return nil
}

// SetWinner records the winner of a closed listing that has none yet
func (r *SQLRepo) SetWinner(ctx context.Context, listingID, winnerID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE listings SET winner_id = ?, version = version + 1
		WHERE id = ? AND is_active = ? AND winner_id IS NULL
	`), winnerID, listingID, false)
	if err != nil {
		return fmt.Errorf("set winner for listing %s: %w", listingID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.ensureListing(ctx, "set winner", listingID)
	}
	return nil
}

func (r *SQLRepo) ensureListing(ctx context.Context, op, listingID string) error {
	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(1) FROM listings WHERE id = ?`), listingID); err != nil {
		return fmt.Errorf("%s for listing %s: %w", op, listingID, err)
	}
	if count == 0 {
		return fmt.Errorf("%s for listing %s: %w", op, listingID, auctionerrors.ErrListingNotFound)
	}
	return nil
}

// AddComment appends a comment to a listing
func (r *SQLRepo) AddComment(ctx context.Context, comment model.Comment) error {
	if err := r.ensureListing(ctx, "add comment", comment.ListingID); err != nil {
		return err
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO comments (id, listing_id, user_id, text, created_at)
		VALUES (:id, :listing_id, :user_id, :text, :created_at)
	`, comment)
	if err != nil {
		return fmt.Errorf("add comment to listing %s: %w", comment.ListingID, err)
	}
	return nil
}

// GetComments returns a listing's comments in the order they were added
func (r *SQLRepo) GetComments(ctx context.Context, listingID string) ([]model.Comment, error) {
	comments := []model.Comment{}
	q := r.db.Rebind(`
		SELECT id, listing_id, user_id, text, created_at FROM comments
		WHERE listing_id = ?
		ORDER BY created_at ASC
	`)
	if err := r.db.SelectContext(ctx, &comments, q, listingID); err != nil {
		return nil, fmt.Errorf("get comments for listing %s: %w", listingID, err)
	}
	return comments, nil
}

// GetOrCreateWatchlist returns the user's watchlist, creating an empty one if absent
func (r *SQLRepo) GetOrCreateWatchlist(ctx context.Context, userID string) (model.Watchlist, error) {
	wl := model.Watchlist{
		WatchlistID: utils.GenerateID(),
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO watchlists (id, user_id, created_at)
		VALUES (:id, :user_id, :created_at)
		ON CONFLICT (user_id) DO NOTHING
	`, wl)
	if err != nil {
		return model.Watchlist{}, fmt.Errorf("insert watchlist for user %s: %w", userID, err)
	}
	return r.FindWatchlist(ctx, userID)
}

// FindWatchlist returns the user's watchlist without creating it
func (r *SQLRepo) FindWatchlist(ctx context.Context, userID string) (model.Watchlist, error) {
	var wl model.Watchlist
	q := r.db.Rebind(`SELECT id, user_id, created_at FROM watchlists WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &wl, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Watchlist{}, fmt.Errorf("find watchlist for user %s: %w", userID, auctionerrors.ErrWatchlistNotFound)
		}
		return model.Watchlist{}, fmt.Errorf("find watchlist for user %s: %w", userID, err)
	}
	return wl, nil
}

// AddToWatchlist adds a listing to a watchlist; adding twice is a no-op
func (r *SQLRepo) AddToWatchlist(ctx context.Context, watchlistID, listingID string) error {
	if err := r.ensureListing(ctx, "add to watchlist", listingID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO watchlist_listings (watchlist_id, listing_id, added_at)
		VALUES (?, ?, ?)
		ON CONFLICT (watchlist_id, listing_id) DO NOTHING
	`), watchlistID, listingID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add listing %s to watchlist %s: %w", listingID, watchlistID, err)
	}
	return nil
}

// RemoveFromWatchlist removes a listing from a watchlist if present
func (r *SQLRepo) RemoveFromWatchlist(ctx context.Context, watchlistID, listingID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM watchlist_listings WHERE watchlist_id = ? AND listing_id = ?
	`), watchlistID, listingID)
	if err != nil {
		return fmt.Errorf("remove listing %s from watchlist %s: %w", listingID, watchlistID, err)
	}
	return nil
}

// WatchlistContains reports whether a listing is in a watchlist
func (r *SQLRepo) WatchlistContains(ctx context.Context, watchlistID, listingID string) (bool, error) {
	var count int
	q := r.db.Rebind(`SELECT COUNT(1) FROM watchlist_listings WHERE watchlist_id = ? AND listing_id = ?`)
	if err := r.db.GetContext(ctx, &count, q, watchlistID, listingID); err != nil {
		return false, fmt.Errorf("check watchlist %s: %w", watchlistID, err)
	}
	return count > 0, nil
}

// WatchlistListings returns the listings of a watchlist, newest listing first
func (r *SQLRepo) WatchlistListings(ctx context.Context, watchlistID string) ([]model.Listing, error) {
	listings := []model.Listing{}
	q := r.db.Rebind(`
		SELECT ` + prefixedListingColumns("l") + `
		FROM listings l
		JOIN watchlist_listings w ON w.listing_id = l.id
		WHERE w.watchlist_id = ?
		ORDER BY l.created_at DESC
	`)
	if err := r.db.SelectContext(ctx, &listings, q, watchlistID); err != nil {
		return nil, fmt.Errorf("list watchlist %s: %w", watchlistID, err)
	}
	return listings, nil
}

// CountWatchlist returns the number of listings in a watchlist
func (r *SQLRepo) CountWatchlist(ctx context.Context, watchlistID string) (int, error) {
	var count int
	q := r.db.Rebind(`SELECT COUNT(1) FROM watchlist_listings WHERE watchlist_id = ?`)
	if err := r.db.GetContext(ctx, &count, q, watchlistID); err != nil {
		return 0, fmt.Errorf("count watchlist %s: %w", watchlistID, err)
	}
	return count, nil
}

package helpers

import (
	"time"

	model "auction-marketplace/internal/models"
)

// Request DTOs

// ListingActionRequest is the listing detail form. Exactly one action is taken,
// chosen by which field is present.
type ListingActionRequest struct {
	AddToWatchlist *string `form:"add_to_watchlist" json:"add_to_watchlist"`
	CloseAuction   *string `form:"close_auction" json:"close_auction"`
	BidAmount      *string `form:"bid_amount" json:"bid_amount"`
	CommentText    *string `form:"comment_text" json:"comment_text"`
}

type CreateListingRequest struct {
	Title       string `form:"title" json:"title" binding:"required"`
	Description string `form:"description" json:"description" binding:"required"`
	ImageURL    string `form:"image_url" json:"image_url"`
	StartingBid string `form:"starting_bid" json:"starting_bid" binding:"required"`
	CategoryID  string `form:"category_id" json:"category_id"`
}

// Response DTOs

type ListingResponse struct {
	ListingID   string       `json:"listing_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ImageURL    *string      `json:"image_url"`
	IsActive    bool         `json:"is_active"`
	StartingBid model.Money  `json:"starting_bid"`
	CurrentBid  *model.Money `json:"current_bid"`
	CategoryID  *string      `json:"category_id"`
	OwnerID     string       `json:"owner_id"`
	WinnerID    *string      `json:"winner_id"`
	CreatedAt   string       `json:"created_at"`
}

type BidResponse struct {
	BidID     string      `json:"bid_id"`
	ListingID string      `json:"listing_id"`
	BidderID  string      `json:"bidder_id"`
	Amount    model.Money `json:"amount"`
	CreatedAt string      `json:"created_at"`
}

type CommentResponse struct {
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// ListingDetailResponse is everything the listing page shows for the requesting user
type ListingDetailResponse struct {
	Listing     ListingResponse   `json:"listing"`
	HighestBid  *BidResponse      `json:"highest_bid"`
	StartingBid model.Money       `json:"starting_bid"`
	Comments    []CommentResponse `json:"comments"`
	InWatchlist bool              `json:"in_watchlist"`
	IsOwner     bool              `json:"is_owner"`
	IsWinner    bool              `json:"is_winner"`
}

type WatchlistResponse struct {
	Listings []ListingResponse `json:"listings"`
	Count    int               `json:"watchlist_count"`
}

type CategoryListingsResponse struct {
	Category model.Category    `json:"category"`
	Listings []ListingResponse `json:"listings"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func ToListingResponse(l model.Listing) ListingResponse {
	return ListingResponse{
		ListingID:   l.ListingID,
		Title:       l.Title,
		Description: l.Description,
		ImageURL:    l.ImageURL,
		IsActive:    l.IsActive,
		StartingBid: l.StartingBid,
		CurrentBid:  l.CurrentBid,
		CategoryID:  l.CategoryID,
		OwnerID:     l.OwnerID,
		WinnerID:    l.WinnerID,
		CreatedAt:   formatTime(l.CreatedAt),
	}
}

// ToListingResponses never returns nil so empty lists encode as []
func ToListingResponses(listings []model.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, ToListingResponse(l))
	}
	return out
}

func ToBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		ListingID: b.ListingID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		CreatedAt: formatTime(b.CreatedAt),
	}
}

func ToBidResponses(bids []model.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, ToBidResponse(b))
	}
	return out
}

func ToCommentResponses(comments []model.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, CommentResponse{
			CommentID: c.CommentID,
			UserID:    c.UserID,
			Text:      c.Text,
			CreatedAt: formatTime(c.CreatedAt),
		})
	}
	return out
}

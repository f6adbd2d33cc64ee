package handler

import (
	"context"
	"fmt"
	"net/http"

	"auction-marketplace/internal/auctionerrors"
	auction "auction-marketplace/internal/auctionService"
	model "auction-marketplace/internal/models"
	"auction-marketplace/services/marketplace/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -destination=mock_handler.go -package=handler auction-marketplace/services/marketplace/handler AuctionServiceInterface,CommentServiceInterface,WatchlistServiceInterface

type AuctionServiceInterface interface {
	PlaceBid(ctx context.Context, listingID, bidderID string, amount model.Money) (model.Bid, error)
	CloseAuction(ctx context.Context, listingID, requesterID string) (model.Listing, error)
	ResolveWinnerIfMissing(ctx context.Context, listingID string) (model.Listing, error)
	HighestBid(ctx context.Context, listingID string) (*model.Bid, error)
	GetBidsForListing(ctx context.Context, listingID string) ([]model.Bid, error)
	CreateListing(ctx context.Context, ownerID string, in auction.NewListing) (model.Listing, error)
	ListActiveListings(ctx context.Context) ([]model.Listing, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CategoryListings(ctx context.Context, categoryID string) (model.Category, []model.Listing, error)
}

type WatchlistServiceInterface interface {
	Toggle(ctx context.Context, userID, listingID string) (bool, error)
	Remove(ctx context.Context, userID, listingID string) error
	Contains(ctx context.Context, userID, listingID string) (bool, error)
	Count(ctx context.Context, userID string) (int, error)
	Listings(ctx context.Context, userID string) ([]model.Listing, error)
}

type CommentServiceInterface interface {
	AddComment(ctx context.Context, listingID, userID, text string) (model.Comment, error)
	Comments(ctx context.Context, listingID string) ([]model.Comment, error)
}

type MarketplaceHandler struct {
	auction   AuctionServiceInterface
	watchlist WatchlistServiceInterface
	comments  CommentServiceInterface
}

func NewMarketplaceHandler(auctionSvc AuctionServiceInterface, watchlistSvc WatchlistServiceInterface, commentSvc CommentServiceInterface) *MarketplaceHandler {
	return &MarketplaceHandler{
		auction:   auctionSvc,
		watchlist: watchlistSvc,
		comments:  commentSvc,
	}
}

// requireUser fetches the authenticated user or answers 401
func requireUser(c *gin.Context, handlerName string) (model.User, bool) {
	user, ok := helpers.CurrentUser(c)
	if !ok {
		helpers.RespondError(c, handlerName, auctionerrors.ErrUnauthenticated, nil, map[string]any{"path": c.Request.URL.Path})
		return model.User{}, false
	}
	return user, true
}

// IndexHandler handles GET /
func (h *MarketplaceHandler) IndexHandler(c *gin.Context) {
	listings, err := h.auction.ListActiveListings(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "IndexHandler", err, nil, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponses(listings), "active listings retrieved successfully")
	helpers.LogSuccess("IndexHandler", "active listings retrieved successfully", map[string]any{
		"count": len(listings),
	})
}

// buildDetail assembles the listing page for user, resolving a missing winner first
func (h *MarketplaceHandler) buildDetail(ctx context.Context, listingID string, user model.User) (*helpers.ListingDetailResponse, error) {
	listing, err := h.auction.ResolveWinnerIfMissing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	highest, err := h.auction.HighestBid(ctx, listingID)
	if err != nil {
		return nil, err
	}

	comments, err := h.comments.Comments(ctx, listingID)
	if err != nil {
		return nil, err
	}

	inWatchlist, err := h.watchlist.Contains(ctx, user.UserID, listingID)
	if err != nil {
		return nil, err
	}

	detail := &helpers.ListingDetailResponse{
		Listing:     helpers.ToListingResponse(listing),
		StartingBid: listing.StartingBid,
		Comments:    helpers.ToCommentResponses(comments),
		InWatchlist: inWatchlist,
		IsOwner:     listing.OwnerID == user.UserID,
		IsWinner:    listing.WinnerID != nil && *listing.WinnerID == user.UserID,
	}
	if highest != nil {
		bid := helpers.ToBidResponse(*highest)
		detail.HighestBid = &bid
	}
	return detail, nil
}

// ListingDetailHandler handles GET /listing/:listing_id/
func (h *MarketplaceHandler) ListingDetailHandler(c *gin.Context) {
	user, ok := requireUser(c, "ListingDetailHandler")
	if !ok {
		return
	}

	listingID := c.Param("listing_id")
	detail, err := h.buildDetail(c.Request.Context(), listingID, user)
	if err != nil {
		helpers.RespondError(c, "ListingDetailHandler", err, nil, map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, detail, "listing retrieved successfully")
	helpers.LogSuccess("ListingDetailHandler", "listing retrieved successfully", map[string]any{
		"listing_id": listingID,
		"user_id":    user.UserID,
	})
}

// ListingActionHandler handles POST /listing/:listing_id/.
// Precedence: add_to_watchlist, close_auction, bid_amount, comment_text.
func (h *MarketplaceHandler) ListingActionHandler(c *gin.Context) {
	user, ok := requireUser(c, "ListingActionHandler")
	if !ok {
		return
	}

	var req helpers.ListingActionRequest
	if err := c.ShouldBind(&req); err != nil {
		helpers.HandleBindError(c, "ListingActionHandler", err)
		return
	}

	ctx := c.Request.Context()
	listingID := c.Param("listing_id")

	var (
		action  string
		status  = http.StatusOK
		message string
		err     error
	)

	switch {
	case req.AddToWatchlist != nil:
		action = "toggle_watchlist"
		var watching bool
		watching, err = h.watchlist.Toggle(ctx, user.UserID, listingID)
		message = "removed from watchlist"
		if watching {
			message = "added to watchlist"
		}
	case req.CloseAuction != nil:
		action = "close_auction"
		_, err = h.auction.CloseAuction(ctx, listingID, user.UserID)
		message = "auction closed successfully"
	case req.BidAmount != nil:
		action = "place_bid"
		err = h.placeBid(ctx, listingID, user.UserID, *req.BidAmount)
		status, message = http.StatusCreated, "bid placed successfully"
	case req.CommentText != nil:
		action = "add_comment"
		_, err = h.comments.AddComment(ctx, listingID, user.UserID, *req.CommentText)
		status, message = http.StatusCreated, "comment added successfully"
	default:
		action = "none"
		err = fmt.Errorf("handler: %w", auctionerrors.ErrNoAction)
	}

	fields := map[string]any{"listing_id": listingID, "user_id": user.UserID, "action": action}

	detail, detailErr := h.buildDetail(ctx, listingID, user)
	if err != nil {
		if detailErr != nil {
			helpers.RespondError(c, "ListingActionHandler", err, nil, fields)
			return
		}
		helpers.RespondError(c, "ListingActionHandler", err, detail, fields)
		return
	}
	if detailErr != nil {
		helpers.RespondError(c, "ListingActionHandler", detailErr, nil, fields)
		return
	}

	utils.JSONResponse(c, status, detail, message)
	helpers.LogSuccess("ListingActionHandler", message, fields)
}

func (h *MarketplaceHandler) placeBid(ctx context.Context, listingID, bidderID, rawAmount string) error {
	amount, err := model.ParseMoney(rawAmount)
	if err != nil {
		return fmt.Errorf("handler: %w - %v", auctionerrors.ErrInvalidBid, err)
	}
	_, err = h.auction.PlaceBid(ctx, listingID, bidderID, amount)
	return err
}

// ListingBidsHandler handles GET /listing/:listing_id/bids
func (h *MarketplaceHandler) ListingBidsHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	bids, err := h.auction.GetBidsForListing(c.Request.Context(), listingID)
	if err != nil {
		helpers.RespondError(c, "ListingBidsHandler", err, nil, map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("ListingBidsHandler", "bids retrieved successfully", map[string]any{
		"listing_id": listingID,
		"count":      len(bids),
	})
}

// CreateListingHandler handles POST /create_listing
func (h *MarketplaceHandler) CreateListingHandler(c *gin.Context) {
	user, ok := requireUser(c, "CreateListingHandler")
	if !ok {
		return
	}

	var req helpers.CreateListingRequest
	if err := c.ShouldBind(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	startingBid, err := model.ParseMoney(req.StartingBid)
	if err != nil {
		helpers.RespondError(c, "CreateListingHandler", fmt.Errorf("handler: %w - %v", auctionerrors.ErrInvalidListing, err), nil, map[string]any{"user_id": user.UserID})
		return
	}

	listing, err := h.auction.CreateListing(c.Request.Context(), user.UserID, auction.NewListing{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		StartingBid: startingBid,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		helpers.RespondError(c, "CreateListingHandler", err, nil, map[string]any{"user_id": user.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToListingResponse(listing), "listing created successfully")
	helpers.LogSuccess("CreateListingHandler", "listing created successfully", map[string]any{
		"listing_id": listing.ListingID,
		"owner_id":   user.UserID,
	})
}

// CategoriesHandler handles GET /categories/
func (h *MarketplaceHandler) CategoriesHandler(c *gin.Context) {
	categories, err := h.auction.ListCategories(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "CategoriesHandler", err, nil, nil)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}

	utils.JSONResponse(c, http.StatusOK, categories, "categories retrieved successfully")
	helpers.LogSuccess("CategoriesHandler", "categories retrieved successfully", map[string]any{
		"count": len(categories),
	})
}

// CategoryListingsHandler handles GET /category/:category_id/
func (h *MarketplaceHandler) CategoryListingsHandler(c *gin.Context) {
	categoryID := c.Param("category_id")
	category, listings, err := h.auction.CategoryListings(c.Request.Context(), categoryID)
	if err != nil {
		helpers.RespondError(c, "CategoryListingsHandler", err, nil, map[string]any{"category_id": categoryID})
		return
	}

	resp := helpers.CategoryListingsResponse{
		Category: category,
		Listings: helpers.ToListingResponses(listings),
	}
	utils.JSONResponse(c, http.StatusOK, resp, "category listings retrieved successfully")
	helpers.LogSuccess("CategoryListingsHandler", "category listings retrieved successfully", map[string]any{
		"category_id": categoryID,
		"count":       len(listings),
	})
}

// WatchlistHandler handles GET /watchlist/
func (h *MarketplaceHandler) WatchlistHandler(c *gin.Context) {
	user, ok := requireUser(c, "WatchlistHandler")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	listings, err := h.watchlist.Listings(ctx, user.UserID)
	if err != nil {
		helpers.RespondError(c, "WatchlistHandler", err, nil, map[string]any{"user_id": user.UserID})
		return
	}

	count, err := h.watchlist.Count(ctx, user.UserID)
	if err != nil {
		helpers.RespondError(c, "WatchlistHandler", err, nil, map[string]any{"user_id": user.UserID})
		return
	}

	resp := helpers.WatchlistResponse{
		Listings: helpers.ToListingResponses(listings),
		Count:    count,
	}
	utils.JSONResponse(c, http.StatusOK, resp, "watchlist retrieved successfully")
	helpers.LogSuccess("WatchlistHandler", "watchlist retrieved successfully", map[string]any{
		"user_id": user.UserID,
		"count":   count,
	})
}

// ToggleWatchlistHandler handles POST /toggle_watchlist/:listing_id/ and redirects to the listing
func (h *MarketplaceHandler) ToggleWatchlistHandler(c *gin.Context) {
	user, ok := requireUser(c, "ToggleWatchlistHandler")
	if !ok {
		return
	}

	listingID := c.Param("listing_id")
	watching, err := h.watchlist.Toggle(c.Request.Context(), user.UserID, listingID)
	if err != nil {
		helpers.RespondError(c, "ToggleWatchlistHandler", err, nil, map[string]any{"listing_id": listingID, "user_id": user.UserID})
		return
	}

	c.Redirect(http.StatusSeeOther, "/listing/"+listingID+"/")
	helpers.LogSuccess("ToggleWatchlistHandler", "watchlist toggled", map[string]any{
		"listing_id": listingID,
		"user_id":    user.UserID,
		"watching":   watching,
	})
}

// RemoveFromWatchlistHandler handles POST /remove_from_watchlist/:listing_id/ and redirects to the watchlist
func (h *MarketplaceHandler) RemoveFromWatchlistHandler(c *gin.Context) {
	user, ok := requireUser(c, "RemoveFromWatchlistHandler")
	if !ok {
		return
	}

	listingID := c.Param("listing_id")
	if err := h.watchlist.Remove(c.Request.Context(), user.UserID, listingID); err != nil {
		helpers.RespondError(c, "RemoveFromWatchlistHandler", err, nil, map[string]any{"listing_id": listingID, "user_id": user.UserID})
		return
	}

	c.Redirect(http.StatusSeeOther, "/watchlist/")
	helpers.LogSuccess("RemoveFromWatchlistHandler", "listing removed from watchlist", map[string]any{
		"listing_id": listingID,
		"user_id":    user.UserID,
	})
}

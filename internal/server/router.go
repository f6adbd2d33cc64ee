package server

import (
	handler "auction-marketplace/services/marketplace/handler"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer depends on
type Services struct {
	Auction   handler.AuctionServiceInterface
	Watchlist handler.WatchlistServiceInterface
	Comments  handler.CommentServiceInterface
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(svc Services, authn *Authenticator) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	marketplaceHandler := handler.NewMarketplaceHandler(svc.Auction, svc.Watchlist, svc.Comments)

	browse := router.Group("/", authn.OptionalUser())
	{
		browse.GET("/", marketplaceHandler.IndexHandler)
		browse.GET("/categories/", marketplaceHandler.CategoriesHandler)
		browse.GET("/category/:category_id/", marketplaceHandler.CategoryListingsHandler)
		browse.GET("/listing/:listing_id/bids", marketplaceHandler.ListingBidsHandler)
	}

	members := router.Group("/", authn.RequireUser())
	{
		members.GET("/listing/:listing_id/", marketplaceHandler.ListingDetailHandler)
		members.POST("/listing/:listing_id/", marketplaceHandler.ListingActionHandler)
		members.POST("/create_listing", marketplaceHandler.CreateListingHandler)
		members.GET("/watchlist/", marketplaceHandler.WatchlistHandler)
		members.POST("/toggle_watchlist/:listing_id/", marketplaceHandler.ToggleWatchlistHandler)
		members.POST("/remove_from_watchlist/:listing_id/", marketplaceHandler.RemoveFromWatchlistHandler)
	}

	return router
}

package auctionerrors

import "errors"

// Error categories. Every specific error below unwraps to exactly one of these.
var (
	ErrValidation    = errors.New("validation error")
	ErrAuthorization = errors.New("authorization error")
	ErrState         = errors.New("state error")
	ErrNotFound      = errors.New("not found")
)

// Error is a domain error carrying its category and a user-visible message
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the category so errors.Is(err, ErrValidation) works through wrapping
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// validation errors
var (
	ErrInvalidBid     = newError(ErrValidation, "please enter a valid amount")
	ErrBidTooLow      = newError(ErrValidation, "bid amount too low")
	ErrEmptyText      = newError(ErrValidation, "comment text must not be empty")
	ErrInvalidListing = newError(ErrValidation, "invalid listing details")
	ErrNoAction       = newError(ErrValidation, "no action requested")
)

// authorization errors
var (
	ErrUnauthenticated = newError(ErrAuthorization, "authentication required")
	ErrOwnerCannotBid  = newError(ErrAuthorization, "owners of the listing cannot place bids")
	ErrNotOwner        = newError(ErrAuthorization, "only the owner can close this auction")
)

// lifecycle errors
var (
	ErrAuctionClosed    = newError(ErrState, "this auction has ended")
	ErrAlreadyClosed    = newError(ErrState, "this auction is already closed")
	ErrConcurrentUpdate = newError(ErrState, "listing was modified concurrently, please retry")
)

// Repository-level errors
var (
	ErrListingNotFound   = newError(ErrNotFound, "listing not found")
	ErrCategoryNotFound  = newError(ErrNotFound, "category not found")
	ErrUserNotFound      = newError(ErrNotFound, "user not found")
	ErrWatchlistNotFound = newError(ErrNotFound, "watchlist not found")

	// ErrNoBids reports that a listing has no bids yet; callers usually treat it as "none"
	ErrNoBids = errors.New("no bids found for listing")
)

// Message returns the user-visible message of the first domain error in err's chain
func Message(err error) (string, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message, true
	}
	return "", false
}

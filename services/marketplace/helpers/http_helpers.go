package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

// CurrentUserKey is the gin context key holding the authenticated model.User
const CurrentUserKey = "current_user"

// CurrentUser returns the user the auth middleware attached to the request
func CurrentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return model.User{}, false
	}
	user, ok := v.(model.User)
	return user, ok
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	message, ok := auctionerrors.Message(err)
	if !ok {
		return http.StatusInternalServerError, "internal server error"
	}

	switch {
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, message
	case errors.Is(err, auctionerrors.ErrValidation):
		return http.StatusBadRequest, message
	case errors.Is(err, auctionerrors.ErrUnauthenticated):
		return http.StatusUnauthorized, message
	case errors.Is(err, auctionerrors.ErrAuthorization):
		return http.StatusForbidden, message
	case errors.Is(err, auctionerrors.ErrState):
		return http.StatusConflict, message
	case errors.Is(err, auctionerrors.ErrNotFound):
		return http.StatusNotFound, message
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError writes the mapped error and logs it with the handler's fields.
// When data is non-nil it is sent along so the client can re-render the page.
func RespondError(c *gin.Context, handlerName string, err error, data any, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	wrapped := fmt.Errorf("%s: %w", message, err)
	if data != nil {
		utils.JSONErrorWithData(c, status, wrapped, message, data)
	} else {
		utils.JSONError(c, status, wrapped, message)
	}

	logFields := map[string]any{"handler": handlerName, "status": status, "error": err.Error()}
	for k, v := range fields {
		logFields[k] = v
	}
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", logFields)
		return
	}
	utils.Warn(handlerName+": request rejected", logFields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

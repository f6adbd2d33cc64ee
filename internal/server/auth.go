package server

import (
	"context"
	"fmt"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/auth"
	model "auction-marketplace/internal/models"
	"auction-marketplace/services/marketplace/helpers"

	"github.com/gin-gonic/gin"
)

// UserResolver maps a token subject to a stored user
type UserResolver interface {
	GetOrCreateUser(ctx context.Context, username string) (model.User, error)
}

// Authenticator turns bearer tokens into the current user for handlers
type Authenticator struct {
	secret string
	users  UserResolver
}

func NewAuthenticator(secret string, users UserResolver) *Authenticator {
	return &Authenticator{secret: secret, users: users}
}

// RequireUser rejects requests without a valid bearer token
func (a *Authenticator) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.attachUser(c, true) {
			return
		}
		c.Next()
	}
}

// OptionalUser attaches the user when a token is present. A present but
// invalid token is still rejected.
func (a *Authenticator) OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.attachUser(c, false) {
			return
		}
		c.Next()
	}
}

// attachUser reports whether the request may continue
func (a *Authenticator) attachUser(c *gin.Context, required bool) bool {
	fields := map[string]any{"path": c.Request.URL.Path}

	tokenStr, err := auth.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		if !required && c.GetHeader("Authorization") == "" {
			return true
		}
		a.reject(c, err, fields)
		return false
	}

	username, err := auth.ParseToken(a.secret, tokenStr)
	if err != nil {
		a.reject(c, err, fields)
		return false
	}

	user, err := a.users.GetOrCreateUser(c.Request.Context(), username)
	if err != nil {
		helpers.RespondError(c, "AuthMiddleware", fmt.Errorf("resolve user %q: %w", username, err), nil, fields)
		c.Abort()
		return false
	}

	c.Set(helpers.CurrentUserKey, user)
	return true
}

func (a *Authenticator) reject(c *gin.Context, cause error, fields map[string]any) {
	err := fmt.Errorf("%w: %v", auctionerrors.ErrUnauthenticated, cause)
	helpers.RespondError(c, "AuthMiddleware", err, nil, fields)
	c.Abort()
}

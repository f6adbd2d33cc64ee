package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	auction "auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/auth"
	comment "auction-marketplace/internal/commentService"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	watchlist "auction-marketplace/internal/watchlistService"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*gin.Engine, *repository.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	router := SetupRouter(Services{
		Auction:   auction.NewAuctionService(repo),
		Watchlist: watchlist.NewWatchlistService(repo),
		Comments:  comment.NewCommentService(repo),
	}, NewAuthenticator(testSecret, repo))
	return router, repo
}

func bearer(t *testing.T, secret, username string) string {
	t.Helper()
	token, err := auth.IssueToken(secret, username, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(router http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestRouter_Authentication(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		path           string
		authHeader     func(t *testing.T) string
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "index_anonymous",
			method:         http.MethodGet,
			path:           "/",
			authHeader:     func(t *testing.T) string { return "" },
			expectedStatus: http.StatusOK,
			expectedMsg:    "active listings retrieved successfully",
		},
		{
			name:           "index_with_token",
			method:         http.MethodGet,
			path:           "/",
			authHeader:     func(t *testing.T) string { return bearer(t, testSecret, "alice") },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "index_bad_token",
			method:         http.MethodGet,
			path:           "/",
			authHeader:     func(t *testing.T) string { return "Bearer not-a-jwt" },
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "authentication required",
		},
		{
			name:           "categories_anonymous",
			method:         http.MethodGet,
			path:           "/categories/",
			authHeader:     func(t *testing.T) string { return "" },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "watchlist_requires_token",
			method:         http.MethodGet,
			path:           "/watchlist/",
			authHeader:     func(t *testing.T) string { return "" },
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "authentication required",
		},
		{
			name:           "watchlist_wrong_secret",
			method:         http.MethodGet,
			path:           "/watchlist/",
			authHeader:     func(t *testing.T) string { return bearer(t, "other-secret", "alice") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "watchlist_basic_scheme",
			method:         http.MethodGet,
			path:           "/watchlist/",
			authHeader:     func(t *testing.T) string { return "Basic YWxpY2U6cHc=" },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "watchlist_with_token",
			method:         http.MethodGet,
			path:           "/watchlist/",
			authHeader:     func(t *testing.T) string { return bearer(t, testSecret, "alice") },
			expectedStatus: http.StatusOK,
			expectedMsg:    "watchlist retrieved successfully",
		},
		{
			name:           "listing_detail_requires_token",
			method:         http.MethodGet,
			path:           "/listing/whatever/",
			authHeader:     func(t *testing.T) string { return "" },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "listing_detail_unknown",
			method:         http.MethodGet,
			path:           "/listing/whatever/",
			authHeader:     func(t *testing.T) string { return bearer(t, testSecret, "alice") },
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "listing not found",
		},
		{
			name:           "bids_history_anonymous_unknown_listing",
			method:         http.MethodGet,
			path:           "/listing/whatever/bids",
			authHeader:     func(t *testing.T) string { return "" },
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			router, _ := newTestServer(t)

			req := httptest.NewRequest(tc.method, tc.path, nil)
			if h := tc.authHeader(t); h != "" {
				req.Header.Set("Authorization", h)
			}

			w, resp := serve(router, req)
			require.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedMsg != "" {
				require.Equal(t, tc.expectedMsg, resp["message"])
			}
		})
	}
}

func TestRouter_TokenSubjectBecomesUser(t *testing.T) {
	t.Parallel()
	router, repo := newTestServer(t)

	form := url.Values{"title": {"Lamp"}, "description": {"Brass"}, "starting_bid": {"10"}}
	req := httptest.NewRequest(http.MethodPost, "/create_listing", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", bearer(t, testSecret, "alice"))

	w, resp := serve(router, req)
	require.Equal(t, http.StatusCreated, w.Code)

	alice, err := repo.GetOrCreateUser(context.Background(), "alice")
	require.NoError(t, err)
	data := resp["data"].(map[string]any)
	require.Equal(t, alice.UserID, data["owner_id"])
}

func TestRequestLoggerMiddleware_RequestID(t *testing.T) {
	t.Parallel()
	router, _ := newTestServer(t)

	w, _ := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	w, _ = serve(router, req)
	require.Equal(t, "req-42", w.Header().Get(requestIDHeader))
}

type failingResolver struct{}

func (failingResolver) GetOrCreateUser(context.Context, string) (model.User, error) {
	return model.User{}, errors.New("database failure")
}

func TestAuthenticator_ResolverFailure(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	authn := NewAuthenticator(testSecret, failingResolver{})
	router := gin.New()
	router.GET("/private", authn.RequireUser(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", bearer(t, testSecret, "alice"))

	w, resp := serve(router, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "internal server error", resp["message"])
}

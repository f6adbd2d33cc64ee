package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	auction "auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/auth"
	comment "auction-marketplace/internal/commentService"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"
	watchlist "auction-marketplace/internal/watchlistService"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "integration-secret"

// testEnv is a router backed by the in-memory repository
type testEnv struct {
	router *gin.Engine
	repo   *repository.MemoryRepo
}

// SetupTestRouter initializes the router with in-memory repository for integration testing.
func SetupTestRouter(t *testing.T, categories ...model.Category) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	for _, category := range categories {
		require.NoError(t, repo.CreateCategory(context.Background(), category))
	}

	router := server.SetupRouter(server.Services{
		Auction:   auction.NewAuctionService(repo),
		Watchlist: watchlist.NewWatchlistService(repo),
		Comments:  comment.NewCommentService(repo),
	}, server.NewAuthenticator(testSecret, repo))

	return &testEnv{router: router, repo: repo}
}

// Token issues a bearer token for username
func (e *testEnv) Token(t *testing.T, username string) string {
	t.Helper()
	token, err := auth.IssueToken(testSecret, username, time.Hour)
	require.NoError(t, err)
	return token
}

// UserID resolves the stored ID behind a username
func (e *testEnv) UserID(t *testing.T, username string) string {
	t.Helper()
	user, err := e.repo.GetOrCreateUser(context.Background(), username)
	require.NoError(t, err)
	return user.UserID
}

// ExecuteRequestAndParse executes an HTTP request on the router and parses the JSON envelope.
// An empty token sends the request anonymously.
func ExecuteRequestAndParse(t *testing.T, e *testEnv, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	e.router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// CreateListing posts a listing as username and returns its ID
func (e *testEnv) CreateListing(t *testing.T, username string, body map[string]any) string {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, e, http.MethodPost, "/create_listing", e.Token(t, username), body)
	require.Equal(t, http.StatusCreated, w.Code, "create listing: %v", resp)
	return resp["data"].(map[string]any)["listing_id"].(string)
}

// Data returns the data object of an envelope
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return data
}

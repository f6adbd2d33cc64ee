package comment

import (
	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestCommentService_AddComment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		listingID     string
		userID        string
		text          string
		mockSetup     func(m *repository.MockAuctionDB)
		expectError   bool
		expectedError error
	}{
		{
			name:      "valid_comment",
			listingID: "listing1",
			userID:    "user1",
			text:      "nice item",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().AddComment(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:          "empty_text",
			listingID:     "listing1",
			userID:        "user1",
			text:          "",
			mockSetup:     func(m *repository.MockAuctionDB) {},
			expectError:   true,
			expectedError: auctionerrors.ErrEmptyText,
		},
		{
			name:          "whitespace_text",
			listingID:     "listing1",
			userID:        "user1",
			text:          " \n\t ",
			mockSetup:     func(m *repository.MockAuctionDB) {},
			expectError:   true,
			expectedError: auctionerrors.ErrValidation,
		},
		{
			name:          "missing_user",
			listingID:     "listing1",
			text:          "hello",
			mockSetup:     func(m *repository.MockAuctionDB) {},
			expectError:   true,
			expectedError: auctionerrors.ErrUnauthenticated,
		},
		{
			name:      "listing_not_found",
			listingID: "missing",
			userID:    "user1",
			text:      "hello",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().AddComment(gomock.Any(), gomock.Any()).Return(auctionerrors.ErrListingNotFound)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrListingNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := repository.NewMockAuctionDB(ctrl)
			tc.mockSetup(mockRepo)

			comment, err := NewCommentService(mockRepo).AddComment(context.Background(), tc.listingID, tc.userID, tc.text)
			if tc.expectError {
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, comment.CommentID)
			require.Equal(t, tc.text, comment.Text)
			require.Equal(t, tc.userID, comment.UserID)
		})
	}
}

func TestCommentService_AppendOnlyOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	require.NoError(t, repo.CreateListing(ctx, models.Listing{ListingID: "listing1", OwnerID: "owner", IsActive: true, StartingBid: 100}))
	service := NewCommentService(repo)

	_, err := service.AddComment(ctx, "listing1", "user1", "")
	require.True(t, errors.Is(err, auctionerrors.ErrValidation))

	for _, text := range []string{"nice item", "is it still available?", "yes"} {
		_, err := service.AddComment(ctx, "listing1", "user1", text)
		require.NoError(t, err)
	}

	comments, err := service.Comments(ctx, "listing1")
	require.NoError(t, err)
	require.Len(t, comments, 3)
	require.Equal(t, "nice item", comments[0].Text)
	require.Equal(t, "is it still available?", comments[1].Text)
	require.Equal(t, "yes", comments[2].Text)
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	t.Parallel()

	token, err := IssueToken("secret", "alice", time.Hour)
	require.NoError(t, err)

	subject, err := ParseToken("secret", token)
	require.NoError(t, err)
	require.Equal(t, "alice", subject)
}

func TestParseToken_Rejects(t *testing.T) {
	t.Parallel()

	valid, err := IssueToken("secret", "alice", time.Hour)
	require.NoError(t, err)

	expired, err := IssueToken("secret", "alice", -time.Minute)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{name: "wrong_secret", secret: "other", token: valid},
		{name: "expired", secret: "secret", token: expired},
		{name: "garbage", secret: "secret", token: "not-a-token"},
		{name: "missing_subject", secret: "secret", token: noSubject},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseToken(tc.secret, tc.token)
			require.True(t, errors.Is(err, ErrInvalidToken), "expected error: %v, got: %v", ErrInvalidToken, err)
		})
	}
}

func TestIssueToken_EmptyUsername(t *testing.T) {
	t.Parallel()

	_, err := IssueToken("secret", "  ", time.Hour)
	require.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	token, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	require.Equal(t, "abc.def", token)

	for _, header := range []string{"", "Basic abc", "Bearer ", "bearer abc"} {
		_, err := BearerToken(header)
		require.ErrorIs(t, err, ErrMissingToken, "header %q", header)
	}
}

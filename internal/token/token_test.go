package token_test

import (
	"dashboard/internal/tests/mock"
	"dashboard/internal/token"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "empty", token: "", want: false},
		{name: "malformed", token: "not-a-jwt", want: false},
		{name: "garbage segments", token: "a.b.c", want: false},
		{name: "exp equals now", token: mock.SignToken(now, "D", "1"), want: false},
		{name: "exp in the past", token: mock.SignToken(now.Add(-time.Minute), "D", "1"), want: false},
		{name: "exp one second ahead", token: mock.SignToken(now.Add(time.Second), "D", "1"), want: true},
		{name: "no exp claim", token: mock.Sign(jwt.MapClaims{"role": "D"}), want: false},
		{name: "numeric user_id", token: mock.Sign(jwt.MapClaims{"user_id": 42, "exp": now.Add(time.Hour).Unix()}), want: true},
		{name: "user_id of unexpected shape", token: mock.Sign(jwt.MapClaims{"user_id": []int{4, 2}, "exp": now.Add(time.Hour).Unix()}), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, token.Valid(tt.token, now))
		})
	}
}

func TestExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.True(t, token.Expired(mock.SignToken(now, "D", "1"), now))
	assert.False(t, token.Expired(mock.SignToken(now.Add(time.Hour), "D", "1"), now))
	assert.False(t, token.Expired("not-a-jwt", now), "malformed tokens are invalid, not expired")
}

func TestDecode(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	claims, err := token.Decode(mock.Sign(jwt.MapClaims{
		"role":    "D",
		"user_id": "42",
		"email":   "doc@example.com",
		"exp":     exp.Unix(),
	}))
	require.NoError(t, err)

	assert.Equal(t, "D", claims.Role)
	assert.Equal(t, "42", claims.Subject())
	assert.Equal(t, "doc@example.com", claims.Email)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())

	_, err = token.Decode("")
	require.ErrorIs(t, err, token.ErrTokenEmpty)
}

func TestDecode_NumericUserID(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tok := mock.Sign(jwt.MapClaims{
		"role":    "D",
		"user_id": 42,
		"exp":     now.Add(time.Hour).Unix(),
	})

	claims, err := token.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject())

	assert.True(t, token.Valid(tok, now))
	assert.False(t, token.Expired(tok, now))
	assert.True(t, token.Expired(tok, now.Add(2*time.Hour)))
}

func TestClaimsSubjectFromSession(t *testing.T) {
	claims, err := token.Decode(mock.Sign(jwt.MapClaims{
		"session": "user-123:iphone-13",
		"role":    "D",
	}))
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.Subject())
}

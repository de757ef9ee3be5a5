package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func newTestTokens(t *testing.T) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: time.Hour, Issuer: "go-travel-planner"})
	require.NoError(t, err)
	return tm
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager(config.JWTConfig{})
	assert.ErrorIs(t, err, config.ErrMissingJWTSecret)
}

func TestTokenRoundTrip(t *testing.T) {
	tm := newTestTokens(t)

	token, err := tm.Issue("4b7c8f0e-8d5f-4c1e-9a65-0b4a2a1e9d11", types.RoleUser)
	require.NoError(t, err)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "4b7c8f0e-8d5f-4c1e-9a65-0b4a2a1e9d11", claims.UserID)
	assert.Equal(t, types.RoleUser, claims.Role)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokenDefaultsToSevenDays(t *testing.T) {
	tm, err := NewTokenManager(config.JWTConfig{SecretKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, tm.ttl)
}

func TestParseRejects(t *testing.T) {
	tm := newTestTokens(t)
	valid, err := tm.Issue("user-1", types.RoleUser)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		expired := newTestTokens(t)
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := expired.Issue("user-1", types.RoleUser)
		require.NoError(t, err)

		_, err = tm.Parse(token)
		assert.ErrorIs(t, err, types.ErrInvalidToken)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenManager(config.JWTConfig{SecretKey: "other", Issuer: "go-travel-planner"})
		require.NoError(t, err)
		_, err = other.Parse(valid)
		assert.ErrorIs(t, err, types.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tm.Parse("not-a-jwt")
		assert.ErrorIs(t, err, types.ErrInvalidToken)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		other, err := NewTokenManager(config.JWTConfig{SecretKey: "test-secret", Issuer: "someone-else"})
		require.NoError(t, err)
		_, err = other.Parse(valid)
		assert.True(t, errors.Is(err, types.ErrInvalidToken))
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, types.Claims{UserID: "user-1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tm.Parse(unsigned)
		assert.ErrorIs(t, err, types.ErrInvalidToken)
	})
}

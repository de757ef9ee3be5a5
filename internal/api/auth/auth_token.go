package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
	now      func() time.Time
}

// NewTokenManager fails when no signing secret is configured.
func NewTokenManager(cfg config.JWTConfig) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, config.ErrMissingJWTSecret
	}
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret:   []byte(cfg.SecretKey),
		ttl:      ttl,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      time.Now,
	}, nil
}

// Issue signs a token for subject carrying role.
func (tm *TokenManager) Issue(subject, role string) (string, error) {
	now := tm.now()
	claims := types.Claims{
		UserID: subject,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	if tm.audience != "" {
		claims.Audience = jwt.ClaimStrings{tm.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, expiry, issuer and audience. Every failure wraps
// types.ErrInvalidToken.
func (tm *TokenManager) Parse(tokenString string) (*types.Claims, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired())
	if err != nil {
		reason := "invalid token"
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			reason = "token has expired"
		case errors.Is(err, jwt.ErrTokenMalformed):
			reason = "malformed token"
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			reason = "invalid token signature"
		}
		return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidToken, reason, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", types.ErrInvalidToken)
	}
	if tm.issuer != "" && claims.Issuer != tm.issuer {
		return nil, fmt.Errorf("%w: issuer mismatch", types.ErrInvalidToken)
	}
	if !api.VerifyAudience(claims.Audience, tm.audience) {
		return nil, fmt.Errorf("%w: audience mismatch", types.ErrInvalidToken)
	}
	return claims, nil
}

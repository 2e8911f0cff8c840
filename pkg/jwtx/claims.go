package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Short-lived access tokens, longer refresh tokens;
// override per-service via configuration.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token use values carried in the "token_use" claim. A refresh token must
// never be accepted where an access token is expected, and vice versa.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

// Claims is the full payload embedded in every token: the registered JWT
// fields plus the minimal identity needed to resolve the caller without a
// store round-trip.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the authenticated user.
	Username string `json:"username,omitempty"`

	// Email of the authenticated user.
	Email string `json:"email,omitempty"`

	// TokenUse discriminates access tokens from refresh tokens.
	TokenUse string `json:"token_use,omitempty"`
}

// NewClaims builds minimally-correct claims for the given subject and use.
func NewClaims(
	subject, username, email, use string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username: username,
		Email:    email,
		TokenUse: use,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateUse checks the token carries the expected "token_use" value.
func (c *Claims) ValidateUse(expected string) error {
	if c.TokenUse != expected {
		return ErrInvalidClaim
	}
	return nil
}

// ValidateShape checks the required custom claims are present. Signature and
// expiry are checked during parsing; this is the final structural check.
func (c *Claims) ValidateShape() error {
	if c.Subject == "" || c.Username == "" {
		return ErrInvalidClaim
	}
	if c.TokenUse != UseAccess && c.TokenUse != UseRefresh {
		return ErrInvalidClaim
	}
	if c.ExpiresAt == nil || c.IssuedAt == nil {
		return ErrInvalidClaim
	}
	return nil
}

package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the smallest HMAC secret accepted, in bytes. Anything
// shorter makes brute-forcing the signing key cheaper than the tokens it
// protects.
const MinSecretLength = 32

// HS256Codec signs and verifies JWTs using HMAC-SHA256 with a single
// symmetric secret. The secret is fixed at construction and never mutated,
// so a codec is safe to share across request goroutines.
type HS256Codec struct {
	secret []byte
	issuer string
	alg    string
}

// NewHS256 creates a codec from a symmetric secret. The secret comes from
// process configuration, loaded once at startup.
func NewHS256(secret []byte, issuer string) (*HS256Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, errors.New("jwtx: HS256 secret must be at least 32 bytes")
	}

	return &HS256Codec{
		secret: secret,
		issuer: issuer,
		alg:    jwt.SigningMethodHS256.Alg(),
	}, nil
}

func (c *HS256Codec) Alg() string { return c.alg }

// Sign takes your claims and turns them into a signed JWT string.
func (c *HS256Codec) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify validates the JWT string and returns its parsed Claims.
//
// The underlying parser checks the signature before it trusts any claim
// value, so a tampered token is rejected without ever reading its embedded
// expiry or identity. Expiry is checked next, and structural claim checks
// run last.
func (c *HS256Codec) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidClaim
	}

	if err := claims.ValidateIssuer(c.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateShape(); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}

// mapParseError translates golang-jwt parse failures into our sentinel
// errors so callers can handle failure modes exhaustively.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrAlgMismatch
	default:
		return ErrMalformed
	}
}

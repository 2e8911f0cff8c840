// Package jwtx issues and verifies the signed, self-contained bearer tokens
// used for stateless authentication. Validity is determined purely by the
// signature and expiry; no server-side record of issued tokens exists.
package jwtx

import "errors"

// Signer is anything that can turn Claims into a signed token string.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// Verifier validates a token and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Codec both signs and verifies. The token endpoint needs both halves;
// resource middleware only ever needs the Verifier side.
type Codec interface {
	Signer
	Verifier
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

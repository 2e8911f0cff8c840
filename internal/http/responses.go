package http

import (
	"github.com/pulsesocial/pulse/internal/domain"
)

// AuthResponse is the envelope returned by register, login, and refresh:
// the sanitized user plus the token pair. Pure data shaping, no failure
// modes.
type AuthResponse struct {
	User         domain.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

// NewAuthResponse strips secrets from the user record and merges in the
// tokens.
func NewAuthResponse(user domain.User, pair domain.TokenPair) AuthResponse {
	return AuthResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}

// TokenResponse is the refresh envelope: tokens only, no user record.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ValidationErrorResponse names each offending field. Field-level detail is
// safe to expose; credential and token failures never are.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

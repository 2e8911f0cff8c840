package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pulsesocial/pulse/internal/service"
	"github.com/pulsesocial/pulse/internal/store"
	"github.com/pulsesocial/pulse/pkg/httpx"
	"github.com/pulsesocial/pulse/pkg/slogx"
)

// RegisterHandler serves POST /auth/register.
type RegisterHandler struct {
	Auth *service.AuthService
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP godoc
//
//	@Summary		Register a new account
//	@Description	Creates a user and returns the sanitized record with an access/refresh token pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		registerRequest	true	"Registration fields"
//	@Success		200		{object}	AuthResponse
//	@Failure		400		{object}	ValidationErrorResponse	"Validation error or duplicate account"
//	@Failure		500		{object}	map[string]string
//	@Router			/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if fields := validateRegister(req.Username, req.Email, req.Password); fields != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}

	user, pair, err := h.Auth.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			httpx.WriteError(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, store.ErrUsernameTaken):
			httpx.WriteError(w, http.StatusBadRequest, "Username already taken")
		default:
			log.Error("registration failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, NewAuthResponse(user, pair))
}

// LoginHandler serves POST /auth/login.
type LoginHandler struct {
	Auth *service.AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP godoc
//
//	@Summary		Log in with email and password
//	@Description	Verifies the credential and returns the user with a fresh token pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	AuthResponse
//	@Failure		401		{object}	map[string]string	"Uniform message regardless of which field was wrong"
//	@Failure		500		{object}	map[string]string
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, pair, err := h.Auth.Login(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Error("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, NewAuthResponse(user, pair))
}

// RefreshHandler serves POST /auth/refresh.
type RefreshHandler struct {
	Auth *service.AuthService
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ServeHTTP godoc
//
//	@Summary		Exchange a refresh token for a new token pair
//	@Description	The old refresh token is not invalidated; it stays valid until its own expiry.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		refreshRequest	true	"Refresh token"
//	@Success		200		{object}	TokenResponse
//	@Failure		401		{object}	map[string]string	"Invalid/expired token or subject no longer exists"
//	@Failure		500		{object}	map[string]string
//	@Router			/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	pair, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		log.Error("refresh failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// LogoutHandler serves POST /auth/logout.
//
// Tokens are stateless and there is no revocation store, so logout is a
// no-op: the client discards its tokens and they simply age out.
type LogoutHandler struct{}

// ServeHTTP godoc
//
//	@Summary	Log out
//	@Tags		Auth
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

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

// MeHandler serves the authenticated user's own profile. Unlike the identity
// embedded in the token, these routes re-fetch from the store, so a deleted
// account is caught here.
type MeHandler struct {
	Users *service.UserService
	Auth  *service.AuthService
}

// HandleGet godoc
//
//	@Summary	Get the authenticated user's profile
//	@Tags		Profile
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	domain.PublicUser
//	@Failure	401	{object}	map[string]string
//	@Failure	500	{object}	map[string]string
//	@Router		/me [get].
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Valid token for an account that no longer exists.
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		log.Error("failed to load user", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user.Public())
}

type updateMeRequest struct {
	DisplayName string `json:"displayName"`
}

// HandleUpdate godoc
//
//	@Summary	Update the authenticated user's display name
//	@Tags		Profile
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		updateMeRequest	true	"Profile fields"
//	@Success	200		{object}	domain.PublicUser
//	@Failure	400		{object}	ValidationErrorResponse
//	@Failure	401		{object}	map[string]string
//	@Failure	500		{object}	map[string]string
//	@Router		/me [patch].
func (h *MeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" || len(displayName) > 64 {
		httpx.WriteJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  "Validation failed",
			Fields: map[string]string{"displayName": "must be 1-64 characters"},
		})
		return
	}

	user, err := h.Users.UpdateDisplayName(ctx, userID, displayName)
	if err != nil {
		log.Error("failed to update display name", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user.Public())
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleChangePassword godoc
//
//	@Summary	Change the authenticated user's password
//	@Tags		Profile
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		changePasswordRequest	true	"Current and new password"
//	@Success	200		{object}	map[string]string
//	@Failure	400		{object}	ValidationErrorResponse
//	@Failure	401		{object}	map[string]string	"Missing token or wrong current password"
//	@Failure	500		{object}	map[string]string
//	@Router		/me/password [put].
func (h *MeHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := make(map[string]string)
	if req.CurrentPassword == "" {
		fields["currentPassword"] = requiredReason
	}
	validatePassword(fields, req.NewPassword)
	if _, dup := fields["password"]; dup {
		fields["newPassword"] = fields["password"]
		delete(fields, "password")
	}
	if len(fields) > 0 {
		httpx.WriteJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}

	if err := h.Auth.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid password")
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		default:
			log.Error("failed to change password", "user_id", userID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

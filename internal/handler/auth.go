package handler

import (
	"log/slog"
	"net/http"

	"dataroom/internal/auth"
	"dataroom/internal/domain/services"
	"dataroom/internal/httputil"
)

// AuthHandler handles sign-in and current-user requests
type AuthHandler struct {
	identityService services.IdentityService
	logger          *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identityService services.IdentityService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		identityService: identityService,
		logger:          logger,
	}
}

type googleLoginRequest struct {
	Credential string `json:"credential"`
}

// LoginWithGoogle exchanges a Google ID token for a session token
// POST /api/auth/google
func (h *AuthHandler) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	result, err := h.identityService.LoginWithGoogle(r.Context(), req.Credential)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Me returns the signed-in user
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := httputil.GetIdentity(r)
	if identity == nil {
		handleError(w, r, h.logger, auth.ErrTokenMissing)
		return
	}

	user, err := h.identityService.CurrentUser(r.Context(), identity)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

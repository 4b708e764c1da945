package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nepal-lottery/lottery-backend/internal/api/middleware"
	"github.com/nepal-lottery/lottery-backend/internal/config"
	"github.com/nepal-lottery/lottery-backend/internal/models"
	"github.com/nepal-lottery/lottery-backend/internal/services/auth"
	"github.com/nepal-lottery/lottery-backend/internal/validation"
)

// AuthHandler signs admins in and out.
type AuthHandler struct {
	provider      auth.IdentityProvider
	secureCookies bool
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(provider auth.IdentityProvider, secureCookies bool) *AuthHandler {
	return &AuthHandler{provider: provider, secureCookies: secureCookies}
}

// Login exchanges email and password for session cookies.
// POST /api/admin/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(&req); err != nil {
		writeServiceError(w, err)
		return
	}

	sess, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		config.GetLogger().WithFields(logrus.Fields{"email": req.Email}).Warnf("admin sign-in failed: %v", err)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			WriteErrorResponse(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
			return
		}
		WriteErrorResponse(w, http.StatusBadGateway, "Authentication service unavailable")
		return
	}

	middleware.SetSessionCookies(w, sess, h.secureCookies)
	config.GetLogger().WithField("user", sess.UserID).Info("admin signed in")
	WriteJSONResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"session": models.SessionResponse{Authenticated: true, UserID: sess.UserID, Email: sess.Email},
	})
}

// Logout revokes the session when possible and always clears the cookies.
// POST /api/admin/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.AccessTokenCookie); err == nil && c.Value != "" {
		if err := h.provider.SignOut(r.Context(), c.Value); err != nil {
			config.LogError("handlers", "Logout", "sign out", nil, err)
		}
	}
	middleware.ClearSessionCookies(w, h.secureCookies)
	WriteJSONResponse(w, http.StatusOK, map[string]any{"success": true, "message": "Signed out"})
}

// Session reports the signed-in admin. It runs behind the auth middleware.
// GET /api/admin/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	userID, found := middleware.GetUserIDFromContext(r.Context())
	WriteJSONResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"session": models.SessionResponse{
			Authenticated: found,
			UserID:        userID,
			Email:         middleware.GetEmailFromContext(r.Context()),
		},
	})
}

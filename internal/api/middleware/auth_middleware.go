package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nepal-lottery/lottery-backend/internal/config"
	"github.com/nepal-lottery/lottery-backend/internal/services/auth"
)

const (
	AccessTokenCookie  = "sb-access-token"
	RefreshTokenCookie = "sb-refresh-token"

	refreshCookieMaxAge = 30 * 24 * time.Hour
)

type UserIDKey struct{}

type emailKey struct{}

// GetUserIDFromContext retrieves the user ID from the context.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey{}).(string)
	return userID, ok
}

// GetEmailFromContext retrieves the signed-in admin's email, if the token carried one.
func GetEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(emailKey{}).(string)
	return email
}

// writeJSONError writes a JSON error response
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

// Authenticator resolves the admin session of a request from the
// Authorization header or the session cookies.
type Authenticator struct {
	verifier      *auth.TokenVerifier
	provider      auth.IdentityProvider
	bypass        bool
	secureCookies bool
}

// NewAuthenticator creates an Authenticator. bypass must only be set in
// development; every request is then treated as a fresh test user.
func NewAuthenticator(verifier *auth.TokenVerifier, provider auth.IdentityProvider, bypass, secureCookies bool) *Authenticator {
	return &Authenticator{verifier: verifier, provider: provider, bypass: bypass, secureCookies: secureCookies}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func cookieValue(r *http.Request, name string) string {
	if c, err := r.Cookie(name); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate returns the claims of the request's session. An expired cookie
// session is refreshed through the identity provider and the new cookies are
// written to w.
func (a *Authenticator) Authenticate(w http.ResponseWriter, r *http.Request) (*auth.Claims, error) {
	if a.bypass {
		return &auth.Claims{UserID: uuid.New().String(), Email: "dev@localhost"}, nil
	}

	fromHeader := true
	token := bearerToken(r)
	if token == "" {
		fromHeader = false
		token = cookieValue(r, AccessTokenCookie)
	}
	if token == "" {
		return nil, auth.ErrTokenInvalid
	}

	claims, err := a.verifier.Verify(token)
	if err == nil {
		return claims, nil
	}
	if fromHeader || !errors.Is(err, auth.ErrTokenExpired) || a.provider == nil {
		return nil, err
	}

	refresh := cookieValue(r, RefreshTokenCookie)
	if refresh == "" {
		return nil, err
	}
	sess, rerr := a.provider.Refresh(r.Context(), refresh)
	if rerr != nil {
		config.LogError("middleware", "Authenticate", "refresh session", nil, rerr)
		ClearSessionCookies(w, a.secureCookies)
		return nil, err
	}
	SetSessionCookies(w, sess, a.secureCookies)
	return a.verifier.Verify(sess.AccessToken)
}

func withClaims(r *http.Request, c *auth.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), UserIDKey{}, c.UserID)
	ctx = context.WithValue(ctx, emailKey{}, c.Email)
	return r.WithContext(ctx)
}

// RequireAuth rejects API requests without a valid session with 401.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.Authenticate(w, r)
		if err != nil {
			config.GetLogger().WithFields(logrus.Fields{
				"path": r.URL.Path, "reason": err.Error(),
			}).Info("rejected unauthenticated request")
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, withClaims(r, claims))
	})
}

// AdminPages guards the /admin page tree: anonymous visitors are sent to
// /admin/login and signed-in admins are sent from the login page to
// /admin/dashboard.
func (a *Authenticator) AdminPages(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.Authenticate(w, r)
		onLogin := r.URL.Path == "/admin/login"

		switch {
		case err != nil && !onLogin:
			http.Redirect(w, r, "/admin/login", http.StatusFound)
		case err == nil && onLogin:
			http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
		case err == nil:
			next.ServeHTTP(w, withClaims(r, claims))
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// SetSessionCookies stores sess in HttpOnly cookies.
func SetSessionCookies(w http.ResponseWriter, sess *auth.Session, secure bool) {
	maxAge := sess.ExpiresIn
	if maxAge <= 0 {
		maxAge = int(time.Hour / time.Second)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    sess.AccessToken,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	if sess.RefreshToken != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     RefreshTokenCookie,
			Value:    sess.RefreshToken,
			Path:     "/",
			MaxAge:   int(refreshCookieMaxAge / time.Second),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ClearSessionCookies expires both session cookies.
func ClearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

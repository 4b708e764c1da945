package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nepal-lottery/lottery-backend/internal/services/auth"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func token(t *testing.T, sub string, ttl time.Duration) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"exp":   time.Now().Add(ttl).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

type fakeProvider struct {
	refreshed string
	session   *auth.Session
	err       error
}

func (f *fakeProvider) SignIn(context.Context, string, string) (*auth.Session, error) {
	return f.session, f.err
}

func (f *fakeProvider) Refresh(_ context.Context, rt string) (*auth.Session, error) {
	f.refreshed = rt
	return f.session, f.err
}

func (f *fakeProvider) SignOut(context.Context, string) error { return nil }

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := GetUserIDFromContext(r.Context())
		w.Write([]byte(id))
	})
}

func TestRequireAuth_BearerToken(t *testing.T) {
	a := NewAuthenticator(auth.NewTokenVerifier(testSecret), nil, false, false)
	h := a.RequireAuth(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "user-1", time.Hour))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestRequireAuth_CookieToken(t *testing.T) {
	a := NewAuthenticator(auth.NewTokenVerifier(testSecret), nil, false, false)
	h := a.RequireAuth(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token(t, "user-2", time.Hour)})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "user-2", rec.Body.String())
}

func TestRequireAuth_Rejects(t *testing.T) {
	a := NewAuthenticator(auth.NewTokenVerifier(testSecret), nil, false, false)
	h := a.RequireAuth(echoUser())

	for name, header := range map[string]string{
		"missing":  "",
		"garbage":  "Bearer nope",
		"expired":  "Bearer " + token(t, "u", -time.Minute),
		"no-space": "Token abc",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"success":false,"message":"Unauthorized"}`, rec.Body.String())
		})
	}
}

func TestRequireAuth_RefreshesExpiredCookieSession(t *testing.T) {
	provider := &fakeProvider{session: &auth.Session{
		AccessToken:  token(t, "user-3", time.Hour),
		RefreshToken: "rt-2",
		ExpiresIn:    3600,
	}}
	a := NewAuthenticator(auth.NewTokenVerifier(testSecret), provider, false, true)
	h := a.RequireAuth(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token(t, "user-3", -time.Minute)})
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "rt-1"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-3", rec.Body.String())
	assert.Equal(t, "rt-1", provider.refreshed)

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, AccessTokenCookie)
	assert.Equal(t, provider.session.AccessToken, cookies[AccessTokenCookie].Value)
	assert.True(t, cookies[AccessTokenCookie].HttpOnly)
	assert.True(t, cookies[AccessTokenCookie].Secure)
	assert.Equal(t, "rt-2", cookies[RefreshTokenCookie].Value)
}

func TestRequireAuth_FailedRefreshClearsCookies(t *testing.T) {
	provider := &fakeProvider{err: errors.New("refresh token revoked")}
	a := NewAuthenticator(auth.NewTokenVerifier(testSecret), provider, false, false)
	h := a.RequireAuth(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token(t, "u", -time.Minute)})
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "rt"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, -1, c.MaxAge, c.Name)
	}
}

func TestRequireAuth_Bypass(t *testing.T) {
	a := NewAuthenticator(auth.NewTokenVerifier(testSecret), nil, true, false)
	h := a.RequireAuth(echoUser())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Body.String(), 36)
}

func TestAdminPages_Redirects(t *testing.T) {
	a := NewAuthenticator(auth.NewTokenVerifier(testSecret), nil, false, false)
	h := a.AdminPages(echoUser())
	valid := token(t, "admin", time.Hour)

	tests := []struct {
		name     string
		path     string
		signedIn bool
		code     int
		location string
	}{
		{"anonymous dashboard", "/admin/dashboard", false, http.StatusFound, "/admin/login"},
		{"anonymous login", "/admin/login", false, http.StatusOK, ""},
		{"signed in login", "/admin/login", true, http.StatusFound, "/admin/dashboard"},
		{"signed in dashboard", "/admin/dashboard", true, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.signedIn {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: valid})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestRequestLogger_PassesStatusThrough(t *testing.T) {
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestCORSHandler_AllowsConfiguredOrigin(t *testing.T) {
	h := CORSHandler([]string{"https://lottery.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/home", nil)
	req.Header.Set("Origin", "https://lottery.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://lottery.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

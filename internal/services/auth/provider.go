package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gotrue "github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// ErrInvalidCredentials is returned when sign-in is rejected.
var ErrInvalidCredentials = errors.New("Invalid login credentials")

// Session is a signed-in admin as returned by the identity provider.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	UserID       string
	Email        string
}

// IdentityProvider signs admins in and out.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// GoTrueProvider is an IdentityProvider backed by Supabase Auth.
type GoTrueProvider struct {
	client gotrue.Client
}

// NewGoTrueProvider talks to the auth API of the project at supabaseURL.
func NewGoTrueProvider(supabaseURL, anonKey string) *GoTrueProvider {
	base := strings.TrimRight(supabaseURL, "/")
	client := gotrue.New(projectRef(base), anonKey).WithCustomGoTrueURL(base + "/auth/v1")
	return &GoTrueProvider{client: client}
}

// projectRef extracts "abcd" from https://abcd.supabase.co. The custom URL
// set above takes precedence, so a self-hosted URL only needs to be non-empty.
func projectRef(base string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(base, "https://"), "http://")
	if i := strings.IndexByte(host, '.'); i > 0 {
		return host[:i]
	}
	return host
}

func (p *GoTrueProvider) SignIn(_ context.Context, email, password string) (*Session, error) {
	resp, err := p.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return sessionFromToken(resp), nil
}

func (p *GoTrueProvider) Refresh(_ context.Context, refreshToken string) (*Session, error) {
	resp, err := p.client.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	return sessionFromToken(resp), nil
}

func (p *GoTrueProvider) SignOut(_ context.Context, accessToken string) error {
	if err := p.client.WithToken(accessToken).Logout(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func sessionFromToken(resp *types.TokenResponse) *Session {
	return &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    int(resp.ExpiresIn),
		UserID:       fmt.Sprint(resp.User.ID),
		Email:        resp.User.Email,
	}
}

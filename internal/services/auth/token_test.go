package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestTokenVerifier_Valid(t *testing.T) {
	v := NewTokenVerifier(testSecret)
	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":   "7b1c0c5e-2a6f-4a53-9d7e-3c3b8d1f0a11",
		"email": "admin@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	c, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "7b1c0c5e-2a6f-4a53-9d7e-3c3b8d1f0a11", c.UserID)
	assert.Equal(t, "admin@example.com", c.Email)
}

func TestTokenVerifier_Expired(t *testing.T) {
	v := NewTokenVerifier(testSecret)
	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	_, err := v.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenVerifier_Rejects(t *testing.T) {
	v := NewTokenVerifier(testSecret)

	tests := map[string]string{
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("another-secret"), jwt.MapClaims{"sub": "u1"}),
		"missing sub":  sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"email": "a@b.c"}),
		"wrong alg":    sign(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"sub": "u1"}),
		"garbage":      "not.a.jwt",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestProjectRef(t *testing.T) {
	assert.Equal(t, "abcd", projectRef("https://abcd.supabase.co"))
	assert.Equal(t, "localhost:54321", projectRef("http://localhost:54321"))
}

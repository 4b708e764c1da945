package cache

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCache_InvalidateByPrefix(t *testing.T) {
	c := NewPageCache(10, time.Minute)
	c.Set("/api/digits", Page{Status: 200})
	c.Set("/api/digits/2024-06-01", Page{Status: 200})
	c.Set("/api/digits?limit=5", Page{Status: 200})
	c.Set("/api/home", Page{Status: 200})
	c.Set("/api/results?category=/api/digits", Page{Status: 200})

	n := c.Invalidate("/api/digits")
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("/api/home")
	assert.True(t, ok)
	_, ok = c.Get("/api/results?category=/api/digits")
	assert.True(t, ok, "query strings must not match prefixes")
}

func TestPageCache_ExpiresAfterTTL(t *testing.T) {
	c := NewPageCache(10, 20*time.Millisecond)
	c.Set("/api/home", Page{Status: 200})

	assert.Eventually(t, func() bool {
		_, ok := c.Get("/api/home")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestPageCache_Middleware(t *testing.T) {
	c := NewPageCache(10, time.Minute)
	calls := 0
	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"calls":%d}`, calls)
	}))

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	first := get("/api/home")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, `{"calls":1}`, first.Body.String())

	second := get("/api/home")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, `{"calls":1}`, second.Body.String())
	assert.Equal(t, 1, calls)

	c.Invalidate("/api/home")
	third := get("/api/home")
	assert.Equal(t, `{"calls":2}`, third.Body.String())

	get("/missing")
	get("/missing")
	assert.Equal(t, 4, calls, "errors are not cached")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/home", nil))
	require.Equal(t, 5, calls)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestPageCache_ReplayKeepsPerRequestHeaders(t *testing.T) {
	c := NewPageCache(10, time.Minute)
	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Set-Cookie", "sb-access-token=x")
		fmt.Fprint(w, `{}`)
	}))
	withOrigin := func(origin string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			h.ServeHTTP(w, r)
		})
	}

	first := httptest.NewRecorder()
	withOrigin("https://a.example").ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/home", nil))
	require.Equal(t, "MISS", first.Header().Get("X-Cache"))

	page, ok := c.Get("/api/home")
	require.True(t, ok)
	assert.Empty(t, page.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, page.Header.Get("Vary"))
	assert.Empty(t, page.Header.Get("Set-Cookie"))
	assert.Equal(t, "application/json", page.Header.Get("Content-Type"))

	second := httptest.NewRecorder()
	withOrigin("https://b.example").ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/home", nil))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "https://b.example", second.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, []string{"Origin"}, second.Header().Values("Vary"))
	assert.Empty(t, second.Header().Get("Set-Cookie"))
}

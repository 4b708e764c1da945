package cache

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/nepal-lottery/lottery-backend/internal/config"
)

// DefaultSize bounds the number of cached responses.
const DefaultSize = 512

// Page is a cached response.
type Page struct {
	Status int
	Header http.Header
	Body   []byte
}

// PageCache keeps successful public GET responses for a fixed TTL and lets
// writers drop them early by path prefix.
type PageCache struct {
	lru *expirable.LRU[string, Page]
}

// NewPageCache creates a cache holding at most size pages for ttl each.
func NewPageCache(size int, ttl time.Duration) *PageCache {
	if size <= 0 {
		size = DefaultSize
	}
	return &PageCache{lru: expirable.NewLRU[string, Page](size, nil, ttl)}
}

// Get returns the page stored under key.
func (c *PageCache) Get(key string) (Page, bool) {
	return c.lru.Get(key)
}

// Set stores p under key.
func (c *PageCache) Set(key string, p Page) {
	c.lru.Add(key, p)
}

// Len is the number of live entries.
func (c *PageCache) Len() int {
	return c.lru.Len()
}

// Invalidate removes every entry whose path starts with one of prefixes.
func (c *PageCache) Invalidate(prefixes ...string) int {
	removed := 0
	for _, key := range c.lru.Keys() {
		path := key
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				if c.lru.Remove(key) {
					removed++
				}
				break
			}
		}
	}
	if removed > 0 {
		config.GetLogger().WithField("prefixes", prefixes).Debugf("invalidated %d cached pages", removed)
	}
	return removed
}

type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Middleware serves GET requests from the cache and stores 200 responses.
// The X-Cache header reports HIT or MISS.
func (c *PageCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.RequestURI()
		if page, ok := c.Get(key); ok {
			for k, v := range page.Header {
				if _, set := w.Header()[k]; !set {
					w.Header()[k] = v
				}
			}
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(page.Status)
			_, _ = w.Write(page.Body)
			return
		}

		w.Header().Set("X-Cache", "MISS")
		rec := &recorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status != http.StatusOK {
			return
		}

		c.Set(key, Page{Status: rec.status, Header: storableHeader(w.Header()), Body: bytes.Clone(rec.buf.Bytes())})
	})
}

// storableHeader drops the per-request headers: CORS is decided by the
// caller's Origin and cookies belong to one client.
func storableHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		switch {
		case k == "X-Cache", k == "Set-Cookie", k == "Vary":
		case strings.HasPrefix(k, "Access-Control-"):
		default:
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}

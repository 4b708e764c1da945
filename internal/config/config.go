package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the API server reads from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string
	SupabaseJWTSecret  string
	StorageBucket      string
	AllowedOrigins     []string
	CacheTTL           time.Duration
	LogLevel           string
	Timezone           string
	BypassAuth         bool
}

// Location resolves Timezone, falling back to the server's local zone when
// the zone database is unavailable.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		GetLogger().Warnf("unknown TIMEZONE %q, using local time: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads the .env file (outside production) and then the process environment.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			GetLogger().Warnf("could not load .env file (this is fine in production): %v", err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppEnv:             getString("APP_ENV", "development"),
		Port:               getString("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SupabaseURL:        strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseJWTSecret:  os.Getenv("SUPABASE_JWT_SECRET"),
		StorageBucket:      getString("STORAGE_BUCKET", "results"),
		AllowedOrigins:     getList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		LogLevel:           getString("LOG_LEVEL", "info"),
		Timezone:           getString("TIMEZONE", "Asia/Kathmandu"),
	}

	ttl, err := getInt("CACHE_TTL_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	if ttl < 1 {
		return nil, fmt.Errorf("CACHE_TTL_SECONDS must be at least 1, got %d", ttl)
	}
	cfg.CacheTTL = time.Duration(ttl) * time.Second

	// BYPASS_AUTH only ever applies to local development.
	cfg.BypassAuth = os.Getenv("BYPASS_AUTH") == "true" && cfg.AppEnv == "development"

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.SupabaseJWTSecret == "" {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET is not set")
	}
	return cfg, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultProxyURL is the pass-through proxy the fetcher prepends to every
// target URL. The target is appended URI-component encoded.
const DefaultProxyURL = "https://proxy.corsfix.com/?"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Batch     BatchConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// ScraperConfig controls recipe fetching.
type ScraperConfig struct {
	// ProxyURL is the prefix the target URL is appended to.
	ProxyURL string // default: DefaultProxyURL

	// Timeout bounds a single scrape (fetch + parse) on the API surface.
	Timeout time.Duration // default: 30s

	// MaxBodyBytes caps how much of the proxied page is read.
	MaxBodyBytes int64 // default: 10 MiB

	// UserAgent is sent on every proxied request.
	UserAgent string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the scraped recipe cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached recipes.
	MaxEntries int // default: 1000
}

// BatchConfig controls batch imports.
type BatchConfig struct {
	// MaxURLs is the largest accepted batch.
	MaxURLs int // default: 50

	// Concurrency is the number of scrapes a batch runs at once.
	Concurrency int // default: 4
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("ELYSIA_HOST", "0.0.0.0"),
			Port: envIntOr("ELYSIA_PORT", 8080),
			Mode: envOr("ELYSIA_MODE", "release"),
		},
		Scraper: ScraperConfig{
			ProxyURL:     envOr("ELYSIA_PROXY_URL", DefaultProxyURL),
			Timeout:      envDurationOr("ELYSIA_SCRAPE_TIMEOUT", 30*time.Second),
			MaxBodyBytes: int64(envIntOr("ELYSIA_MAX_BODY_BYTES", 10<<20)),
			UserAgent:    os.Getenv("ELYSIA_USER_AGENT"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("ELYSIA_AUTH_ENABLED", true),
			APIKeys: envSliceOr("ELYSIA_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("ELYSIA_RATE_RPS", 5.0),
			Burst:             envIntOr("ELYSIA_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("ELYSIA_CACHE_MAX_ENTRIES", 1000),
		},
		Batch: BatchConfig{
			MaxURLs:     envIntOr("ELYSIA_BATCH_MAX_URLS", 50),
			Concurrency: envIntOr("ELYSIA_BATCH_CONCURRENCY", 4),
		},
		Log: LogConfig{
			Level:  envOr("ELYSIA_LOG_LEVEL", "info"),
			Format: envOr("ELYSIA_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

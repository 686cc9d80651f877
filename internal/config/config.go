// Package config provides centralized configuration loaded from environment
// variables. Shared by cmd/api and cmd/relayctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is populated from environment variables once at startup.
type Config struct {
	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// HTTP rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Upstream game API
	UpstreamBaseURL   string
	UpstreamAPIKey    string
	UpstreamReqPerMin int

	// Poll cadences
	PollInterval         time.Duration
	EventRefreshInterval time.Duration

	// Notification engine
	DedupeWindow    time.Duration
	DispatchWorkers int

	// Push gateway
	FCMEndpoint  string
	FCMServerKey string

	// Item icon assets for rich notifications (empty disables)
	IconBaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	baseURL := envOr("GAME_API_BASE_URL", "")
	if baseURL == "" {
		return nil, fmt.Errorf("GAME_API_BASE_URL must be set")
	}

	return &Config{
		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		UpstreamBaseURL:   strings.TrimRight(baseURL, "/"),
		UpstreamAPIKey:    envOr("GAME_API_KEY", ""),
		UpstreamReqPerMin: envInt("GAME_API_REQUESTS_PER_MINUTE", 60),

		PollInterval:         time.Duration(envInt("POLL_INTERVAL_SECONDS", 30)) * time.Second,
		EventRefreshInterval: time.Duration(envInt("EVENT_REFRESH_MINUTES", 60)) * time.Minute,

		DedupeWindow:    time.Duration(envInt("DEDUPE_WINDOW_SECONDS", 300)) * time.Second,
		DispatchWorkers: envInt("DISPATCH_WORKERS", 8),

		FCMEndpoint:  envOr("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
		FCMServerKey: envOr("FCM_SERVER_KEY", ""),

		IconBaseURL: envOr("ICON_BASE_URL", ""),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

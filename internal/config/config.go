package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds everything the process reads from the environment. It is
// built once at startup and injected; no other package looks up env vars at
// call time.
type AppConfig struct {
	// Solis API credentials.
	APIKey    string
	APISecret string

	// SolisBaseURL overrides the production endpoint (tests, proxies).
	// Empty selects the default.
	SolisBaseURL string

	// Shared secrets for the revalidation endpoint.
	CronSecret       string
	RevalidateSecret string

	// RevalidateAuthMode: "bearer", "body" or "any".
	RevalidateAuthMode string

	// SiteURL is the externally reachable base URL of this service, used by
	// the HTTP-callback refresh mode.
	SiteURL string

	// RefreshInterval controls how often the scheduler regenerates the data.
	RefreshInterval time.Duration

	// RefreshMode: "direct" or "http".
	RefreshMode string

	// CacheMaxAge bounds how long a result is served without recomputing.
	CacheMaxAge time.Duration

	// HTTPTimeout applies to outbound Solis calls.
	HTTPTimeout time.Duration

	Port string
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.APIKey = os.Getenv("API_KEY")
	cfg.APISecret = os.Getenv("API_SECRET")
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("API_KEY and API_SECRET are required")
	}

	cfg.SolisBaseURL = os.Getenv("SOLIS_BASE_URL")
	cfg.CronSecret = os.Getenv("CRON_SECRET")
	cfg.RevalidateSecret = os.Getenv("REVALIDATE_SECRET")
	cfg.RevalidateAuthMode = getenvDefault("REVALIDATE_AUTH_MODE", "any")
	cfg.SiteURL = os.Getenv("SITE_URL")

	interval, err := parseDuration("REFRESH_INTERVAL", "30m")
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = interval

	cfg.RefreshMode = getenvDefault("REFRESH_MODE", "direct")
	if cfg.RefreshMode == "http" && (cfg.SiteURL == "" || cfg.CronSecret == "") {
		return nil, fmt.Errorf("REFRESH_MODE=http requires SITE_URL and CRON_SECRET")
	}

	maxAge, err := parseDuration("CACHE_MAX_AGE", "10m")
	if err != nil {
		return nil, err
	}
	cfg.CacheMaxAge = maxAge

	timeout, err := parseDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultModel         = "gpt-4o"
	DefaultListenAddr    = ":8080"
	DefaultFetchTimeout  = 30 * time.Second
	DefaultRetryAttempts = 3
)

// Config holds everything the binaries need to run.
type Config struct {
	// OpenAIAPIKey authenticates completion requests. Required for any
	// extraction path.
	OpenAIAPIKey string

	// ScraperAPIKey enables fetching through the scraping proxy. When
	// empty, pages are fetched directly.
	ScraperAPIKey string

	// Model is the completion model identifier.
	Model string

	// ListenAddr is the HTTP server bind address.
	ListenAddr string

	// ServerAPIKey, when set, is required as a bearer token on incoming
	// requests.
	ServerAPIKey string

	// FetchTimeout bounds each page fetch attempt.
	FetchTimeout time.Duration

	// RetryAttempts is the number of retries after a failed fetch attempt.
	RetryAttempts int
}

// Load reads configuration from the environment, applying defaults for
// anything unset. It fails on values that do not parse, never on absent
// ones; required keys are checked by the callers that need them.
func Load() (*Config, error) {
	cfg := &Config{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		ScraperAPIKey: os.Getenv("SCRAPER_API_KEY"),
		Model:         envOr("TOXEX_MODEL", DefaultModel),
		ListenAddr:    envOr("TOXEX_LISTEN_ADDR", DefaultListenAddr),
		ServerAPIKey:  os.Getenv("TOXEX_API_KEY"),
		FetchTimeout:  DefaultFetchTimeout,
		RetryAttempts: DefaultRetryAttempts,
	}

	if v := os.Getenv("TOXEX_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse TOXEX_FETCH_TIMEOUT: %w", err)
		}
		cfg.FetchTimeout = d
	}
	if v := os.Getenv("TOXEX_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("parse TOXEX_RETRY_ATTEMPTS: %q is not a non-negative integer", v)
		}
		cfg.RetryAttempts = n
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultHTTPTimeout bounds every backend request unless overridden.
const DefaultHTTPTimeout = 15 * time.Second

// Config holds all configuration for the application.
type Config struct {
	APIBaseURL   string
	LogLevel     string
	HTTPTimeout  time.Duration
	TraceEnabled bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL: os.Getenv("TRACKWISE_API_BASE_URL"),
		LogLevel:   os.Getenv("LOG_LEVEL"),
	}

	cfg.HTTPTimeout = DefaultHTTPTimeout
	if secStr := os.Getenv("HTTP_TIMEOUT_SECONDS"); secStr != "" {
		if sec, err := strconv.Atoi(secStr); err == nil && sec > 0 {
			cfg.HTTPTimeout = time.Duration(sec) * time.Second
		}
	}

	cfg.TraceEnabled = os.Getenv("TRACE_ENABLED") == "true"

	// Validate required configuration.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.APIBaseURL == "" {
		errs = append(errs, "TRACKWISE_API_BASE_URL is required")
	} else if _, err := url.ParseRequestURI(c.APIBaseURL); err != nil {
		errs = append(errs, fmt.Sprintf("TRACKWISE_API_BASE_URL is not a valid URL: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Package config holds the storefront client configuration, loaded from
// environment variables.
package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/tuanpn1312/react-shop/pkg/config"
)

// Config holds all configuration for the storefront client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Backend the typed clients and the cart gateway talk to.
	BackendBaseURL string `env:"BACKEND_BASE_URL" envDefault:"http://localhost:8080"`

	// HTTP client behaviour.
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	HTTPMaxRetries int           `env:"HTTP_MAX_RETRIES" envDefault:"2"`

	// Circuit breaker in front of the cart endpoint.
	BreakerMaxRequests uint32        `env:"BREAKER_MAX_REQUESTS" envDefault:"3"`
	BreakerInterval    time.Duration `env:"BREAKER_INTERVAL" envDefault:"60s"`
	BreakerTimeout     time.Duration `env:"BREAKER_TIMEOUT" envDefault:"30s"`

	// Persistence for the anonymous cart and session. With RedisAddr unset
	// everything lives in process memory.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.BackendBaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL must not be empty")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.HTTPMaxRetries < 0 {
		return fmt.Errorf("HTTP_MAX_RETRIES must not be negative, got %d", c.HTTPMaxRetries)
	}
	return nil
}

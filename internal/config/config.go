// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"REHBER_DB_PATH" envDefault:"./data/rehber.db"`
	ServerHost string `env:"REHBER_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"REHBER_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"REHBER_ENV" envDefault:"development"`
	LogLevel   string `env:"REHBER_LOG_LEVEL" envDefault:"info"`

	// Admin API token guarding the /admin endpoints. Empty disables them.
	AdminToken string `env:"REHBER_ADMIN_TOKEN"`

	// Cache configuration
	RedisURL    string `env:"REHBER_REDIS_URL"` // Optional Redis URL for distributed caching
	CachePrefix string `env:"REHBER_CACHE_PREFIX" envDefault:"rehber:"`
	CacheTTL    int    `env:"REHBER_CACHE_TTL" envDefault:"3600"` // Default cache TTL in seconds

	// Translation provider (OpenAI-compatible chat completions)
	TranslateAPIKey  string  `env:"REHBER_TRANSLATE_API_KEY"`
	TranslateBaseURL string  `env:"REHBER_TRANSLATE_BASE_URL"`
	TranslateModel   string  `env:"REHBER_TRANSLATE_MODEL"`
	TranslateTimeout int     `env:"REHBER_TRANSLATE_TIMEOUT" envDefault:"45"` // Seconds per provider call
	TranslateRPS     float64 `env:"REHBER_TRANSLATE_RPS" envDefault:"2"`      // Outbound requests per second

	// Visitor logging
	VisitorIPSalt        string `env:"REHBER_VISITOR_IP_SALT"`
	VisitorRetentionDays int    `env:"REHBER_VISITOR_RETENTION_DAYS" envDefault:"90"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// TranslationEnabled returns true if a provider API key is configured.
// Without one, writes still work and everything English stays absent.
func (c Config) TranslationEnabled() bool {
	return c.TranslateAPIKey != ""
}

// CacheTTLDuration returns the default cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// TranslateTimeoutDuration returns the per-call provider timeout.
func (c Config) TranslateTimeoutDuration() time.Duration {
	return time.Duration(c.TranslateTimeout) * time.Second
}

// VisitorRetention returns how long visitor logs are kept.
func (c Config) VisitorRetention() time.Duration {
	return time.Duration(c.VisitorRetentionDays) * 24 * time.Hour
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("REHBER_SERVER_PORT out of range: %d", cfg.ServerPort)
	}
	if cfg.VisitorRetentionDays < 1 {
		return nil, fmt.Errorf("REHBER_VISITOR_RETENTION_DAYS must be at least 1, got %d", cfg.VisitorRetentionDays)
	}

	return cfg, nil
}

// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Mail     MailConfig     `koanf:"mail"`
	Lockout  LockoutConfig  `koanf:"lockout"`
	Audit    AuditConfig    `koanf:"audit"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use NumCPU
}

// APIConfig holds API pagination settings
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds credential and request-shaping settings.
//
// Environment Variables:
//   - JWT_SECRET: HMAC secret for access/refresh tokens (min 32 bytes)
//   - ACCESS_TOKEN_TTL: access token lifetime (default: 24h)
//   - REFRESH_TOKEN_TTL: refresh token lifetime (default: 720h)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW / DISABLE_RATE_LIMIT
//   - CORS_ORIGINS: comma-separated list of allowed origins
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	AccessTokenTTL    time.Duration `koanf:"access_token_ttl"`
	RefreshTokenTTL   time.Duration `koanf:"refresh_token_ttl"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// MailConfig holds confirmation code delivery settings.
//
// Backend "smtp" delivers through the configured relay; backend "log"
// writes the message to the application log and is meant for development.
type MailConfig struct {
	Backend  string `koanf:"backend"`
	From     string `koanf:"from"`
	Subject  string `koanf:"subject"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	UseTLS   bool   `koanf:"use_tls"`

	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the sustained number of messages per second, Burst the
	// number that may be sent back to back.
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`

	// Circuit breaker around the relay
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// LockoutConfig holds confirmation code guessing limits.
type LockoutConfig struct {
	Enabled            bool          `koanf:"enabled"`
	MaxAttempts        int           `koanf:"max_attempts"`
	Duration           time.Duration `koanf:"duration"`
	MaxDuration        time.Duration `koanf:"max_duration"`
	Exponential        bool          `koanf:"exponential"`
	CleanupInterval    time.Duration `koanf:"cleanup_interval"`
	StorePath          string        `koanf:"store_path"` // empty = in-memory store
	StoreSyncOnWrite   bool          `koanf:"store_sync_on_write"`
	StoreValueLogBytes int64         `koanf:"store_value_log_bytes"`
}

// AuditConfig holds security event trail settings.
type AuditConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Store      string `koanf:"store"` // memory or duckdb
	BufferSize int    `koanf:"buffer_size"`
	MaxEvents  int    `koanf:"max_events"` // memory store cap
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, the first config file found and
// environment variables.
func Load() (*Config, error) {
	return LoadWithKoanf(findConfigFile())
}

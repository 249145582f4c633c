// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.API.DefaultPageSize != 10 {
		t.Errorf("API.DefaultPageSize = %d, want 10", cfg.API.DefaultPageSize)
	}
	if cfg.Security.AccessTokenTTL != 24*time.Hour {
		t.Errorf("Security.AccessTokenTTL = %v, want 24h", cfg.Security.AccessTokenTTL)
	}
	if cfg.Security.RefreshTokenTTL != 720*time.Hour {
		t.Errorf("Security.RefreshTokenTTL = %v, want 720h", cfg.Security.RefreshTokenTTL)
	}
	if cfg.Mail.Backend != "log" {
		t.Errorf("Mail.Backend = %q, want log", cfg.Mail.Backend)
	}
	if !cfg.Lockout.Enabled || cfg.Lockout.MaxAttempts != 5 {
		t.Errorf("Lockout = %+v, want enabled with 5 attempts", cfg.Lockout)
	}
	if cfg.Lockout.Duration != 15*time.Minute {
		t.Errorf("Lockout.Duration = %v, want 15m", cfg.Lockout.Duration)
	}
	if cfg.Audit.Store != "memory" {
		t.Errorf("Audit.Store = %q, want memory", cfg.Audit.Store)
	}

	// Defaults alone are invalid: a JWT secret is mandatory.
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() on defaults should fail without JWT_SECRET")
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DUCKDB_PATH", "/tmp/test.duckdb")
	t.Setenv("ACCESS_TOKEN_TTL", "1h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOCKOUT_MAX_ATTEMPTS", "3")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf("")
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/test.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Security.AccessTokenTTL != time.Hour {
		t.Errorf("AccessTokenTTL = %v, want 1h", cfg.Security.AccessTokenTTL)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Lockout.MaxAttempts != 3 {
		t.Errorf("Lockout.MaxAttempts = %d, want 3", cfg.Lockout.MaxAttempts)
	}
}

func TestLoadWithKoanf_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7000
security:
  jwt_secret: "` + testSecret + `"
mail:
  backend: smtp
  host: smtp.example.com
  port: 2525
  from: yamdb@example.com
logging:
  level: debug
  format: console
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// Environment wins over the file.
	t.Setenv("SMTP_PORT", "465")

	cfg, err := LoadWithKoanf(path)
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Mail.Backend != "smtp" || cfg.Mail.Host != "smtp.example.com" {
		t.Errorf("Mail = %+v", cfg.Mail)
	}
	if cfg.Mail.Port != 465 {
		t.Errorf("Mail.Port = %d, want 465 from env", cfg.Mail.Port)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console", cfg.Logging.Format)
	}
}

func TestLoadWithKoanf_MissingFile(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	if _, err := LoadWithKoanf(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for unreadable config file")
	}
}

func TestFindConfigFile_EnvVar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"JWT_SECRET", "security.jwt_secret"},
		{"SMTP_HOST", "mail.host"},
		{"DATABASE_PATH", "database.path"},
		{"DUCKDB_PATH", "database.path"},
		{"LOCKOUT_STORE_PATH", "lockout.store_path"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

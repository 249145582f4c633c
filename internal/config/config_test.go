// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testSecret
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults with secret",
			mutate: func(*Config) {},
		},
		{
			name:    "short secret",
			mutate:  func(c *Config) { c.Security.JWTSecret = "short" },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "refresh shorter than access",
			mutate:  func(c *Config) { c.Security.RefreshTokenTTL = time.Minute },
			wantErr: "REFRESH_TOKEN_TTL",
		},
		{
			name:    "unknown mail backend",
			mutate:  func(c *Config) { c.Mail.Backend = "pigeon" },
			wantErr: "MAIL_BACKEND",
		},
		{
			name:    "smtp without host",
			mutate:  func(c *Config) { c.Mail.Backend = "smtp" },
			wantErr: "SMTP_HOST",
		},
		{
			name: "smtp with host",
			mutate: func(c *Config) {
				c.Mail.Backend = "smtp"
				c.Mail.Host = "smtp.example.com"
			},
		},
		{
			name:    "wildcard cors in production",
			mutate:  func(c *Config) { c.Server.Environment = "production" },
			wantErr: "CORS_ORIGINS",
		},
		{
			name:    "max page below default",
			mutate:  func(c *Config) { c.API.MaxPageSize = 5 },
			wantErr: "max_page_size",
		},
		{
			name:    "lockout zero attempts",
			mutate:  func(c *Config) { c.Lockout.MaxAttempts = 0 },
			wantErr: "LOCKOUT_MAX_ATTEMPTS",
		},
		{
			name: "lockout disabled skips checks",
			mutate: func(c *Config) {
				c.Lockout.Enabled = false
				c.Lockout.MaxAttempts = 0
			},
		},
		{
			name:    "unknown audit store",
			mutate:  func(c *Config) { c.Audit.Store = "s3" },
			wantErr: "AUDIT_STORE",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "LOG_LEVEL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfigAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8000}
	if got := s.Addr(); got != "127.0.0.1:8000" {
		t.Errorf("Addr() = %q", got)
	}
}

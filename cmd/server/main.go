// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/yamdb/internal/api"
	"github.com/tomtom215/yamdb/internal/audit"
	"github.com/tomtom215/yamdb/internal/auth"
	"github.com/tomtom215/yamdb/internal/config"
	"github.com/tomtom215/yamdb/internal/database"
	"github.com/tomtom215/yamdb/internal/logging"
	"github.com/tomtom215/yamdb/internal/metrics"
	"github.com/tomtom215/yamdb/internal/notify"
	"github.com/tomtom215/yamdb/internal/supervisor"
	"github.com/tomtom215/yamdb/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("mail_backend", cfg.Mail.Backend).
		Msg("Starting YaMDb")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Shutdown complete")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	auditLogger, err := newAuditLogger(ctx, cfg.Audit, db)
	if err != nil {
		return err
	}

	channel, err := notify.New(cfg.Mail)
	if err != nil {
		return err
	}
	if cfg.Mail.Backend == "log" {
		logging.Warn().Msg("Confirmation codes are written to the log (MAIL_BACKEND=log); do not use in production")
	}

	lockout, err := auth.NewLockoutFromConfig(cfg.Lockout)
	if err != nil {
		return err
	}
	defer func() {
		if err := lockout.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing lockout store")
		}
	}()

	tokens, err := auth.NewTokenManager(&cfg.Security)
	if err != nil {
		return err
	}
	svc := auth.NewService(db, tokens, channel, lockout, auditLogger, cfg.Mail.Subject)

	handler := api.NewHandler(api.Deps{
		Config:  cfg,
		DB:      db,
		Service: svc,
		Tokens:  tokens,
		Audit:   auditLogger,
		Version: version,
	})

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	metrics.SetAppInfo(version)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}
	if auditLogger != nil {
		tree.AddBackgroundService(auditLogger)
	}
	tree.AddBackgroundService(lockout)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newAuditLogger picks the configured store. The DuckDB store shares the
// application database.
func newAuditLogger(ctx context.Context, cfg config.AuditConfig, db *database.DB) (*audit.Logger, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Audit logging disabled")
		return nil, nil
	}

	var store audit.Store
	switch cfg.Store {
	case "duckdb":
		s := audit.NewDuckDBStore(db.Conn())
		if err := s.CreateTable(ctx); err != nil {
			return nil, err
		}
		store = s
	default:
		store = audit.NewMemoryStore(cfg.MaxEvents)
	}

	logging.Info().Str("store", cfg.Store).Msg("Audit logging initialized")
	return audit.NewLogger(store, &audit.Config{
		Enabled:    true,
		BufferSize: cfg.BufferSize,
	}), nil
}

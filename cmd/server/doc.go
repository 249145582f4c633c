// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

/*
Command server runs the YaMDb HTTP API.

Startup order:

 1. Configuration: koanf v2 (defaults, optional YAML file, environment)
 2. Logging: zerolog, json or console
 3. Database: DuckDB, schema created on open
 4. Audit logger: memory or DuckDB store
 5. Mail channel: log or SMTP, behind a rate limiter and circuit breaker
 6. Lockout manager: memory or Badger store
 7. Supervisor tree: audit writer and lockout sweeper in the background
    layer, HTTP server in the api layer

SIGINT or SIGTERM cancels the tree. The HTTP server drains in-flight
requests for SHUTDOWN_TIMEOUT before the database is closed.

# Configuration

	HTTP_PORT=8000
	DUCKDB_PATH=/data/yamdb.duckdb
	JWT_SECRET=<32+ chars>          # required
	ACCESS_TOKEN_TTL=24h
	REFRESH_TOKEN_TTL=720h

	MAIL_BACKEND=smtp               # log (development) or smtp
	SMTP_HOST=mail.example.com
	SMTP_PORT=587
	MAIL_FROM=noreply@example.com

	LOCKOUT_MAX_ATTEMPTS=5
	LOCKOUT_STORE_PATH=/data/lockout   # empty keeps lockouts in memory

	AUDIT_STORE=duckdb              # memory or duckdb
	LOG_LEVEL=info
	LOG_FORMAT=json

A YAML file at CONFIG_PATH, ./config.yaml or /etc/yamdb/config.yaml is
loaded before the environment.

# Build

	go build -ldflags "-X main.version=$(git describe --tags)" ./cmd/server
*/
package main

// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

/*
Package config provides centralized configuration management for YaMDb.

Configuration is assembled with Koanf v2 from three layers, later layers
overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file (CONFIG_PATH, config.yaml, /etc/yamdb/config.yaml)
 3. Environment variables (DATABASE_PATH, JWT_SECRET, SMTP_HOST, ...)

# Configuration Structure

  - ServerConfig: HTTP listener (host, port, timeouts)
  - DatabaseConfig: DuckDB file, memory and thread limits
  - APIConfig: pagination defaults
  - SecurityConfig: JWT secret and token lifetimes, rate limiting, CORS
  - MailConfig: confirmation code delivery (smtp or log backend)
  - LockoutConfig: activation attempt throttling
  - AuditConfig: security event trail
  - LoggingConfig: zerolog level and format

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	db, err := database.New(&cfg.Database)

Config is immutable after Load and safe for concurrent reads.
*/
package config

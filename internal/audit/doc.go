// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

// Package audit records security-relevant events: token failures,
// authorization denials, registrations, activations, activation lockouts
// and administrative account changes.
//
// # Architecture
//
// The logger is a producer-consumer pipeline:
//
//	Logger.Log() -> Event Buffer (chan) -> Serve loop -> Store
//	                     |                      |
//	                 Non-blocking          Supervised service
//
// Log never blocks the request path. When the buffer is full the event is
// dropped and a warning is logged. Serve runs under the process supervisor
// and drains the buffer on shutdown.
//
// # Stores
//
//   - MemoryStore: bounded ring, the default
//   - DuckDBStore: the audit_events table in the main database
//
// # Usage
//
//	store := audit.NewMemoryStore(cfg.Audit.MaxEvents)
//	logger := audit.NewLogger(store, &audit.Config{Enabled: true, BufferSize: 256})
//	go logger.Serve(ctx)
//
//	logger.LogActivationFailed(ctx, "alice", src, 3)
//
// A nil *Logger is valid and records nothing.
package audit

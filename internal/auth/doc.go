// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

// Package auth issues and verifies credentials and runs the sign-up flow.
//
// # Components
//
//   - TokenManager (jwt.go): HS256 access/refresh pairs. The subject claim
//     is the account ID; "typ" separates the two token kinds so neither can
//     stand in for the other.
//   - Service (registration.go): Register delivers a four digit code
//     through a notify.Channel and stores its bcrypt hash once delivery
//     succeeded. Activate exchanges the code for a token pair and consumes
//     it. Refresh rebuilds a pair from the stored account.
//   - LockoutManager (lockout.go, lockout_badger.go): per-username limit on
//     wrong codes with exponential backoff, in memory or in BadgerDB. Serve
//     runs the cleanup loop under the supervisor.
//   - Authenticator (middleware.go): resolves the Bearer token to the
//     current stored account and puts it in the request context.
//
// # Usage
//
//	tokens, _ := auth.NewTokenManager(&cfg.Security)
//	svc := auth.NewService(db, tokens, channel, lockout, auditLog, cfg.Mail.Subject)
//	account, err := svc.Register(ctx, "alice", "alice@x.com")
//	pair, err := svc.Activate(ctx, "alice", code)
//
// # Errors
//
// Sentinels are matched with errors.Is. A wrong code while locked comes
// back as *LockedError, which also matches ErrActivationLocked. Delivery
// failures are returned unchanged as *notify.DeliveryError.
package auth

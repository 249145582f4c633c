// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

// Package database is the DuckDB storage layer for accounts, the catalog,
// reviews and comments.
//
// # Architecture
//
// The package is organized by entity:
//   - database.go: connection lifecycle, pool configuration, transactions
//   - schema.go: sequences, tables and uniqueness indexes
//   - errors.go: sentinel errors and constraint error translation
//   - accounts.go: accounts, confirmation codes, activation
//   - categories.go: categories and genres (shared slug helpers)
//   - titles.go: titles, genre links, filters and rating aggregation
//   - reviews.go, comments.go: nested resources scoped to their parent
//   - query/: WHERE clause builder
//
// # Uniqueness
//
// Every uniqueness rule is a storage constraint. Callers insert and inspect
// the error; they never look up first. Constraint failures, including the
// transaction conflicts DuckDB raises when two writers race on one key,
// come back wrapped around ErrConflict:
//
//	_, err := db.CreateReview(ctx, review)
//	if errors.Is(err, database.ErrConflict) {
//	    // 409
//	}
//
// # Cascades
//
// DuckDB has no ON DELETE actions, so DeleteAccount, DeleteTitle,
// DeleteReview, DeleteCategory and DeleteGenre remove or detach dependent
// rows themselves inside one transaction.
//
// # Thread Safety
//
// DB is safe for concurrent use. Every method takes a context; a 30 second
// timeout applies when the context carries no deadline.
package database

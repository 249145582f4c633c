// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

/*
schema.go - Table Definitions

Uniqueness lives in the schema, never in application check-then-insert:
  - accounts: unique indexes on lower(username) and lower(email)
  - categories, genres: UNIQUE slug
  - reviews: UNIQUE (title_id, author_id)

DuckDB does not implement ON DELETE actions on foreign keys, so references
are plain BIGINT columns and cascades run inside a transaction in the
delete methods (see DeleteTitle, DeleteAccount, DeleteReview, DeleteCategory).
*/

package database

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS seq_accounts START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_categories START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_genres START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_titles START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_reviews START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_comments START 1`,

	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_accounts'),
		username VARCHAR NOT NULL,
		email VARCHAR NOT NULL,
		role VARCHAR NOT NULL DEFAULT 'user',
		is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
		first_name VARCHAR NOT NULL DEFAULT '',
		last_name VARCHAR NOT NULL DEFAULT '',
		bio VARCHAR NOT NULL DEFAULT '',
		confirmation_code VARCHAR NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		date_joined TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_username ON accounts ((lower(username)))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_email ON accounts ((lower(email)))`,

	`CREATE TABLE IF NOT EXISTS categories (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_categories'),
		name VARCHAR NOT NULL,
		slug VARCHAR NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS genres (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_genres'),
		name VARCHAR NOT NULL,
		slug VARCHAR NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS titles (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_titles'),
		name VARCHAR NOT NULL,
		year INTEGER NOT NULL,
		description VARCHAR NOT NULL DEFAULT '',
		category_id BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_titles_year ON titles (year)`,

	`CREATE TABLE IF NOT EXISTS genre_titles (
		title_id BIGINT NOT NULL,
		genre_id BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS reviews (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_reviews'),
		title_id BIGINT NOT NULL,
		author_id BIGINT NOT NULL,
		text VARCHAR NOT NULL,
		score INTEGER NOT NULL CHECK (score BETWEEN 1 AND 10),
		pub_date TIMESTAMP NOT NULL,
		UNIQUE (title_id, author_id)
	)`,

	`CREATE TABLE IF NOT EXISTS comments (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_comments'),
		review_id BIGINT NOT NULL,
		author_id BIGINT NOT NULL,
		text VARCHAR NOT NULL,
		pub_date TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_review ON comments (review_id)`,
}

// initialize creates sequences, tables and indexes.
func (db *DB) initialize(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

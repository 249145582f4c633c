// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/yamdb/internal/database/query"
	"github.com/tomtom215/yamdb/internal/models"
)

const reviewSelect = `
	SELECT r.id, r.title_id, r.author_id, a.username, r.text, r.score, r.pub_date
	FROM reviews r
	JOIN accounts a ON a.id = r.author_id`

func scanReview(row rowScanner) (*models.Review, error) {
	var r models.Review
	if err := row.Scan(&r.ID, &r.TitleID, &r.AuthorID, &r.Author, &r.Text, &r.Score, &r.PubDate); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReview inserts a review. A second review by the same author on the
// same title returns ErrConflict, whichever request gets there first.
func (db *DB) CreateReview(ctx context.Context, r *models.Review) (*models.Review, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if r.PubDate.IsZero() {
		r.PubDate = time.Now().UTC()
	}

	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO reviews (title_id, author_id, text, score, pub_date)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		r.TitleID, r.AuthorID, r.Text, r.Score, r.PubDate,
	).Scan(&r.ID)
	if err != nil {
		return nil, translateInsertError("create review", err)
	}
	return db.GetReview(ctx, r.TitleID, r.ID)
}

// GetReview returns a review only if it belongs to the given title.
func (db *DB) GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	r, err := scanReview(db.conn.QueryRowContext(ctx,
		reviewSelect+" WHERE r.id = ? AND r.title_id = ?", reviewID, titleID))
	if err != nil {
		return nil, translateLookupError("get review", err)
	}
	return r, nil
}

// ListReviews returns a page of a title's reviews, oldest first.
func (db *DB) ListReviews(ctx context.Context, titleID int64, page models.Page) ([]models.Review, int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var total int64
	if err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviews WHERE title_id = ?", titleID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		reviewSelect+" WHERE r.title_id = ? ORDER BY r.pub_date, r.id"+query.LimitOffset(page.Limit, page.Offset),
		titleID)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, total, nil
}

// UpdateReview applies the non-nil fields of patch. Author and title never
// change.
func (db *DB) UpdateReview(ctx context.Context, titleID, reviewID int64, patch models.ReviewPatch) (*models.Review, error) {
	var sets []string
	var args []interface{}
	if patch.Text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *patch.Text)
	}
	if patch.Score != nil {
		sets = append(sets, "score = ?")
		args = append(args, *patch.Score)
	}

	if len(sets) > 0 {
		ctx, cancel := db.ensureContext(ctx)
		defer cancel()

		args = append(args, reviewID, titleID)
		res, err := db.conn.ExecContext(ctx,
			"UPDATE reviews SET "+strings.Join(sets, ", ")+" WHERE id = ? AND title_id = ?", args...)
		if err != nil {
			return nil, fmt.Errorf("update review: %w", err)
		}
		if err := requireAffected("update review", res); err != nil {
			return nil, err
		}
	}
	return db.GetReview(ctx, titleID, reviewID)
}

// DeleteReview removes a review and its comments.
func (db *DB) DeleteReview(ctx context.Context, titleID, reviewID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE id = ? AND title_id = ?", reviewID, titleID)
		if err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		if err := requireAffected("delete review", res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE review_id = ?", reviewID); err != nil {
			return fmt.Errorf("delete review comments: %w", err)
		}
		return nil
	})
}

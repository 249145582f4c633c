// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/yamdb/internal/database/query"
	"github.com/tomtom215/yamdb/internal/models"
)

const commentSelect = `
	SELECT c.id, c.review_id, c.author_id, a.username, c.text, c.pub_date
	FROM comments c
	JOIN accounts a ON a.id = c.author_id`

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	if err := row.Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.Author, &c.Text, &c.PubDate); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment inserts a comment on a review.
func (db *DB) CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if c.PubDate.IsZero() {
		c.PubDate = time.Now().UTC()
	}

	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO comments (review_id, author_id, text, pub_date)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		c.ReviewID, c.AuthorID, c.Text, c.PubDate,
	).Scan(&c.ID)
	if err != nil {
		return nil, translateInsertError("create comment", err)
	}
	return db.GetComment(ctx, c.ReviewID, c.ID)
}

// GetComment returns a comment only if it belongs to the given review.
func (db *DB) GetComment(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	c, err := scanComment(db.conn.QueryRowContext(ctx,
		commentSelect+" WHERE c.id = ? AND c.review_id = ?", commentID, reviewID))
	if err != nil {
		return nil, translateLookupError("get comment", err)
	}
	return c, nil
}

// ListComments returns a page of a review's comments, oldest first.
func (db *DB) ListComments(ctx context.Context, reviewID int64, page models.Page) ([]models.Comment, int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var total int64
	if err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comments WHERE review_id = ?", reviewID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		commentSelect+" WHERE c.review_id = ? ORDER BY c.pub_date, c.id"+query.LimitOffset(page.Limit, page.Offset),
		reviewID)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, total, nil
}

// UpdateComment replaces a comment's text.
func (db *DB) UpdateComment(ctx context.Context, reviewID, commentID int64, text string) (*models.Comment, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		"UPDATE comments SET text = ? WHERE id = ? AND review_id = ?", text, commentID, reviewID)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if err := requireAffected("update comment", res); err != nil {
		return nil, err
	}
	return db.GetComment(ctx, reviewID, commentID)
}

// DeleteComment removes a comment.
func (db *DB) DeleteComment(ctx context.Context, reviewID, commentID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM comments WHERE id = ? AND review_id = ?", commentID, reviewID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return requireAffected("delete comment", res)
}

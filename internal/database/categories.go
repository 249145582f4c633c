// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/yamdb/internal/database/query"
	"github.com/tomtom215/yamdb/internal/models"
)

// Categories and genres share one shape (id, name, slug). The helpers below
// work on models.Category; genres convert at the boundary.

type slugTable struct {
	table  string
	entity string
	// unlink detaches titles before the row itself is deleted.
	unlink string
}

var (
	categoriesTable = slugTable{
		table:  "categories",
		entity: "category",
		unlink: "UPDATE titles SET category_id = NULL WHERE category_id = ?",
	}
	genresTable = slugTable{
		table:  "genres",
		entity: "genre",
		unlink: "DELETE FROM genre_titles WHERE genre_id = ?",
	}
)

func (db *DB) createSlugged(ctx context.Context, t slugTable, c *models.Category) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err := db.conn.QueryRowContext(ctx,
		"INSERT INTO "+t.table+" (name, slug) VALUES (?, ?) RETURNING id",
		c.Name, c.Slug,
	).Scan(&c.ID)
	if err != nil {
		return translateInsertError("create "+t.entity, err)
	}
	return nil
}

func (db *DB) listSlugged(ctx context.Context, t slugTable, filter models.SlugFilter) ([]models.Category, int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().
		AddContainsFold("name", filter.Search).
		BuildWithPrefix()

	var total int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table+" "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", t.table, err)
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, name, slug FROM "+t.table+" "+where+" ORDER BY name, id"+query.LimitOffset(filter.Limit, filter.Offset),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", t.table, err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", t.entity, err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate %s: %w", t.table, err)
	}
	return items, total, nil
}

func (db *DB) getSlugged(ctx context.Context, q queryRower, t slugTable, slug string) (*models.Category, error) {
	var c models.Category
	err := q.QueryRowContext(ctx, "SELECT id, name, slug FROM "+t.table+" WHERE slug = ?", slug).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		return nil, translateLookupError("get "+t.entity, err)
	}
	return &c, nil
}

func (db *DB) deleteSlugged(ctx context.Context, t slugTable, slug string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		c, err := db.getSlugged(ctx, tx, t, slug)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, t.unlink, c.ID); err != nil {
			return fmt.Errorf("unlink %s: %w", t.entity, err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM "+t.table+" WHERE id = ?", c.ID)
		if err != nil {
			return fmt.Errorf("delete %s: %w", t.entity, err)
		}
		return requireAffected("delete "+t.entity, res)
	})
}

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// CreateCategory inserts a category. A taken slug returns ErrConflict.
func (db *DB) CreateCategory(ctx context.Context, c *models.Category) error {
	return db.createSlugged(ctx, categoriesTable, c)
}

// ListCategories returns a page of categories ordered by name.
func (db *DB) ListCategories(ctx context.Context, filter models.SlugFilter) ([]models.Category, int64, error) {
	return db.listSlugged(ctx, categoriesTable, filter)
}

// GetCategoryBySlug returns the category with the given slug.
func (db *DB) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.getSlugged(ctx, db.conn, categoriesTable, slug)
}

// DeleteCategory removes a category. Its titles keep existing with no
// category.
func (db *DB) DeleteCategory(ctx context.Context, slug string) error {
	return db.deleteSlugged(ctx, categoriesTable, slug)
}

// CreateGenre inserts a genre. A taken slug returns ErrConflict.
func (db *DB) CreateGenre(ctx context.Context, g *models.Genre) error {
	c := models.Category(*g)
	if err := db.createSlugged(ctx, genresTable, &c); err != nil {
		return err
	}
	g.ID = c.ID
	return nil
}

// ListGenres returns a page of genres ordered by name.
func (db *DB) ListGenres(ctx context.Context, filter models.SlugFilter) ([]models.Genre, int64, error) {
	items, total, err := db.listSlugged(ctx, genresTable, filter)
	if err != nil {
		return nil, 0, err
	}
	genres := make([]models.Genre, len(items))
	for i, c := range items {
		genres[i] = models.Genre(c)
	}
	return genres, total, nil
}

// GetGenreBySlug returns the genre with the given slug.
func (db *DB) GetGenreBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	c, err := db.getSlugged(ctx, db.conn, genresTable, slug)
	if err != nil {
		return nil, err
	}
	g := models.Genre(*c)
	return &g, nil
}

// DeleteGenre removes a genre and detaches it from every title.
func (db *DB) DeleteGenre(ctx context.Context, slug string) error {
	return db.deleteSlugged(ctx, genresTable, slug)
}

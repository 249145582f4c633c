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

	"github.com/tomtom215/yamdb/internal/database/query"
	"github.com/tomtom215/yamdb/internal/models"
)

const titleSelect = `
	SELECT t.id, t.name, t.year, t.description,
		c.id, c.name, c.slug,
		(SELECT AVG(r.score) FROM reviews r WHERE r.title_id = t.id) AS rating
	FROM titles t
	LEFT JOIN categories c ON c.id = t.category_id`

func scanTitle(row rowScanner) (*models.Title, error) {
	var t models.Title
	var catID sql.NullInt64
	var catName, catSlug sql.NullString
	var rating sql.NullFloat64

	if err := row.Scan(&t.ID, &t.Name, &t.Year, &t.Description,
		&catID, &catName, &catSlug, &rating); err != nil {
		return nil, err
	}
	if catID.Valid {
		t.Category = &models.Category{ID: catID.Int64, Name: catName.String, Slug: catSlug.String}
	}
	if rating.Valid {
		r := rating.Float64
		t.Rating = &r
	}
	t.Genres = []models.Genre{}
	return &t, nil
}

// resolveCategory maps a category slug to its ID. An empty slug means no
// category.
func resolveCategory(ctx context.Context, tx *sql.Tx, slug string) (sql.NullInt64, error) {
	if slug == "" {
		return sql.NullInt64{}, nil
	}
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM categories WHERE slug = ?", slug).Scan(&id)
	if err == sql.ErrNoRows {
		return sql.NullInt64{}, &ReferenceError{Field: "category", Slug: slug}
	}
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("resolve category: %w", err)
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

// resolveGenres maps genre slugs to IDs, dropping duplicates.
func resolveGenres(ctx context.Context, tx *sql.Tx, slugs []string) ([]int64, error) {
	seen := make(map[int64]bool, len(slugs))
	ids := make([]int64, 0, len(slugs))
	for _, slug := range slugs {
		var id int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM genres WHERE slug = ?", slug).Scan(&id)
		if err == sql.ErrNoRows {
			return nil, &ReferenceError{Field: "genre", Slug: slug}
		}
		if err != nil {
			return nil, fmt.Errorf("resolve genre: %w", err)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func linkGenres(ctx context.Context, tx *sql.Tx, titleID int64, genreIDs []int64) error {
	for _, gid := range genreIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO genre_titles (title_id, genre_id) VALUES (?, ?)", titleID, gid); err != nil {
			return fmt.Errorf("link genre: %w", err)
		}
	}
	return nil
}

// CreateTitle inserts a title with its genre links. Unknown category or
// genre slugs return a *ReferenceError and nothing is written.
func (db *DB) CreateTitle(ctx context.Context, in models.TitleInput) (*models.Title, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var id int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		catID, err := resolveCategory(ctx, tx, in.CategorySlug)
		if err != nil {
			return err
		}
		genreIDs, err := resolveGenres(ctx, tx, in.GenreSlugs)
		if err != nil {
			return err
		}
		err = tx.QueryRowContext(ctx,
			"INSERT INTO titles (name, year, description, category_id) VALUES (?, ?, ?, ?) RETURNING id",
			in.Name, in.Year, in.Description, catID,
		).Scan(&id)
		if err != nil {
			return translateInsertError("create title", err)
		}
		return linkGenres(ctx, tx, id, genreIDs)
	})
	if err != nil {
		return nil, err
	}
	return db.GetTitle(ctx, id)
}

// AddTitleGenre links one genre to a title. Linking a genre twice is a
// no-op; an unknown genre slug returns a *ReferenceError.
func (db *DB) AddTitleGenre(ctx context.Context, titleID int64, genreSlug string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int64
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM titles WHERE id = ?", titleID).Scan(&exists); err != nil {
			return fmt.Errorf("add title genre: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("add title genre: %w", ErrNotFound)
		}

		ids, err := resolveGenres(ctx, tx, []string{genreSlug})
		if err != nil {
			return err
		}

		var linked int64
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM genre_titles WHERE title_id = ? AND genre_id = ?", titleID, ids[0]).Scan(&linked); err != nil {
			return fmt.Errorf("add title genre: %w", err)
		}
		if linked > 0 {
			return nil
		}
		return linkGenres(ctx, tx, titleID, ids)
	})
}

// GetTitle returns a title with its category, genres and rating.
func (db *DB) GetTitle(ctx context.Context, id int64) (*models.Title, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	t, err := scanTitle(db.conn.QueryRowContext(ctx, titleSelect+" WHERE t.id = ?", id))
	if err != nil {
		return nil, translateLookupError("get title", err)
	}
	titles := []models.Title{*t}
	if err := db.attachGenres(ctx, titles); err != nil {
		return nil, err
	}
	return &titles[0], nil
}

// TitleExists reports whether a title with the given ID exists.
func (db *DB) TitleExists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM titles WHERE id = ?", id).Scan(&n); err != nil {
		return false, fmt.Errorf("title exists: %w", err)
	}
	return n > 0, nil
}

// ListTitles returns a page of titles matching every non-zero filter field,
// and the total number of matches.
func (db *DB) ListTitles(ctx context.Context, filter models.TitleFilter) ([]models.Title, int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	wb := query.NewWhereBuilder().
		AddEqualFold("c.slug", filter.Category).
		AddContainsFold("t.name", filter.Name).
		AddEqualInt("t.year", int64(filter.Year))
	if filter.Genre != "" {
		wb.AddClause(`EXISTS (
			SELECT 1 FROM genre_titles gt JOIN genres g ON g.id = gt.genre_id
			WHERE gt.title_id = t.id AND lower(g.slug) = lower(?))`, filter.Genre)
	}
	where, args := wb.BuildWithPrefix()

	var total int64
	countQuery := "SELECT COUNT(*) FROM titles t LEFT JOIN categories c ON c.id = t.category_id " + where
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		titleSelect+" "+where+" ORDER BY t.id"+query.LimitOffset(filter.Limit, filter.Offset), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	titles := []models.Title{}
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate titles: %w", err)
	}

	if err := db.attachGenres(ctx, titles); err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

// attachGenres loads the genres of all given titles in one query.
func (db *DB) attachGenres(ctx context.Context, titles []models.Title) error {
	if len(titles) == 0 {
		return nil
	}

	index := make(map[int64]int, len(titles))
	placeholders := make([]string, len(titles))
	args := make([]interface{}, len(titles))
	for i := range titles {
		index[titles[i].ID] = i
		placeholders[i] = "?"
		args[i] = titles[i].ID
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT gt.title_id, g.id, g.name, g.slug
		FROM genre_titles gt JOIN genres g ON g.id = gt.genre_id
		WHERE gt.title_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY g.name, g.id`, args...)
	if err != nil {
		return fmt.Errorf("load title genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var titleID int64
		var g models.Genre
		if err := rows.Scan(&titleID, &g.ID, &g.Name, &g.Slug); err != nil {
			return fmt.Errorf("scan title genre: %w", err)
		}
		if i, ok := index[titleID]; ok {
			titles[i].Genres = append(titles[i].Genres, g)
		}
	}
	return rows.Err()
}

// UpdateTitle applies the non-nil fields of patch. A non-nil GenreSlugs
// replaces the whole genre set; an empty CategorySlug clears the category.
func (db *DB) UpdateTitle(ctx context.Context, id int64, patch models.TitlePatch) (*models.Title, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int64
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM titles WHERE id = ?", id).Scan(&exists); err != nil {
			return fmt.Errorf("update title: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("update title: %w", ErrNotFound)
		}

		var sets []string
		var args []interface{}
		if patch.Name != nil {
			sets = append(sets, "name = ?")
			args = append(args, *patch.Name)
		}
		if patch.Year != nil {
			sets = append(sets, "year = ?")
			args = append(args, *patch.Year)
		}
		if patch.Description != nil {
			sets = append(sets, "description = ?")
			args = append(args, *patch.Description)
		}
		if patch.CategorySlug != nil {
			catID, err := resolveCategory(ctx, tx, *patch.CategorySlug)
			if err != nil {
				return err
			}
			sets = append(sets, "category_id = ?")
			args = append(args, catID)
		}

		var genreIDs []int64
		if patch.GenreSlugs != nil {
			var err error
			if genreIDs, err = resolveGenres(ctx, tx, *patch.GenreSlugs); err != nil {
				return err
			}
		}

		if len(sets) > 0 {
			args = append(args, id)
			if _, err := tx.ExecContext(ctx,
				"UPDATE titles SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
				return fmt.Errorf("update title: %w", err)
			}
		}

		if patch.GenreSlugs != nil {
			if _, err := tx.ExecContext(ctx, "DELETE FROM genre_titles WHERE title_id = ?", id); err != nil {
				return fmt.Errorf("clear title genres: %w", err)
			}
			return linkGenres(ctx, tx, id, genreIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return db.GetTitle(ctx, id)
}

// DeleteTitle removes a title with its genre links, reviews and their
// comments.
func (db *DB) DeleteTitle(ctx context.Context, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		stmts := []string{
			"DELETE FROM comments WHERE review_id IN (SELECT id FROM reviews WHERE title_id = ?)",
			"DELETE FROM reviews WHERE title_id = ?",
			"DELETE FROM genre_titles WHERE title_id = ?",
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("delete title dependents: %w", err)
			}
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM titles WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete title: %w", err)
		}
		return requireAffected("delete title", res)
	})
}

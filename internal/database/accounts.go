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

const accountColumns = `id, username, email, role, is_superuser, first_name, last_name, bio,
	confirmation_code, is_active, date_joined`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	var role string
	err := row.Scan(&a.ID, &a.Username, &a.Email, &role, &a.IsSuperuser,
		&a.FirstName, &a.LastName, &a.Bio, &a.ConfirmationHash, &a.IsActive, &a.DateJoined)
	if err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	return &a, nil
}

// CreateAccount inserts a new account and sets its ID. A username or email
// already taken, in any case, returns ErrConflict.
func (db *DB) CreateAccount(ctx context.Context, a *models.Account) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if a.Role == "" {
		a.Role = models.RoleUser
	}
	if a.DateJoined.IsZero() {
		a.DateJoined = time.Now().UTC()
	}

	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO accounts (username, email, role, is_superuser, first_name, last_name, bio,
			confirmation_code, is_active, date_joined)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		a.Username, a.Email, string(a.Role), a.IsSuperuser, a.FirstName, a.LastName, a.Bio,
		a.ConfirmationHash, a.IsActive, a.DateJoined,
	).Scan(&a.ID)
	if err != nil {
		return translateInsertError("create account", err)
	}
	return nil
}

// GetAccountByID returns the account with the given ID.
func (db *DB) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	a, err := scanAccount(db.conn.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id))
	if err != nil {
		return nil, translateLookupError("get account", err)
	}
	return a, nil
}

// GetAccountByUsername looks an account up by username, case-insensitively.
func (db *DB) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	a, err := scanAccount(db.conn.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE lower(username) = lower(?)", username))
	if err != nil {
		return nil, translateLookupError("get account by username", err)
	}
	return a, nil
}

// GetAccountByEmail looks an account up by email, case-insensitively.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	a, err := scanAccount(db.conn.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE lower(email) = lower(?)", email))
	if err != nil {
		return nil, translateLookupError("get account by email", err)
	}
	return a, nil
}

// ListAccounts returns a page of accounts ordered by ID, and the total
// number of matches.
func (db *DB) ListAccounts(ctx context.Context, filter models.AccountFilter) ([]models.Account, int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().
		AddContainsFold("username", filter.Search).
		BuildWithPrefix()

	var total int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts "+where+" ORDER BY id"+query.LimitOffset(filter.Limit, filter.Offset),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, total, nil
}

// UpdateAccount applies the non-nil fields of patch and returns the
// updated account.
func (db *DB) UpdateAccount(ctx context.Context, id int64, patch models.AccountPatch) (*models.Account, error) {
	var sets []string
	var args []interface{}
	add := func(column string, v interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, v)
	}

	if patch.Username != nil {
		add("username", *patch.Username)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Role != nil {
		add("role", string(*patch.Role))
	}
	if patch.FirstName != nil {
		add("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		add("last_name", *patch.LastName)
	}
	if patch.Bio != nil {
		add("bio", *patch.Bio)
	}

	if len(sets) > 0 {
		ctx, cancel := db.ensureContext(ctx)
		defer cancel()

		args = append(args, id)
		res, err := db.conn.ExecContext(ctx,
			"UPDATE accounts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return nil, translateInsertError("update account", err)
		}
		if err := requireAffected("update account", res); err != nil {
			return nil, err
		}
	}

	return db.GetAccountByID(ctx, id)
}

// SetConfirmationHash stores the hash of a freshly delivered code.
func (db *DB) SetConfirmationHash(ctx context.Context, id int64, hash string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, "UPDATE accounts SET confirmation_code = ? WHERE id = ?", hash, id)
	if err != nil {
		return fmt.Errorf("set confirmation code: %w", err)
	}
	return requireAffected("set confirmation code", res)
}

// ActivateAccount marks the account active and consumes its code.
func (db *DB) ActivateAccount(ctx context.Context, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		"UPDATE accounts SET is_active = TRUE, confirmation_code = '' WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("activate account: %w", err)
	}
	return requireAffected("activate account", res)
}

// DeleteAccount removes an account with its reviews and comments, and the
// comments left on its reviews.
func (db *DB) DeleteAccount(ctx context.Context, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		stmts := []string{
			"DELETE FROM comments WHERE author_id = ?",
			"DELETE FROM comments WHERE review_id IN (SELECT id FROM reviews WHERE author_id = ?)",
			"DELETE FROM reviews WHERE author_id = ?",
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("delete account dependents: %w", err)
			}
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		return requireAffected("delete account", res)
	})
}

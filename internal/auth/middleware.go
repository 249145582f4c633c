// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/yamdb/internal/audit"
	"github.com/tomtom215/yamdb/internal/database"
	"github.com/tomtom215/yamdb/internal/logging"
	"github.com/tomtom215/yamdb/internal/models"
)

type contextKey string

const accountContextKey contextKey = "account"

// ContextWithAccount stores the authenticated account.
func ContextWithAccount(ctx context.Context, a *models.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, a)
}

// AccountFromContext returns the authenticated account, or nil for an
// anonymous request.
func AccountFromContext(ctx context.Context) *models.Account {
	a, _ := ctx.Value(accountContextKey).(*models.Account)
	return a
}

// AccountLoader resolves the subject of a verified token.
type AccountLoader interface {
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
}

// FailureHandler writes the response for a request that presented a bad
// credential.
type FailureHandler func(w http.ResponseWriter, r *http.Request, err error)

// Authenticator resolves the Bearer token, if any, to the current stored
// account. Requests without an Authorization header continue anonymously;
// requests with an unusable one are rejected.
type Authenticator struct {
	tokens    *TokenManager
	accounts  AccountLoader
	audit     *audit.Logger
	onFailure FailureHandler
}

// NewAuthenticator creates the authentication middleware. A nil onFailure
// writes a plain 401.
func NewAuthenticator(tokens *TokenManager, accounts AccountLoader, auditLog *audit.Logger, onFailure FailureHandler) *Authenticator {
	if onFailure == nil {
		onFailure = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		}
	}
	return &Authenticator{tokens: tokens, accounts: accounts, audit: auditLog, onFailure: onFailure}
}

// Middleware attaches the account to the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := a.authenticate(r)
		if err != nil {
			a.audit.LogAuthFailure(r.Context(), err.Error())
			logging.Ctx(r.Context()).Debug().
				Err(err).
				Str("authorization", logging.SanitizeToken(r.Header.Get("Authorization"))).
				Msg("Authentication failed")
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			a.onFailure(w, r, err)
			return
		}
		if account != nil {
			r = r.WithContext(ContextWithAccount(r.Context(), account))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) authenticate(r *http.Request) (*models.Account, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, fmt.Errorf("%w: malformed Authorization header", ErrInvalidToken)
	}

	claims, err := a.tokens.VerifyAccess(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}
	id, err := claims.AccountID()
	if err != nil {
		return nil, err
	}

	account, err := a.accounts.GetAccountByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", ErrInvalidToken)
		}
		return nil, err
	}
	return account, nil
}

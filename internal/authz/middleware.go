// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package authz

import (
	"context"
	"net/http"

	"github.com/tomtom215/yamdb/internal/logging"
	"github.com/tomtom215/yamdb/internal/models"
)

// RequesterFunc extracts the authenticated account from a request context,
// returning nil for anonymous requests.
type RequesterFunc func(ctx context.Context) *models.Account

// DenyHandler writes the response for a denied request.
type DenyHandler func(w http.ResponseWriter, r *http.Request, p Policy, d Decision)

// Middleware enforces coarse policies on chi routes.
type Middleware struct {
	requester RequesterFunc
	onDeny    DenyHandler
}

// NewMiddleware creates the authorization middleware. A nil onDeny writes
// plain-text 401/403 responses.
func NewMiddleware(requester RequesterFunc, onDeny DenyHandler) *Middleware {
	if onDeny == nil {
		onDeny = plainDeny
	}
	return &Middleware{requester: requester, onDeny: onDeny}
}

// Require returns chi middleware enforcing policy p.
func (m *Middleware) Require(p Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := m.requester(r.Context())
			if d := Evaluate(p, req, r.Method); d != Allow {
				logging.Ctx(r.Context()).Debug().
					Str("policy", string(p)).
					Str("method", r.Method).
					Str("path", logging.SanitizeValue(r.URL.Path)).
					Str("decision", d.String()).
					Msg("Request denied")
				m.onDeny(w, r, p, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Deny writes the denial for an instance-level decision made in a handler.
func (m *Middleware) Deny(w http.ResponseWriter, r *http.Request, p Policy, d Decision) {
	m.onDeny(w, r, p, d)
}

func plainDeny(w http.ResponseWriter, _ *http.Request, _ Policy, d Decision) {
	if d == DenyUnauthenticated {
		w.Header().Set("WWW-Authenticate", `Bearer realm="yamdb"`)
		http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
		return
	}
	http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
}

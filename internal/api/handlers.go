// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/yamdb/internal/audit"
	"github.com/tomtom215/yamdb/internal/auth"
	"github.com/tomtom215/yamdb/internal/authz"
	"github.com/tomtom215/yamdb/internal/config"
	"github.com/tomtom215/yamdb/internal/database"
	"github.com/tomtom215/yamdb/internal/middleware"
	"github.com/tomtom215/yamdb/internal/models"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Config  *config.Config
	DB      *database.DB
	Service *auth.Service
	Tokens  *auth.TokenManager
	Audit   *audit.Logger
	Version string
}

// Handler serves every API route.
type Handler struct {
	db        *database.DB
	service   *auth.Service
	audit     *audit.Logger
	cfg       *config.Config
	authn     *auth.Authenticator
	authz     *authz.Middleware
	perf      *middleware.PerformanceMonitor
	startTime time.Time
	version   string
}

// NewHandler wires the handler and its request guards.
func NewHandler(deps Deps) *Handler {
	h := &Handler{
		db:        deps.DB,
		service:   deps.Service,
		audit:     deps.Audit,
		cfg:       deps.Config,
		perf:      middleware.NewPerformanceMonitor(1000, middleware.DefaultSlowThreshold),
		startTime: time.Now(),
		version:   deps.Version,
	}
	h.authn = auth.NewAuthenticator(deps.Tokens, deps.DB, deps.Audit, h.authFailure)
	h.authz = authz.NewMiddleware(auth.AccountFromContext, h.deny)
	return h
}

// authFailure answers a request that presented an unusable token.
func (h *Handler) authFailure(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token", nil, err)
}

// deny answers a request rejected by an access policy and audits it.
func (h *Handler) deny(w http.ResponseWriter, r *http.Request, p authz.Policy, d authz.Decision) {
	requester := auth.AccountFromContext(r.Context())
	h.audit.LogAuthzDenied(r.Context(), audit.ActorFromAccount(requester), string(p), r.Method, r.URL.Path)

	if d == authz.DenyUnauthenticated {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		respondError(w, r, http.StatusUnauthorized, CodeUnauthorized, "Authentication credentials were not provided", nil, nil)
		return
	}
	respondError(w, r, http.StatusForbidden, CodeForbidden, "You do not have permission to perform this action", nil, nil)
}

// checkAuthor runs the instance-level check for a loaded review or comment
// and writes the denial itself. It reports whether the request may proceed.
func (h *Handler) checkAuthor(w http.ResponseWriter, r *http.Request, authorID int64) bool {
	requester := auth.AccountFromContext(r.Context())
	if d := authz.EvaluateAuthor(requester, r.Method, authorID); d != authz.Allow {
		h.authz.Deny(w, r, authz.PolicyAuthorOrStaff, d)
		return false
	}
	return true
}

// requireAuthenticated is the in-handler variant of the authenticated
// policy, used after the parent resources have been resolved.
func (h *Handler) requireAuthenticated(w http.ResponseWriter, r *http.Request) (*models.Account, bool) {
	requester := auth.AccountFromContext(r.Context())
	if d := authz.Evaluate(authz.PolicyAuthenticated, requester, r.Method); d != authz.Allow {
		h.authz.Deny(w, r, authz.PolicyAuthenticated, d)
		return nil, false
	}
	return requester, true
}

// pathID parses a numeric URL parameter. A malformed ID is reported as
// not found, since no resource can carry it.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Not found", nil, nil)
		return 0, false
	}
	return id, true
}

// page parses pagination parameters and writes the error itself.
func (h *Handler) page(w http.ResponseWriter, r *http.Request) (models.Page, bool) {
	page, verr := parsePage(r, h.cfg.API)
	if verr != nil {
		respondValidation(w, r, verr)
		return page, false
	}
	return page, true
}

// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/yamdb/internal/audit"
	"github.com/tomtom215/yamdb/internal/auth"
	"github.com/tomtom215/yamdb/internal/models"
)

// UserCreateRequest is the admin-side account creation body.
type UserCreateRequest struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Email     string `json:"email" validate:"required,max=254,email"`
	Role      string `json:"role" validate:"omitempty,role"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Bio       string `json:"bio"`
}

// UserPatchRequest is the admin-side partial update.
type UserPatchRequest struct {
	Username  *string `json:"username" validate:"omitempty,max=150,username"`
	Email     *string `json:"email" validate:"omitempty,max=254,email"`
	Role      *string `json:"role" validate:"omitempty,role"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
}

// ProfilePatchRequest is the self-service edit. Username, email and role
// have no field here, so values sent for them are dropped while decoding.
type ProfilePatchRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
}

func (p UserPatchRequest) accountPatch() models.AccountPatch {
	patch := models.AccountPatch{
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Bio:       p.Bio,
	}
	if p.Role != nil {
		role := models.Role(*p.Role)
		patch.Role = &role
	}
	return patch
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, ok := h.page(w, r)
	if !ok {
		return
	}

	accounts, total, err := h.db.ListAccounts(r.Context(), models.AccountFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondData(w, r, http.StatusOK, newPaginated(r, page, total, accounts))
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account := &models.Account{
		Username:  req.Username,
		Email:     req.Email,
		Role:      models.Role(req.Role),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	}
	if err := h.db.CreateAccount(r.Context(), account); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondData(w, r, http.StatusCreated, account)
}

// GetUser handles GET /users/{username}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	account, err := h.db.GetAccountByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, account)
}

// UpdateUser handles PATCH /users/{username}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	account, err := h.db.GetAccountByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req UserPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.db.UpdateAccount(r.Context(), account.ID, req.accountPatch())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if updated.Role != account.Role {
		actor := audit.ActorFromAccount(auth.AccountFromContext(r.Context()))
		h.audit.LogRoleChanged(r.Context(), actor, updated.Username, account.Role, updated.Role)
	}

	respondData(w, r, http.StatusOK, updated)
}

// DeleteUser handles DELETE /users/{username}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	account, err := h.db.GetAccountByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := h.db.DeleteAccount(r.Context(), account.ID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	actor := audit.ActorFromAccount(auth.AccountFromContext(r.Context()))
	h.audit.LogAccountDeleted(r.Context(), actor, account.Username)
	respondNoContent(w)
}

// GetMe handles GET /users/me.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, auth.AccountFromContext(r.Context()))
}

// UpdateMe handles PATCH /users/me.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req ProfilePatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	update := models.ProfileUpdate{FirstName: req.FirstName, LastName: req.LastName, Bio: req.Bio}
	me := auth.AccountFromContext(r.Context())

	updated, err := h.db.UpdateAccount(r.Context(), me.ID, update.AccountPatch())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, updated)
}

// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/yamdb/internal/models"
)

// SlugRequest creates a category or a genre.
type SlugRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

// TitleRequest creates a title. Genres and category are given by slug.
type TitleRequest struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        int      `json:"year" validate:"required,notfutureyear"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"omitempty,max=50,slug"`
	Genre       []string `json:"genre" validate:"omitempty,dive,max=50,slug"`
}

// TitlePatchRequest partially updates a title. An empty category string
// clears the category; a genre list replaces the whole set.
type TitlePatchRequest struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=256"`
	Year        *int      `json:"year" validate:"omitempty,notfutureyear"`
	Description *string   `json:"description"`
	Category    *string   `json:"category" validate:"omitempty,max=50"`
	Genre       *[]string `json:"genre" validate:"omitempty,dive,max=50,slug"`
}

func (h *Handler) slugFilter(w http.ResponseWriter, r *http.Request) (models.SlugFilter, models.Page, bool) {
	page, ok := h.page(w, r)
	if !ok {
		return models.SlugFilter{}, page, false
	}
	return models.SlugFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}, page, true
}

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	filter, page, ok := h.slugFilter(w, r)
	if !ok {
		return
	}
	items, total, err := h.db.ListCategories(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, newPaginated(r, page, total, items))
}

// CreateCategory handles POST /categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req SlugRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := h.db.CreateCategory(r.Context(), c); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, c)
}

// DeleteCategory handles DELETE /categories/{slug}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteCategory(r.Context(), chi.URLParam(r, "slug")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondNoContent(w)
}

// ListGenres handles GET /genres.
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	filter, page, ok := h.slugFilter(w, r)
	if !ok {
		return
	}
	items, total, err := h.db.ListGenres(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, newPaginated(r, page, total, items))
}

// CreateGenre handles POST /genres.
func (h *Handler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var req SlugRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g := &models.Genre{Name: req.Name, Slug: req.Slug}
	if err := h.db.CreateGenre(r.Context(), g); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, g)
}

// DeleteGenre handles DELETE /genres/{slug}.
func (h *Handler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteGenre(r.Context(), chi.URLParam(r, "slug")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondNoContent(w)
}

// ListTitles handles GET /titles with category, genre, name and year
// filters combined by AND.
func (h *Handler) ListTitles(w http.ResponseWriter, r *http.Request) {
	page, ok := h.page(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := models.TitleFilter{
		Category: q.Get("category"),
		Genre:    q.Get("genre"),
		Name:     q.Get("name"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	}
	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			fieldError(w, r, "year", "year must be an integer")
			return
		}
		filter.Year = year
	}

	titles, total, err := h.db.ListTitles(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, newPaginated(r, page, total, titles))
}

// CreateTitle handles POST /titles.
func (h *Handler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	var req TitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title, err := h.db.CreateTitle(r.Context(), models.TitleInput{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		CategorySlug: req.Category,
		GenreSlugs:   req.Genre,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, title)
}

// GetTitle handles GET /titles/{title_id}.
func (h *Handler) GetTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "title_id")
	if !ok {
		return
	}
	title, err := h.db.GetTitle(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, title)
}

// UpdateTitle handles PATCH /titles/{title_id}.
func (h *Handler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "title_id")
	if !ok {
		return
	}
	var req TitlePatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title, err := h.db.UpdateTitle(r.Context(), id, models.TitlePatch{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		CategorySlug: req.Category,
		GenreSlugs:   req.Genre,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, title)
}

// DeleteTitle handles DELETE /titles/{title_id}.
func (h *Handler) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "title_id")
	if !ok {
		return
	}
	if err := h.db.DeleteTitle(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondNoContent(w)
}

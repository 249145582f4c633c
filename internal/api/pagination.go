// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomtom215/yamdb/internal/config"
	"github.com/tomtom215/yamdb/internal/models"
	"github.com/tomtom215/yamdb/internal/validation"
)

// Paginated is the body of every list endpoint.
type Paginated struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// parsePage reads ?limit= and ?offset=. A missing limit uses the default;
// a limit above the maximum is clamped.
func parsePage(r *http.Request, cfg config.APIConfig) (models.Page, *validation.RequestValidationError) {
	page := models.Page{Limit: cfg.DefaultPageSize}
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, validation.NewFieldError("limit", "limit must be a positive integer")
		}
		page.Limit = n
	}
	if page.Limit > cfg.MaxPageSize {
		page.Limit = cfg.MaxPageSize
	}

	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, validation.NewFieldError("offset", "offset must be a non-negative integer")
		}
		page.Offset = n
	}
	return page, nil
}

// newPaginated builds the envelope and the neighbouring page links.
func newPaginated(r *http.Request, page models.Page, count int64, results interface{}) Paginated {
	p := Paginated{Count: count, Results: results}

	if int64(page.Offset+page.Limit) < count {
		next := pageURL(r, page.Limit, page.Offset+page.Limit)
		p.Next = &next
	}
	if page.Offset > 0 {
		prev := page.Offset - page.Limit
		if prev < 0 {
			prev = 0
		}
		link := pageURL(r, page.Limit, prev)
		p.Previous = &link
	}
	return p
}

func pageURL(r *http.Request, limit, offset int) string {
	u := url.URL{Path: r.URL.Path}
	q := r.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u.RawQuery = q.Encode()

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	if r.Host != "" {
		u.Scheme = scheme
		u.Host = r.Host
	}
	return u.String()
}

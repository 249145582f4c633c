// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/yamdb/internal/validation"
)

// record is one CSV row keyed by header name.
type record map[string]string

func (r record) get(key string) string {
	return strings.TrimSpace(r[key])
}

// intField parses an optional integer column. Empty yields 0, which the
// row's required tag then reports.
func (r record) intField(key string) (int, *validation.RequestValidationError) {
	raw := r.get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.NewFieldError(key, key+" must be an integer")
	}
	return n, nil
}

// timeField parses an optional RFC 3339 timestamp. Empty yields the zero
// time and the store stamps the row with the current time.
func (r record) timeField(key string) (time.Time, *validation.RequestValidationError) {
	raw := r.get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, validation.NewFieldError(key, key+" must be an RFC 3339 timestamp")
	}
	return t.UTC(), nil
}

type userRow struct {
	ID        string `json:"id" validate:"required"`
	Username  string `json:"username" validate:"required,max=150,username"`
	Email     string `json:"email" validate:"required,max=254,email"`
	Role      string `json:"role" validate:"omitempty,role"`
	Bio       string `json:"bio"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type sluggedRow struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

type titleRow struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required,max=256"`
	Year        int    `json:"year" validate:"required,notfutureyear"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type genreTitleRow struct {
	TitleID string `json:"title_id" validate:"required"`
	GenreID string `json:"genre_id" validate:"required"`
}

type reviewRow struct {
	ID      string `json:"id" validate:"required"`
	TitleID string `json:"title_id" validate:"required"`
	Author  string `json:"author" validate:"required"`
	Text    string `json:"text" validate:"required"`
	Score   int    `json:"score" validate:"required,gte=1,lte=10"`
	PubDate time.Time
}

type commentRow struct {
	ID       string `json:"id" validate:"required"`
	ReviewID string `json:"review_id" validate:"required"`
	Author   string `json:"author" validate:"required"`
	Text     string `json:"text" validate:"required"`
	PubDate  time.Time
}

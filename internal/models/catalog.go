// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package models

// Category classifies titles (film, book, music, ...). Each title has at
// most one category; deleting a category leaves its titles uncategorized.
type Category struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Genre classifies titles; a title may have many genres.
type Genre struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Title is a reviewable work.
type Title struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Year        int       `json:"year"`
	Description string    `json:"description"`
	Genres      []Genre   `json:"genre"`
	Category    *Category `json:"category"`

	// Rating is the mean review score, nil when the title has no reviews.
	Rating *float64 `json:"rating"`
}

// TitleInput is the write shape of a title: genre and category are given by slug.
type TitleInput struct {
	Name         string
	Year         int
	Description  string
	CategorySlug string
	GenreSlugs   []string
}

// TitlePatch is a partial title update. Nil fields are left unchanged;
// a non-nil GenreSlugs replaces the whole genre set.
type TitlePatch struct {
	Name         *string
	Year         *int
	Description  *string
	CategorySlug *string
	GenreSlugs   *[]string
}

// TitleFilter narrows a title listing. Zero values mean "no constraint".
type TitleFilter struct {
	Category string // slug, case-insensitive exact
	Genre    string // slug, case-insensitive exact
	Name     string // case-insensitive substring
	Year     int
	Limit    int
	Offset   int
}

// SlugFilter narrows category and genre listings.
type SlugFilter struct {
	Search string // case-insensitive substring of name
	Limit  int
	Offset int
}

// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package models

import "time"

// Score bounds for reviews.
const (
	MinScore = 1
	MaxScore = 10
)

// Review is a scored opinion on a title. At most one review exists per
// (title, author) pair; storage enforces this with a unique constraint.
type Review struct {
	ID       int64     `json:"id"`
	TitleID  int64     `json:"-"`
	AuthorID int64     `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	Score    int       `json:"score"`
	PubDate  time.Time `json:"pub_date"`
}

// Comment is a reply attached to a review.
type Comment struct {
	ID       int64     `json:"id"`
	ReviewID int64     `json:"-"`
	AuthorID int64     `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
}

// Page is a window into a listing.
type Page struct {
	Limit  int
	Offset int
}

// ReviewPatch carries the fields of a partial review update.
type ReviewPatch struct {
	Text  *string
	Score *int
}

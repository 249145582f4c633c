// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package query

import (
	"testing"
)

func TestWhereBuilder_Empty(t *testing.T) {
	wb := NewWhereBuilder()

	whereClause, args := wb.Build()
	if whereClause != "1=1" {
		t.Errorf("Expected '1=1' for empty builder, got %q", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestWhereBuilder_SkipsZeroValues(t *testing.T) {
	wb := NewWhereBuilder().
		AddEqualFold("c.slug", "").
		AddContainsFold("t.name", "").
		AddEqualInt("t.year", 0)

	if whereClause, args := wb.Build(); whereClause != "1=1" || len(args) != 0 {
		t.Errorf("Expected zero values to be skipped, got %q %v", whereClause, args)
	}
}

func TestWhereBuilder_TitleFilters(t *testing.T) {
	wb := NewWhereBuilder().
		AddEqualFold("c.slug", "Movie").
		AddContainsFold("t.name", "God").
		AddEqualInt("t.year", 1972)

	whereClause, args := wb.BuildWithPrefix()
	expected := `WHERE lower(c.slug) = lower(?) AND lower(t.name) LIKE lower(?) ESCAPE '\' AND t.year = ?`
	if whereClause != expected {
		t.Errorf("Expected %q, got %q", expected, whereClause)
	}
	if len(args) != 3 {
		t.Fatalf("Expected 3 args, got %d", len(args))
	}
	if args[1] != "%God%" {
		t.Errorf("Expected contains pattern, got %v", args[1])
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := EscapeLike(tt.in); got != tt.want {
				t.Errorf("EscapeLike(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLimitOffset(t *testing.T) {
	tests := []struct {
		limit, offset int
		want          string
	}{
		{0, 0, ""},
		{10, 0, " LIMIT 10"},
		{10, 20, " LIMIT 10 OFFSET 20"},
		{0, 5, " OFFSET 5"},
	}
	for _, tt := range tests {
		if got := LimitOffset(tt.limit, tt.offset); got != tt.want {
			t.Errorf("LimitOffset(%d, %d) = %q, want %q", tt.limit, tt.offset, got, tt.want)
		}
	}
}

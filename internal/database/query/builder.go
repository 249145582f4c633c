// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

// Package query provides SQL query building utilities for the database package.
package query

import (
	"fmt"
	"strings"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddEqualFold("c.slug", filter.Category)
//	wb.AddContainsFold("t.name", filter.Name)
//	whereClause, args := wb.Build()
//	// lower(c.slug) = lower(?) AND lower(t.name) LIKE lower(?) ESCAPE '\'
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddEqualFold adds a case-insensitive equality filter. An empty value is skipped.
func (wb *WhereBuilder) AddEqualFold(column, value string) *WhereBuilder {
	if value != "" {
		wb.AddClause(fmt.Sprintf("lower(%s) = lower(?)", column), value)
	}
	return wb
}

// AddContainsFold adds a case-insensitive substring filter. An empty value
// is skipped. LIKE wildcards in value match literally.
func (wb *WhereBuilder) AddContainsFold(column, value string) *WhereBuilder {
	if value != "" {
		wb.AddClause(fmt.Sprintf(`lower(%s) LIKE lower(?) ESCAPE '\'`, column), "%"+EscapeLike(value)+"%")
	}
	return wb
}

// AddEqualInt adds an integer equality filter. Zero is skipped.
func (wb *WhereBuilder) AddEqualInt(column string, value int64) *WhereBuilder {
	if value != 0 {
		wb.AddClause(column+" = ?", value)
	}
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// EscapeLike escapes LIKE metacharacters with a backslash.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// LimitOffset renders a LIMIT/OFFSET suffix. A non-positive limit renders
// only the offset.
func LimitOffset(limit, offset int) string {
	var b strings.Builder
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	if offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", offset)
	}
	return b.String()
}

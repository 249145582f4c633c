// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

// Package authz holds the access decision engine.
//
// Every decision is a pure function of the requester (nil when anonymous),
// the method class of the request and, for instance-level checks, the
// author of the target resource. There is no cross-request state.
//
// Coarse policies run before any lookup:
//
//   - AdminWriteOnly: account management
//   - AdminOrReadOnly: catalog (categories, genres, titles)
//   - SelfProfile: /users/me
//
// The fine policy AuthorOrStaffWriteOrReadOnly runs once the review or
// comment has been loaded.
//
// A denied anonymous requester maps to 401, a denied authenticated one to 403.
package authz

import (
	"net/http"

	"github.com/tomtom215/yamdb/internal/models"
)

// MethodClass splits request methods into reads and writes.
type MethodClass int

const (
	// Safe methods never mutate: GET, HEAD, OPTIONS.
	Safe MethodClass = iota
	// Unsafe methods create, update or delete.
	Unsafe
)

// ClassOf returns the method class of an HTTP method.
func ClassOf(method string) MethodClass {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Safe
	default:
		return Unsafe
	}
}

// String implements fmt.Stringer.
func (c MethodClass) String() string {
	if c == Safe {
		return "safe"
	}
	return "unsafe"
}

// Policy names a coarse or fine predicate, used in routing and metrics.
type Policy string

// Policies.
const (
	PolicyAdminWriteOnly  Policy = "admin_write_only"
	PolicyAdminOrReadOnly Policy = "admin_or_read_only"
	PolicyAuthorOrStaff   Policy = "author_or_staff"
	PolicySelfProfile     Policy = "self_profile"
	PolicyAuthenticated   Policy = "authenticated"
)

// AdminWriteOnly allows only an authenticated superuser or admin, whatever
// the method.
func AdminWriteOnly(req *models.Account) bool {
	return req != nil && (req.IsSuperuser || req.IsAdmin())
}

// AdminOrReadOnly allows every safe request and unsafe requests from staff
// admins.
func AdminOrReadOnly(req *models.Account, class MethodClass) bool {
	return class == Safe || AdminWriteOnly(req)
}

// AuthorOrStaffWriteOrReadOnly allows every safe request. Unsafe requests
// need the resource's author, a moderator, or a staff admin.
func AuthorOrStaffWriteOrReadOnly(req *models.Account, class MethodClass, authorID int64) bool {
	if class == Safe {
		return true
	}
	if req == nil {
		return false
	}
	return req.ID == authorID || req.IsModerator() || req.IsSuperuser || req.IsAdmin()
}

// SelfProfile allows any authenticated requester; the profile route is
// implicitly scoped to the requester's own account.
func SelfProfile(req *models.Account) bool {
	return req != nil
}

// Authenticated allows any authenticated requester. Review and comment
// creation use it.
func Authenticated(req *models.Account) bool {
	return req != nil
}

// Decision is the outcome of an access check.
type Decision int

const (
	// Allow lets the request proceed.
	Allow Decision = iota
	// DenyUnauthenticated rejects an anonymous requester (401).
	DenyUnauthenticated
	// DenyForbidden rejects an authenticated requester (403).
	DenyForbidden
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	default:
		return "forbidden"
	}
}

// Decide turns a predicate result into a Decision.
func Decide(req *models.Account, allowed bool) Decision {
	switch {
	case allowed:
		return Allow
	case req == nil:
		return DenyUnauthenticated
	default:
		return DenyForbidden
	}
}

// Evaluate runs a coarse policy for a requester and method.
func Evaluate(p Policy, req *models.Account, method string) Decision {
	var allowed bool
	switch p {
	case PolicyAdminWriteOnly:
		allowed = AdminWriteOnly(req)
	case PolicyAdminOrReadOnly:
		allowed = AdminOrReadOnly(req, ClassOf(method))
	case PolicySelfProfile:
		allowed = SelfProfile(req)
	case PolicyAuthenticated:
		allowed = Authenticated(req)
	default:
		// Fine policies need a target; refuse rather than guess.
		allowed = false
	}
	d := Decide(req, allowed)
	RecordDecision(p, req, d)
	return d
}

// EvaluateAuthor runs the instance-level author check.
func EvaluateAuthor(req *models.Account, method string, authorID int64) Decision {
	d := Decide(req, AuthorOrStaffWriteOrReadOnly(req, ClassOf(method), authorID))
	RecordDecision(PolicyAuthorOrStaff, req, d)
	return d
}

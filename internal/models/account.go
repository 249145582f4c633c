// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

/*
account.go - Accounts and the role model

Roles form a flat enumeration (user, moderator, admin). The superuser flag
is an independent bit: it never changes the role and never makes IsAdmin
true. Every admin-gated decision uses IsStaffAdmin, which ORs both terms.

Usage:
  - Persistence in internal/database/accounts.go
  - Access decisions in internal/authz/policy.go
  - Registration and tokens in internal/auth
*/

package models

import (
	"strings"
	"time"
)

// Role is an account's rank.
type Role string

// Role constants.
const (
	// RoleUser is the default role: read everything, write own reviews and comments.
	RoleUser Role = "user"

	// RoleModerator may additionally edit or delete any review or comment.
	RoleModerator Role = "moderator"

	// RoleAdmin may additionally curate the catalog and manage accounts.
	RoleAdmin Role = "admin"
)

// ValidRoles lists every valid role.
var ValidRoles = []Role{RoleUser, RoleModerator, RoleAdmin}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// ReservedUsername can never be registered; it names the self-profile route.
const ReservedUsername = "me"

// IsReservedUsername reports whether name equals the reserved word in any case.
func IsReservedUsername(name string) bool {
	return strings.EqualFold(name, ReservedUsername)
}

// Account is an authenticatable identity.
type Account struct {
	ID          int64  `json:"-"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	IsSuperuser bool   `json:"-"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Bio         string `json:"bio"`

	// ConfirmationHash is the bcrypt hash of the outstanding confirmation
	// code, empty once consumed.
	ConfirmationHash string `json:"-"`

	IsActive   bool      `json:"-"`
	DateJoined time.Time `json:"-"`
}

// IsAdmin is true iff the role is admin. The superuser flag is not consulted.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsModerator is true iff the role is moderator.
func (a *Account) IsModerator() bool {
	return a.Role == RoleModerator
}

// IsUser is true iff the role is user.
func (a *Account) IsUser() bool {
	return a.Role == RoleUser
}

// IsStaffAdmin is the admin-equivalence check: superuser OR role admin.
func (a *Account) IsStaffAdmin() bool {
	return a.IsSuperuser || a.IsAdmin()
}

// AccountPatch is an admin-side partial update. Nil fields are left unchanged.
type AccountPatch struct {
	Username  *string
	Email     *string
	Role      *Role
	FirstName *string
	LastName  *string
	Bio       *string
}

// ProfileUpdate is a self-service edit. It deliberately has no username,
// email or role fields: those are immutable through the profile route.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Bio       *string
}

// AccountPatch converts the self-service edit to a storage patch.
func (p ProfileUpdate) AccountPatch() AccountPatch {
	return AccountPatch{FirstName: p.FirstName, LastName: p.LastName, Bio: p.Bio}
}

// AccountFilter selects accounts for listing.
type AccountFilter struct {
	Search string // case-insensitive substring of username
	Limit  int
	Offset int
}

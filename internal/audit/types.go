// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// EventType categorizes audit events.
type EventType string

const (
	// Token verification failed on an authenticated request
	EventTypeAuthFailure EventType = "auth.failure"

	// An access policy denied a request
	EventTypeAuthzDenied EventType = "authz.denied"

	// Registration and activation
	EventTypeAccountRegistered       EventType = "account.registered"
	EventTypeAccountActivated        EventType = "account.activated"
	EventTypeAccountActivationFailed EventType = "account.activation_failed"
	EventTypeAccountLocked           EventType = "account.locked"

	// Administrative account changes
	EventTypeRoleChanged    EventType = "admin.role_changed"
	EventTypeAccountDeleted EventType = "admin.account_deleted"
)

// ValidEventType reports whether t is one of the recorded event types.
func ValidEventType(t EventType) bool {
	switch t {
	case EventTypeAuthFailure, EventTypeAuthzDenied,
		EventTypeAccountRegistered, EventTypeAccountActivated,
		EventTypeAccountActivationFailed, EventTypeAccountLocked,
		EventTypeRoleChanged, EventTypeAccountDeleted:
		return true
	}
	return false
}

// Severity indicates the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is a single audit record.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Severity  Severity  `json:"severity"`
	Outcome   Outcome   `json:"outcome"`
	Actor     Actor     `json:"actor"`
	Target    *Target   `json:"target,omitempty"`
	Source    Source    `json:"source"`

	// Action is a short verb, Description the human-readable detail.
	Action      string `json:"action"`
	Description string `json:"description"`

	Metadata  json.RawMessage `json:"metadata,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// Actor is who performed an action. Anonymous requests carry Type
// "anonymous" and an empty ID.
type Actor struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// Target is the object of an action.
type Target struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// Source is where a request originated.
type Source struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event *Event) error

	// Query returns matching events, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)

	Count(ctx context.Context, filter QueryFilter) (int64, error)
}

// QueryFilter selects audit events. Empty fields match everything.
type QueryFilter struct {
	Types     []EventType `json:"types,omitempty"`
	ActorName string      `json:"actor_name,omitempty"`
	TargetID  string      `json:"target_id,omitempty"`
	Limit     int         `json:"limit,omitempty"`
	Offset    int         `json:"offset,omitempty"`
}

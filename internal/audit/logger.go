// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package audit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/yamdb/internal/logging"
	"github.com/tomtom215/yamdb/internal/models"
)

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether audit logging is active.
	Enabled bool `json:"enabled"`

	// BufferSize is the size of the async write buffer.
	BufferSize int `json:"buffer_size"`

	// LogToStdout also writes events to the application log.
	LogToStdout bool `json:"log_to_stdout"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:    true,
		BufferSize: 256,
	}
}

// Logger is the audit logging service.
type Logger struct {
	config    *Config
	store     Store
	eventChan chan *Event
}

// NewLogger creates an audit logger. Events are persisted once Serve runs.
func NewLogger(store Store, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}

	return &Logger{
		config:    config,
		store:     store,
		eventChan: make(chan *Event, config.BufferSize),
	}
}

// Serve persists buffered events until ctx is cancelled, then drains the
// buffer. It implements suture.Service.
func (l *Logger) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return ctx.Err()
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (l *Logger) String() string {
	return "audit-logger"
}

func (l *Logger) writeEvent(event *Event) {
	if l.config.LogToStdout {
		data, err := json.Marshal(event)
		if err != nil {
			logging.Error().Err(err).Msg("Failed to marshal audit event")
		} else {
			logging.Info().RawJSON("event", data).Msg("Audit event")
		}
	}

	if l.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to save audit event")
	}
}

// Log queues an audit event. It never blocks.
func (l *Logger) Log(event *Event) {
	if l == nil || !l.config.Enabled {
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case l.eventChan <- event:
	default:
		logging.Warn().Str("event_id", event.ID).Msg("Audit event buffer full, dropping event")
	}
}

// Query retrieves events matching the filter, newest first.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	if l == nil || l.store == nil {
		return nil, nil
	}
	return l.store.Query(ctx, filter)
}

// Count returns the number of events matching the filter.
func (l *Logger) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	if l == nil || l.store == nil {
		return 0, nil
	}
	return l.store.Count(ctx, filter)
}

// LogAuthFailure records a rejected bearer token.
func (l *Logger) LogAuthFailure(ctx context.Context, reason string) {
	l.Log(&Event{
		Type:        EventTypeAuthFailure,
		Severity:    SeverityWarning,
		Outcome:     OutcomeFailure,
		Actor:       AnonymousActor(),
		Source:      SourceFromContext(ctx),
		Action:      "authenticate",
		Description: "Token verification failed: " + reason,
		Metadata:    mustJSON(map[string]string{"reason": reason}),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogAuthzDenied records a denied request.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogAuthzDenied(ctx context.Context, actor Actor, policy, method, path string) {
	l.Log(&Event{
		Type:     EventTypeAuthzDenied,
		Severity: SeverityWarning,
		Outcome:  OutcomeFailure,
		Actor:    actor,
		Source:   SourceFromContext(ctx),
		Action:   "authorize",
		Target: &Target{
			ID:   path,
			Type: "route",
		},
		Description: "Authorization denied for " + method + " " + path,
		Metadata: mustJSON(map[string]string{
			"policy": policy,
			"method": method,
		}),
		RequestID: logging.RequestIDFromContext(ctx),
	})
}

// LogRegistered records a sign-up. resent is true when an existing
// account asked for a fresh code.
func (l *Logger) LogRegistered(ctx context.Context, username string, resent bool) {
	desc := "Account registered"
	if resent {
		desc = "Confirmation code re-sent"
	}
	l.Log(&Event{
		Type:        EventTypeAccountRegistered,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       Actor{Type: "user", Name: username},
		Target:      accountTarget(username),
		Source:      SourceFromContext(ctx),
		Action:      "register",
		Description: desc,
		Metadata:    mustJSON(map[string]bool{"resent": resent}),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogActivated records a successful activation.
func (l *Logger) LogActivated(ctx context.Context, account *models.Account) {
	l.Log(&Event{
		Type:        EventTypeAccountActivated,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       ActorFromAccount(account),
		Target:      accountTarget(account.Username),
		Source:      SourceFromContext(ctx),
		Action:      "activate",
		Description: "Account activated",
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogActivationFailed records a wrong confirmation code.
func (l *Logger) LogActivationFailed(ctx context.Context, username string, attempts int) {
	l.Log(&Event{
		Type:        EventTypeAccountActivationFailed,
		Severity:    SeverityWarning,
		Outcome:     OutcomeFailure,
		Actor:       Actor{Type: "user", Name: username},
		Target:      accountTarget(username),
		Source:      SourceFromContext(ctx),
		Action:      "activate",
		Description: "Invalid confirmation code",
		Metadata:    mustJSON(map[string]int{"failed_attempts": attempts}),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogLocked records an activation lockout.
func (l *Logger) LogLocked(ctx context.Context, username string, duration time.Duration, attempts int) {
	l.Log(&Event{
		Type:        EventTypeAccountLocked,
		Severity:    SeverityCritical,
		Outcome:     OutcomeSuccess,
		Actor:       Actor{Type: "user", Name: username},
		Target:      accountTarget(username),
		Source:      SourceFromContext(ctx),
		Action:      "lockout",
		Description: "Activation locked due to too many failed attempts",
		Metadata: mustJSON(map[string]interface{}{
			"duration_seconds": duration.Seconds(),
			"failed_attempts":  attempts,
		}),
		RequestID: logging.RequestIDFromContext(ctx),
	})
}

// LogRoleChanged records an administrative role change.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogRoleChanged(ctx context.Context, actor Actor, username string, from, to models.Role) {
	l.Log(&Event{
		Type:        EventTypeRoleChanged,
		Severity:    SeverityWarning,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Target:      accountTarget(username),
		Source:      SourceFromContext(ctx),
		Action:      "update",
		Description: "Role of " + username + " changed from " + string(from) + " to " + string(to),
		Metadata: mustJSON(map[string]string{
			"old_role": string(from),
			"new_role": string(to),
		}),
		RequestID: logging.RequestIDFromContext(ctx),
	})
}

// LogAccountDeleted records an administrative account deletion.
//
//nolint:gocritic // hugeParam: Actor passed by value for API simplicity
func (l *Logger) LogAccountDeleted(ctx context.Context, actor Actor, username string) {
	l.Log(&Event{
		Type:        EventTypeAccountDeleted,
		Severity:    SeverityWarning,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Target:      accountTarget(username),
		Source:      SourceFromContext(ctx),
		Action:      "delete",
		Description: "Account " + username + " deleted",
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

func accountTarget(username string) *Target {
	return &Target{ID: username, Type: "account", Name: username}
}

// mustJSON converts a value to JSON, returning empty object on error.
func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

type contextKey string

const sourceKey contextKey = "audit_source"

// ContextWithSource stores the request origin for later events.
func ContextWithSource(ctx context.Context, src Source) context.Context {
	return context.WithValue(ctx, sourceKey, src)
}

// SourceFromContext returns the stored request origin, or a zero Source.
func SourceFromContext(ctx context.Context) Source {
	if ctx == nil {
		return Source{}
	}
	src, _ := ctx.Value(sourceKey).(Source)
	return src
}

// SourceFromRequest creates a Source from an HTTP request. RemoteAddr is
// expected to have been rewritten by the real-IP middleware already.
func SourceFromRequest(r *http.Request) Source {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return Source{
		IPAddress: ip,
		UserAgent: logging.SanitizeValue(r.UserAgent()),
	}
}

// ActorFromAccount creates an Actor from an authenticated account. A nil
// account yields the anonymous actor.
func ActorFromAccount(a *models.Account) Actor {
	if a == nil {
		return AnonymousActor()
	}
	role := string(a.Role)
	if a.IsSuperuser {
		role = "superuser"
	}
	return Actor{
		ID:   strconv.FormatInt(a.ID, 10),
		Type: "user",
		Name: a.Username,
		Role: role,
	}
}

// AnonymousActor represents an unauthenticated requester.
func AnonymousActor() Actor {
	return Actor{Type: "anonymous"}
}

// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokensIssuedTotal counts signed tokens.
	// Labels:
	//   - type: "access", "refresh"
	TokensIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of signed tokens issued",
		},
		[]string{"type"},
	)

	// TokenVerificationsTotal counts token verifications.
	// Labels:
	//   - type: expected token type
	//   - outcome: "valid", "invalid", "wrong_type"
	TokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_verifications_total",
			Help: "Total number of token verifications by outcome",
		},
		[]string{"type", "outcome"},
	)

	// RegistrationsTotal counts sign-up requests.
	// Labels:
	//   - outcome: "created", "resent", "reserved", "email_mismatch",
	//     "conflict", "delivery_failed", "error"
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration requests by outcome",
		},
		[]string{"outcome"},
	)

	// ActivationsTotal counts confirmation code submissions.
	// Labels:
	//   - outcome: "success", "invalid_code", "locked", "not_found", "error"
	ActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_activations_total",
			Help: "Total number of activation attempts by outcome",
		},
		[]string{"outcome"},
	)

	// LockoutsTotal counts activation lockouts applied.
	LockoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_lockouts_total",
			Help: "Total number of activation lockouts applied",
		},
	)

	// LockedAccounts is the number of usernames locked at the last cleanup pass.
	LockedAccounts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auth_locked_accounts",
			Help: "Number of usernames currently locked out of activation",
		},
	)

	// LockoutCleanupTotal counts expired lockout entries removed.
	LockoutCleanupTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_lockout_cleanup_total",
			Help: "Total number of expired lockout entries removed",
		},
	)
)

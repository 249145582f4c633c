// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/yamdb/internal/models"
)

var (
	// AuthzDecisionsTotal counts decisions by policy, requester role and outcome.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"policy", "role", "decision"},
	)

	// AuthzDeniedTotal counts denials only, for alerting.
	AuthzDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_denied_total",
			Help: "Total number of authorization denials",
		},
		[]string{"policy", "reason"},
	)
)

// roleLabel keeps label cardinality bounded.
func roleLabel(req *models.Account) string {
	switch {
	case req == nil:
		return "anonymous"
	case req.IsSuperuser:
		return "superuser"
	default:
		return string(req.Role)
	}
}

// RecordDecision records a decision.
func RecordDecision(p Policy, req *models.Account, d Decision) {
	AuthzDecisionsTotal.WithLabelValues(string(p), roleLabel(req), d.String()).Inc()
	if d != Allow {
		AuthzDeniedTotal.WithLabelValues(string(p), d.String()).Inc()
	}
}

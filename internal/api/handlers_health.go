// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/yamdb/internal/metrics"
	"github.com/tomtom215/yamdb/internal/middleware"
)

// maxHealthEndpoints bounds the request summary in the health body.
const maxHealthEndpoints = 10

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string                     `json:"status"`
	Version           string                     `json:"version"`
	DatabaseConnected bool                       `json:"database_connected"`
	Uptime            float64                    `json:"uptime_seconds"`
	Endpoints         []middleware.EndpointStats `json:"endpoints"`
}

// Health handles GET /health. It answers 503 when the database is
// unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	status, code := "healthy", http.StatusOK
	if !dbConnected {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	stats := h.perf.GetStats()
	if len(stats) > maxHealthEndpoints {
		stats = stats[:maxHealthEndpoints]
	}

	metrics.UpdateUptime(h.startTime)
	respondData(w, r, code, HealthStatus{
		Status:            status,
		Version:           h.version,
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
		Endpoints:         stats,
	})
}

// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/yamdb/internal/audit"
)

// ListAuditEvents handles GET /audit/events.
//
// Query parameters:
//   - type: event type, repeatable or comma-separated
//   - actor: actor username
//   - target: target ID (a username for account events)
//   - limit, offset
func (h *Handler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	page, ok := h.page(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := audit.QueryFilter{
		ActorName: q.Get("actor"),
		TargetID:  q.Get("target"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}
	for _, raw := range q["type"] {
		for _, t := range strings.Split(raw, ",") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if !audit.ValidEventType(audit.EventType(t)) {
				fieldError(w, r, "type", "unknown event type: "+t)
				return
			}
			filter.Types = append(filter.Types, audit.EventType(t))
		}
	}

	events, err := h.audit.Query(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	total, err := h.audit.Count(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	respondData(w, r, http.StatusOK, newPaginated(r, page, total, events))
}

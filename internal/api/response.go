// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/yamdb/internal/logging"
	"github.com/tomtom215/yamdb/internal/validation"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// Meta carries response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is the machine-readable error body.
type APIError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// respondJSON writes the envelope with the given status.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *APIResponse) {
	response.Meta = Meta{
		Timestamp: time.Now().UTC(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}

	data, err := json.Marshal(response)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a successful envelope.
func respondData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	respondJSON(w, r, status, &APIResponse{Success: true, Data: data})
}

// respondNoContent answers a successful delete.
func respondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// respondError writes an error envelope. err, when set, is logged but never
// sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}, err error) {
	requestID := logging.RequestIDFromContext(r.Context())
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Str("code", code).
			Str("error", logging.SanitizeValue(err.Error())).
			Int("status", status).
			Msg("API error")
	}

	respondJSON(w, r, status, &APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}

// respondValidation writes a 400 with per-field messages.
func respondValidation(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	details := make(map[string]interface{})
	for field, msgs := range verr.FieldMessages() {
		details[field] = msgs
	}
	respondError(w, r, http.StatusBadRequest, CodeValidation, "Request validation failed", details, nil)
}

// fieldError writes a 400 naming one field.
func fieldError(w http.ResponseWriter, r *http.Request, field, message string) {
	respondValidation(w, r, validation.NewFieldError(field, message))
}

// decodeJSON reads a bounded JSON body into dst and validates it. It
// writes the error response itself and reports whether the caller may
// continue. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	// Read fully first: the streaming decoder does not surface
	// *http.MaxBytesError.
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, http.StatusRequestEntityTooLarge, CodeBadRequest,
				fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit), nil, nil)
		} else {
			respondError(w, r, http.StatusBadRequest, CodeBadRequest, "Unable to read request body", nil, err)
		}
		return false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, "Request body is required", nil, nil)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, "Malformed JSON body", nil, err)
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		respondValidation(w, r, verr)
		return false
	}
	return true
}

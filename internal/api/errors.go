// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/tomtom215/yamdb/internal/auth"
	"github.com/tomtom215/yamdb/internal/database"
	"github.com/tomtom215/yamdb/internal/notify"
	"github.com/tomtom215/yamdb/internal/validation"
)

// Error codes carried in APIError.Code.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeLocked           = "ACTIVATION_LOCKED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeDeliveryFailed   = "DELIVERY_FAILED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// respondServiceError maps a domain error to its HTTP response.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *validation.RequestValidationError
		refErr   *database.ReferenceError
		lockErr  *auth.LockedError
		delivErr *notify.DeliveryError
	)

	switch {
	case errors.As(err, &verr):
		respondValidation(w, r, verr)

	case errors.As(err, &refErr):
		fieldError(w, r, refErr.Field, "unknown slug: "+refErr.Slug)

	case errors.Is(err, auth.ErrReservedUsername):
		fieldError(w, r, "username", err.Error())
	case errors.Is(err, auth.ErrEmailMismatch):
		fieldError(w, r, "email", err.Error())
	case errors.Is(err, auth.ErrAlreadyExists):
		fieldError(w, r, "username", err.Error())
	case errors.Is(err, auth.ErrInvalidCode):
		fieldError(w, r, "confirmation_code", err.Error())

	case errors.As(err, &lockErr):
		seconds := int(math.Ceil(lockErr.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		respondError(w, r, http.StatusTooManyRequests, CodeLocked, auth.ErrActivationLocked.Error(),
			map[string]interface{}{"retry_after": seconds}, nil)

	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenType):
		respondError(w, r, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token", nil, err)

	case errors.As(err, &delivErr):
		respondError(w, r, http.StatusBadGateway, CodeDeliveryFailed, "Confirmation code could not be delivered",
			map[string]interface{}{"retryable": true, "channel": delivErr.Channel}, err)

	case errors.Is(err, database.ErrNotFound):
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Not found", nil, nil)
	case errors.Is(err, database.ErrConflict):
		respondError(w, r, http.StatusConflict, CodeConflict, "Resource already exists", nil, err)

	default:
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Internal server error", nil, err)
	}
}

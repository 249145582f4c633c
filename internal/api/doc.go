// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

/*
Package api provides the HTTP surface of YaMDb.

NewRouter mounts every route under /api/v1 on a chi router. Handlers are
methods on Handler, which holds the database, the registration service and
the audit logger.

# Request Pipeline

 1. Global middleware: request ID, real IP, panic recovery, request log,
    Prometheus, security headers, trailing-slash strip, gzip, CORS.
 2. /api/v1 middleware: per-IP rate limit, audit source, bearer token
    authentication. A missing header is anonymous; a bad token is 401 on
    every route.
 3. Route policy (authz.Middleware.Require) for coarse checks.
 4. In the handler, path resources are resolved (404) before the
    instance-level author check runs (401 or 403).

# Responses

Every JSON body is an APIResponse:

	{"success": true, "data": {...}, "meta": {"timestamp": "...", "request_id": "..."}}
	{"success": false, "error": {"code": "CONFLICT", "message": "...", "request_id": "..."}, "meta": {...}}

List endpoints put a Paginated value in data: count, next, previous and
results, driven by ?limit= and ?offset=.

# Error Mapping

respondServiceError is the single translation point from domain errors to
status codes:

  - validation errors, reserved username, email mismatch, duplicate
    sign-up, wrong code, unknown slug: 400
  - invalid token: 401
  - not found: 404
  - uniqueness conflict: 409
  - activation lockout: 429 with Retry-After
  - confirmation delivery failure: 502 with details.retryable
*/
package api

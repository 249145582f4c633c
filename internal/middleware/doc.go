// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

/*
Package middleware provides HTTP middleware shared by every API route.

All components have the chi signature func(http.Handler) http.Handler.

Key Components:

  - RequestID: reuses or generates X-Request-ID and seeds the logging
    context with request and correlation IDs.
  - PrometheusMetrics: request count, latency and in-flight gauge labelled
    by chi route pattern.
  - PerformanceMonitor: per-request log line, slow-request warning and a
    sliding window summarised on /health.
  - SecurityHeaders: nosniff, frame denial, referrer policy, no-store and
    HSTS behind TLS.

Middleware Stack:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(perf.Middleware)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)

Route patterns are only complete after the router has matched, so the
metrics and performance middleware read them after calling next.
*/
package middleware

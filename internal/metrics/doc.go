// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

/*
Package metrics holds the process-wide Prometheus collectors shared by the
HTTP layer and the importer.

Collectors are registered with promauto on the default registry and served
at /metrics by the API router. Packages with their own domain counters
(auth, authz, notify) register them locally; this package carries the
cross-cutting ones.

# Available Metrics

HTTP:
  - yamdb_api_requests_total{method, endpoint, status_code}
  - yamdb_api_request_duration_seconds{method, endpoint}
  - yamdb_api_active_requests
  - yamdb_api_rate_limit_hits_total{endpoint}

Import:
  - yamdb_import_rows_total{file, outcome}
  - yamdb_import_duration_seconds

System:
  - yamdb_app_info{version, go_version}
  - yamdb_app_uptime_seconds

The endpoint label is the chi route pattern, never the raw path, so label
cardinality stays bounded.
*/
package metrics

// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package middleware holds the HTTP middleware of the ops server.
//
//   - RequestID: X-Request-ID propagation plus request and correlation ids in the context
//   - PrometheusMetrics: ops_requests_total and ops_request_duration_seconds by chi route
//
// Both are plain func(http.Handler) http.Handler and plug into chi's Use.
package middleware

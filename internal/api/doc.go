// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package api serves feedrankd's operational endpoints on HTTP_ADDR.
//
// Feeds are produced in-process by recommend.Assembler; the public HTTP
// surface lives in the calling service. This router only exposes:
//
//	GET /healthz   process liveness, version and uptime
//	GET /readyz    dependency readiness (Mongo ping, feed cache backend)
//	GET /metrics   Prometheus metrics
//
// With HTTP_DEBUG_FEED set, GET /debug/feed/{userID} previews the page the
// Assembler would produce for that user.
//
// Responses use the APIResponse envelope:
//
//	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
package api

// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package metrics provides Prometheus metrics for the feed service.

Collectors are registered on the default registry at package init through
promauto and exposed by the ops server at /metrics.

# Available Metrics

Feed:
  - feed_requests_total{source,sort}
  - feed_request_duration_seconds{source}
  - feed_candidates_fetched
  - feed_upstream_errors_total{collaborator,fatal}

Scoring:
  - scoring_failures_total
  - scoring_malformed_candidates_total{field}

Feed cache:
  - feed_cache_operations_total{backend,operation,result}
  - feed_cache_available{backend}
  - circuit_breaker_state{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

Profiles and likes:
  - profile_updates_total{result}
  - profile_evictions_total
  - like_events_total{result}
  - like_event_processing_duration_seconds

Storage and ops:
  - mongo_query_duration_seconds{operation,collection}
  - mongo_query_errors_total{operation,collection}
  - ops_requests_total{method,endpoint,status_code}
  - ops_request_duration_seconds{method,endpoint}
  - app_info{version,go_version}

# Usage

Record helpers wrap the collectors so callers never deal with label order:

	start := time.Now()
	page, err := assembler.Feed(ctx, req)
	metrics.RecordFeedRequest(metrics.SourceComputed, "ranked", time.Since(start))
*/
package metrics

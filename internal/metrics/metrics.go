// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed source label values.
const (
	SourceCache    = "cache"
	SourceComputed = "computed"
	SourceError    = "error"
)

var (
	// Feed Metrics
	FeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of feed requests",
		},
		[]string{"source", "sort"}, // source: "cache", "computed", "error"
	)

	FeedRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_request_duration_seconds",
			Help:    "Feed assembly duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"source"},
	)

	FeedCandidatesFetched = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_candidates_fetched",
			Help:    "Number of candidates returned by the content store per request",
			Buckets: []float64{0, 5, 10, 25, 50, 75, 100},
		},
	)

	FeedUpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_upstream_errors_total",
			Help: "Total number of collaborator failures during feed assembly",
		},
		[]string{"collaborator", "fatal"}, // collaborator: "content_store", "profile_store", "like_log"
	)

	// Scoring Metrics
	ScoringFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoring_failures_total",
			Help: "Total number of candidates whose scoring failed and degraded to zero",
		},
	)

	MalformedCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_malformed_candidates_total",
			Help: "Total number of candidates with missing or invalid fields, by field",
		},
		[]string{"field"}, // "created_at", "likes", "comments", "shares", "views"
	)

	// Feed Cache Metrics
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_operations_total",
			Help: "Total number of feed cache operations",
		},
		[]string{"backend", "operation", "result"}, // result: "hit", "miss", "ok", "error", "rejected"
	)

	CacheAvailable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_cache_available",
			Help: "Whether the feed cache backend is reachable (1) or not (0)",
		},
		[]string{"backend"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Profile Metrics
	ProfileUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_updates_total",
			Help: "Total number of tag profile updates",
		},
		[]string{"result"}, // "success", "error"
	)

	ProfileEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_evictions_total",
			Help: "Total number of tags evicted by the profile size cap",
		},
	)

	ProfileEvictionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_eviction_failures_total",
			Help: "Total number of profile size cap evictions that failed after the weight update committed",
		},
	)

	// Like Event Metrics
	LikeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "like_events_total",
			Help: "Total number of like events consumed",
		},
		[]string{"result"}, // "processed", "failed", "invalid", "duplicate"
	)

	LikeEventDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "like_event_processing_duration_seconds",
			Help:    "Like event handling duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongo_query_duration_seconds",
			Help:    "Duration of MongoDB operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_query_errors_total",
			Help: "Total number of MongoDB operation errors",
		},
		[]string{"operation", "collection"},
	)

	// Ops API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ops_requests_total",
			Help: "Total number of ops endpoint requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ops_request_duration_seconds",
			Help:    "Ops endpoint request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordFeedRequest records a completed feed request.
func RecordFeedRequest(source, sort string, duration time.Duration) {
	FeedRequestsTotal.WithLabelValues(source, sort).Inc()
	FeedRequestDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordCandidatesFetched records the size of a candidate superset.
func RecordCandidatesFetched(n int) {
	FeedCandidatesFetched.Observe(float64(n))
}

// RecordUpstreamError records a collaborator failure.
func RecordUpstreamError(collaborator string, fatal bool) {
	f := "false"
	if fatal {
		f = "true"
	}
	FeedUpstreamErrors.WithLabelValues(collaborator, f).Inc()
}

// RecordScoringFailure records a candidate whose scoring panicked.
func RecordScoringFailure() {
	ScoringFailures.Inc()
}

// RecordMalformedCandidate records the missing fields of one candidate.
func RecordMalformedCandidate(fields []string) {
	for _, f := range fields {
		MalformedCandidates.WithLabelValues(f).Inc()
	}
}

// RecordCacheOp records a feed cache operation.
func RecordCacheOp(backend, operation, result string) {
	CacheOperations.WithLabelValues(backend, operation, result).Inc()
}

// SetCacheAvailable updates the availability gauge of a cache backend.
func SetCacheAvailable(backend string, available bool) {
	v := 0.0
	if available {
		v = 1
	}
	CacheAvailable.WithLabelValues(backend).Set(v)
}

// RecordBreakerTransition records a circuit breaker state change.
// States are numbered 0=closed, 1=half-open, 2=open.
func RecordBreakerTransition(name, from, to string, toState int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(toState))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordProfileUpdate records an upsert of a user's tag weights.
func RecordProfileUpdate(err error, evicted int) {
	if err != nil {
		ProfileUpdates.WithLabelValues("error").Inc()
		return
	}
	ProfileUpdates.WithLabelValues("success").Inc()
	if evicted > 0 {
		ProfileEvictions.Add(float64(evicted))
	}
}

// RecordProfileEvictionFailure records an eviction that failed after its
// weight update committed.
func RecordProfileEvictionFailure() {
	ProfileEvictionFailures.Inc()
}

// RecordLikeEvent records the outcome of one consumed like event.
func RecordLikeEvent(result string, duration time.Duration) {
	LikeEvents.WithLabelValues(result).Inc()
	LikeEventDuration.Observe(duration.Seconds())
}

// RecordDBQuery records a MongoDB operation.
func RecordDBQuery(operation, collection string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, collection).Inc()
	}
}

// RecordAPIRequest records an ops endpoint request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// SetAppInfo publishes the build information gauge.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

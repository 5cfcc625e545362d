// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/feedrank/internal/middleware"
)

// Options configures the ops router.
type Options struct {
	Version string

	// Checks are the readiness checks by name, e.g. "mongo" and "feed_cache".
	Checks map[string]Check

	// CheckTimeout defaults to DefaultCheckTimeout.
	CheckTimeout time.Duration

	// Feed, when set, mounts GET /debug/feed/{userID}.
	Feed FeedProvider
}

// NewRouter returns the ops handler:
//
//	GET /healthz  liveness
//	GET /readyz   readiness (503 when a check fails)
//	GET /metrics  Prometheus exposition
//	GET /debug/feed/{userID}  feed preview (only with Options.Feed)
func NewRouter(opts Options) http.Handler {
	if opts.CheckTimeout <= 0 {
		opts.CheckTimeout = DefaultCheckTimeout
	}
	h := &Handler{
		version:      opts.Version,
		startTime:    time.Now().UTC(),
		checks:       opts.Checks,
		checkTimeout: opts.CheckTimeout,
		feed:         opts.Feed,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if opts.Feed != nil {
		r.Get("/debug/feed/{userID}", h.DebugFeed)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return r
}

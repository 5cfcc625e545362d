// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package api

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tomtom215/feedrank/internal/logging"
)

// DefaultCheckTimeout bounds a single readiness check.
const DefaultCheckTimeout = 2 * time.Second

// Check reports whether a dependency can serve traffic.
type Check func(ctx context.Context) error

// LivenessStatus is the /healthz body.
type LivenessStatus struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
}

// CheckResult is one dependency in the /readyz body.
type CheckResult struct {
	Name       string `json:"name"`
	Healthy    bool   `json:"healthy"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// ReadinessStatus is the /readyz body.
type ReadinessStatus struct {
	Ready  bool          `json:"ready"`
	Checks []CheckResult `json:"checks"`
}

// Handler serves the ops endpoints.
type Handler struct {
	version      string
	startTime    time.Time
	checks       map[string]Check
	checkTimeout time.Duration
	feed         FeedProvider
}

// Healthz reports that the process is up. It never touches dependencies.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, LivenessStatus{
		Status:    "ok",
		Version:   h.version,
		StartedAt: h.startTime,
		Uptime:    strings.TrimSpace(humanize.RelTime(h.startTime, time.Now(), "", "")),
	})
}

// Readyz runs every readiness check concurrently and answers 503 when any
// fails.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]CheckResult, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i] = h.runCheck(r.Context(), name, h.checks[name])
		}(i, name)
	}
	wg.Wait()

	status := ReadinessStatus{Ready: true, Checks: results}
	for _, res := range results {
		if !res.Healthy {
			status.Ready = false
			logging.Ctx(r.Context()).Warn().
				Str("check", res.Name).
				Str("error", res.Error).
				Msg("Readiness check failed")
		}
	}

	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, r, code, status)
}

func (h *Handler) runCheck(ctx context.Context, name string, check Check) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, h.checkTimeout)
	defer cancel()

	start := time.Now()
	err := check(ctx)
	res := CheckResult{
		Name:       name,
		Healthy:    err == nil,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordFeedRequest(t *testing.T) {
	before := testutil.ToFloat64(FeedRequestsTotal.WithLabelValues(SourceCache, "ranked"))

	RecordFeedRequest(SourceCache, "ranked", 3*time.Millisecond)
	RecordFeedRequest(SourceCache, "ranked", time.Millisecond)

	after := testutil.ToFloat64(FeedRequestsTotal.WithLabelValues(SourceCache, "ranked"))
	if after-before != 2 {
		t.Errorf("feed_requests_total delta = %v, want 2", after-before)
	}
}

func TestRecordUpstreamError(t *testing.T) {
	fatal := FeedUpstreamErrors.WithLabelValues("content_store", "true")
	degraded := FeedUpstreamErrors.WithLabelValues("like_log", "false")
	bf, bd := testutil.ToFloat64(fatal), testutil.ToFloat64(degraded)

	RecordUpstreamError("content_store", true)
	RecordUpstreamError("like_log", false)

	if got := testutil.ToFloat64(fatal) - bf; got != 1 {
		t.Errorf("fatal delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(degraded) - bd; got != 1 {
		t.Errorf("degraded delta = %v, want 1", got)
	}
}

func TestRecordMalformedCandidate(t *testing.T) {
	before := testutil.ToFloat64(MalformedCandidates.WithLabelValues("views"))

	RecordMalformedCandidate([]string{"views", "likes"})
	RecordMalformedCandidate(nil)

	if got := testutil.ToFloat64(MalformedCandidates.WithLabelValues("views")) - before; got != 1 {
		t.Errorf("views delta = %v, want 1", got)
	}
}

func TestSetCacheAvailable(t *testing.T) {
	SetCacheAvailable("redis", true)
	if got := testutil.ToFloat64(CacheAvailable.WithLabelValues("redis")); got != 1 {
		t.Errorf("available = %v, want 1", got)
	}
	SetCacheAvailable("redis", false)
	if got := testutil.ToFloat64(CacheAvailable.WithLabelValues("redis")); got != 0 {
		t.Errorf("available = %v, want 0", got)
	}
}

func TestRecordBreakerTransition(t *testing.T) {
	RecordBreakerTransition("feed-cache", "closed", "open", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("feed-cache")); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}
}

func TestRecordProfileUpdate(t *testing.T) {
	success := testutil.ToFloat64(ProfileUpdates.WithLabelValues("success"))
	failed := testutil.ToFloat64(ProfileUpdates.WithLabelValues("error"))
	evicted := testutil.ToFloat64(ProfileEvictions)

	RecordProfileUpdate(nil, 3)
	RecordProfileUpdate(errors.New("write conflict"), 5)

	if got := testutil.ToFloat64(ProfileUpdates.WithLabelValues("success")) - success; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ProfileUpdates.WithLabelValues("error")) - failed; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ProfileEvictions) - evicted; got != 3 {
		t.Errorf("evictions delta = %v, want 3", got)
	}
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name       string
		operation  string
		collection string
		err        error
		wantErrInc float64
	}{
		{"successful find", "find", "posts", nil, 0},
		{"failed update", "update", "users", errors.New("connection refused"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DBQueryErrors.WithLabelValues(tt.operation, tt.collection)
			before := testutil.ToFloat64(c)
			RecordDBQuery(tt.operation, tt.collection, 5*time.Millisecond, tt.err)
			if got := testutil.ToFloat64(c) - before; got != tt.wantErrInc {
				t.Errorf("error delta = %v, want %v", got, tt.wantErrInc)
			}
		})
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				RecordFeedRequest(SourceComputed, "recent", time.Millisecond)
				RecordCacheOp("memory", "get", "miss")
				RecordLikeEvent("processed", time.Millisecond)
				RecordScoringFailure()
			}
		}()
	}
	wg.Wait()
}

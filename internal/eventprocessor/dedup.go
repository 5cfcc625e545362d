// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package eventprocessor

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/feedrank/internal/cache"
	"github.com/tomtom215/feedrank/internal/metrics"
)

const dedupKeyPrefix = "like-event:"

var seenMarker = []byte{1}

// Deduplicator drops redelivered like events so a like does not boost the
// profile twice within the TTL. An event is remembered only after its
// handler succeeds, so a failed event is still redelivered.
type Deduplicator struct {
	backend cache.Backend
	ttl     time.Duration
}

// NewDeduplicator remembers event ids for ttl in backend.
func NewDeduplicator(backend cache.Backend, ttl time.Duration) *Deduplicator {
	return &Deduplicator{backend: backend, ttl: ttl}
}

// NewInMemoryDeduplicator remembers up to maxEntries event ids in process.
func NewInMemoryDeduplicator(maxEntries int, ttl time.Duration) *Deduplicator {
	return NewDeduplicator(cache.NewMemoryBackend(maxEntries, time.Minute), ttl)
}

// Seen reports whether the event id was processed within the TTL. Backend
// errors other than a miss count as unseen.
func (d *Deduplicator) Seen(ctx context.Context, key string) bool {
	_, err := d.backend.Get(ctx, dedupKeyPrefix+key)
	return err == nil
}

// Mark remembers the event id.
func (d *Deduplicator) Mark(ctx context.Context, key string) error {
	return d.backend.Set(ctx, dedupKeyPrefix+key, seenMarker, d.ttl)
}

// Middleware is a message.HandlerMiddleware. Duplicates are acked without
// reaching the handler.
func (d *Deduplicator) Middleware(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		key := eventKey(msg)
		if d.Seen(msg.Context(), key) {
			metrics.RecordLikeEvent("duplicate", 0)
			return nil, nil
		}

		msgs, err := h(msg)
		if err != nil {
			return msgs, err
		}

		// The like is applied; failing here would only replay it.
		_ = d.Mark(msg.Context(), key) //nolint:errcheck // a lost mark weakens dedup only
		return msgs, nil
	}
}

// Close releases the backend.
func (d *Deduplicator) Close() error {
	return d.backend.Close()
}

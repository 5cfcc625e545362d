// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package eventprocessor

import (
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/feedrank/internal/cache"
)

func TestDeduplicatorMiddleware(t *testing.T) {
	d := NewInMemoryDeduplicator(10, time.Minute)
	t.Cleanup(func() { _ = d.Close() })

	calls := 0
	fail := true
	h := d.Middleware(func(*message.Message) ([]*message.Message, error) {
		calls++
		if fail {
			return nil, errors.New("transient")
		}
		return nil, nil
	})

	msg := message.NewMessage("m1", nil)
	msg.Metadata.Set(MetadataEventID, "e1")

	// A failed attempt is not remembered.
	if _, err := h(msg); err == nil {
		t.Fatal("expected handler error")
	}
	if d.Seen(msg.Context(), "e1") {
		t.Fatal("failed event marked as seen")
	}

	fail = false
	if _, err := h(msg); err != nil {
		t.Fatal(err)
	}
	if !d.Seen(msg.Context(), "e1") {
		t.Fatal("processed event not marked")
	}

	// The redelivery is acked without reaching the handler.
	if _, err := h(msg); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("handler ran %d times, want 2", calls)
	}
}

func TestDeduplicatorClosedBackend(t *testing.T) {
	backend := cache.NewMemoryBackend(10, time.Minute)
	d := NewDeduplicator(backend, time.Minute)
	_ = backend.Close()

	calls := 0
	h := d.Middleware(func(*message.Message) ([]*message.Message, error) {
		calls++
		return nil, nil
	})

	msg := message.NewMessage("m1", nil)
	for i := 0; i < 2; i++ {
		if _, err := h(msg); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	// Without a backend every delivery is processed.
	if calls != 2 {
		t.Errorf("handler ran %d times, want 2", calls)
	}
}

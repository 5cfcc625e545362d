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
	gobreaker "github.com/sony/gobreaker/v2"
)

type flakyPublisher struct {
	err       error
	published int
	closed    bool
}

func (f *flakyPublisher) Publish(_ string, msgs ...*message.Message) error {
	if f.err != nil {
		return f.err
	}
	f.published += len(msgs)
	return nil
}

func (f *flakyPublisher) Close() error {
	f.closed = true
	return nil
}

func TestBreakerPublisherOpens(t *testing.T) {
	inner := &flakyPublisher{err: errors.New("nats: no servers available")}
	p := NewBreakerPublisher("test-poison", inner, 2, time.Minute)

	for i := 0; i < 2; i++ {
		if err := p.Publish("t", message.NewMessage("m", nil)); err == nil {
			t.Fatal("expected publish error")
		}
	}
	if p.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", p.State())
	}

	inner.err = nil
	err := p.Publish("t", message.NewMessage("m", nil))
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Publish() error = %v, want ErrOpenState while open", err)
	}
	if inner.published != 0 {
		t.Errorf("open breaker let %d messages through", inner.published)
	}
}

func TestBreakerPublisherClose(t *testing.T) {
	inner := &flakyPublisher{}
	p := NewBreakerPublisher("test-close", inner, 0, time.Minute)

	if err := p.Publish("t", message.NewMessage("m", nil)); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !inner.closed {
		t.Error("inner publisher not closed")
	}
	if err := p.Publish("t", message.NewMessage("m", nil)); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("Publish() after Close = %v, want ErrPublisherClosed", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

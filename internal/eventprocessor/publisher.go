// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package eventprocessor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/feedrank/internal/metrics"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher closed")

// BreakerPublisher guards a message.Publisher with a circuit breaker so a
// dead broker fails fast instead of stalling handlers.
type BreakerPublisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[struct{}]

	mu     sync.RWMutex
	closed bool
}

// NewBreakerPublisher wraps publisher. The breaker opens after failures
// consecutive errors and probes again after timeout.
func NewBreakerPublisher(name string, publisher message.Publisher, failures uint32, timeout time.Duration) *BreakerPublisher {
	if failures == 0 {
		failures = 5
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerTransition(name, from.String(), to.String(), int(to))
		},
	}
	return &BreakerPublisher{
		publisher: publisher,
		breaker:   gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Publish implements message.Publisher.
func (p *BreakerPublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(topic, msgs...)
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// State returns the breaker state.
func (p *BreakerPublisher) State() gobreaker.State {
	return p.breaker.State()
}

// Close implements message.Publisher.
func (p *BreakerPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}

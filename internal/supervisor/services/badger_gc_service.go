// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultGCDiscardRatio is the value log discard ratio badger recommends.
const DefaultGCDiscardRatio = 0.5

// ValueLogCollector is implemented by cache.BadgerBackend.
type ValueLogCollector interface {
	RunGC(discardRatio float64) error
}

// BadgerGCService periodically compacts the badger value log that backs the
// feed cache. Expired pages are otherwise never reclaimed from disk.
type BadgerGCService struct {
	collector    ValueLogCollector
	interval     time.Duration
	discardRatio float64
	logger       zerolog.Logger
}

// NewBadgerGCService creates the service. interval defaults to 10m.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerGCService(collector ValueLogCollector, interval time.Duration, logger zerolog.Logger) *BadgerGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &BadgerGCService{
		collector:    collector,
		interval:     interval,
		discardRatio: DefaultGCDiscardRatio,
		logger:       logger.With().Str("component", "badger-gc").Logger(),
	}
}

// Serve implements suture.Service. GC errors are logged, not returned: a
// failed pass is retried on the next tick.
func (b *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := b.collector.RunGC(b.discardRatio); err != nil {
				b.logger.Warn().Err(err).Msg("Value log GC failed")
				continue
			}
			b.logger.Debug().Dur("duration", time.Since(start)).Msg("Value log GC complete")
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (b *BadgerGCService) String() string {
	return "badger-gc"
}

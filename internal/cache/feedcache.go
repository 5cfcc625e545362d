// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/models"
)

// Config configures a FeedCache.
type Config struct {
	// TTL is the default lifetime of a cached page.
	TTL time.Duration

	// OpTimeout bounds every backend call.
	OpTimeout time.Duration

	// CanonicalShape is the query shape of a user's default feed request.
	// Its key is deleted first on invalidation.
	CanonicalShape Shape

	// BreakerFailures is the number of consecutive backend errors that opens
	// the circuit breaker.
	BreakerFailures uint32

	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration
}

// DefaultConfig returns a 5 minute TTL, 100ms operation timeout and a breaker
// opening after 5 consecutive failures for 30 seconds.
func DefaultConfig() Config {
	return Config{
		TTL:             5 * time.Minute,
		OpTimeout:       100 * time.Millisecond,
		CanonicalShape:  Shape{Limit: 20, Sort: string(models.SortRanked)},
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// FeedCache is a read-through cache of assembled feed pages.
//
// It never returns backend errors: a failing or unreachable backend turns reads
// into misses and writes into no-ops. A circuit breaker stops calling a backend
// that keeps failing until it has had time to recover.
type FeedCache struct {
	backend Backend
	breaker *gobreaker.CircuitBreaker[[]byte]
	cfg     Config
	logger  zerolog.Logger
}

// NewFeedCache wraps backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFeedCache(backend Backend, cfg Config, logger zerolog.Logger) *FeedCache {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = def.OpTimeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = def.BreakerFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = def.BreakerTimeout
	}
	if cfg.CanonicalShape.Sort == "" {
		cfg.CanonicalShape = def.CanonicalShape
	}

	fc := &FeedCache{
		backend: backend,
		cfg:     cfg,
		logger:  logger.With().Str("component", "feed-cache").Str("backend", backend.Name()).Logger(),
	}

	name := "feed-cache-" + backend.Name()
	fc.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrMiss)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerTransition(name, from.String(), to.String(), int(to))
			metrics.SetCacheAvailable(backend.Name(), to != gobreaker.StateOpen)
			fc.logger.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("feed cache circuit breaker state changed")
		},
	})
	metrics.SetCacheAvailable(backend.Name(), true)
	return fc
}

// Backend returns the wrapped backend.
func (c *FeedCache) Backend() Backend {
	return c.backend
}

// TTL returns the default entry lifetime.
func (c *FeedCache) TTL() time.Duration {
	return c.cfg.TTL
}

// Key builds the cache key of a page for the user and query shape.
func (c *FeedCache) Key(userID string, shape Shape) string {
	return Key(userID, shape)
}

// UserPrefix returns the prefix covering every page of the user.
func (c *FeedCache) UserPrefix(userID string) string {
	return UserPrefix(userID)
}

// IsAvailable reports whether the cache is currently usable.
func (c *FeedCache) IsAvailable() bool {
	if c.breaker.State() == gobreaker.StateOpen {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.OpTimeout)
	defer cancel()
	return c.backend.Available(ctx)
}

// Get returns the cached page for key. The second result is false on a miss,
// on a decode failure and whenever the backend is unavailable.
func (c *FeedCache) Get(ctx context.Context, key string) (*models.FeedPage, bool) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
		defer cancel()
		return c.backend.Get(opCtx, key)
	})
	switch {
	case errors.Is(err, ErrMiss):
		metrics.RecordCacheOp(c.backend.Name(), "get", "miss")
		return nil, false
	case err != nil:
		c.unavailable("get", key, err)
		return nil, false
	}

	var page models.FeedPage
	if err := json.Unmarshal(data, &page); err != nil {
		metrics.RecordCacheOp(c.backend.Name(), "get", "corrupt")
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		c.delete(ctx, key)
		return nil, false
	}

	metrics.RecordCacheOp(c.backend.Name(), "get", "hit")
	page.Cached = true
	return &page, true
}

// Set stores page under key for ttl (the configured TTL when ttl <= 0).
// Entries are always overwritten whole. Failures are logged and swallowed.
func (c *FeedCache) Set(ctx context.Context, key string, page *models.FeedPage, ttl time.Duration) {
	if page == nil {
		return
	}
	if ttl <= 0 {
		ttl = c.cfg.TTL
	}

	data, err := json.Marshal(page)
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to encode feed page")
		return
	}

	_, err = c.breaker.Execute(func() ([]byte, error) {
		opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
		defer cancel()
		return nil, c.backend.Set(opCtx, key, data, ttl)
	})
	if err != nil {
		c.unavailable("set", key, err)
		return
	}
	metrics.RecordCacheOp(c.backend.Name(), "set", "ok")
}

// Invalidate removes every entry under prefix and returns how many were
// removed. Failures are logged and reported as 0.
func (c *FeedCache) Invalidate(ctx context.Context, prefix string) int {
	var n int
	_, err := c.breaker.Execute(func() ([]byte, error) {
		opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
		defer cancel()
		var err error
		n, err = c.backend.DeletePrefix(opCtx, prefix)
		return nil, err
	})
	if err != nil {
		c.unavailable("invalidate", prefix, err)
		return 0
	}
	metrics.RecordCacheOp(c.backend.Name(), "invalidate", "ok")
	return n
}

// InvalidateUser drops the user's cached feed: first the canonical default
// page, then, best effort, every other page under the user's prefix.
// It returns false when the canonical key could not be deleted.
func (c *FeedCache) InvalidateUser(ctx context.Context, userID string) bool {
	canonical := c.Key(userID, c.cfg.CanonicalShape)
	ok := c.delete(ctx, canonical)

	n := c.Invalidate(ctx, c.UserPrefix(userID))
	c.logger.Debug().
		Str("user_id", userID).
		Bool("canonical_deleted", ok).
		Int("swept", n).
		Msg("user feed invalidated")
	return ok
}

func (c *FeedCache) delete(ctx context.Context, key string) bool {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
		defer cancel()
		return nil, c.backend.Delete(opCtx, key)
	})
	if err != nil {
		c.unavailable("delete", key, err)
		return false
	}
	metrics.RecordCacheOp(c.backend.Name(), "delete", "ok")
	return true
}

func (c *FeedCache) unavailable(op, key string, err error) {
	result := "error"
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		result = "rejected"
	}
	metrics.RecordCacheOp(c.backend.Name(), op, result)
	c.logger.Debug().Err(err).Str("op", op).Str("key", key).Msg("feed cache unavailable, falling through")
}

// Close closes the backend.
func (c *FeedCache) Close() error {
	return c.backend.Close()
}

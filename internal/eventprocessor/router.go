// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/feedrank/internal/config"
)

// LikeHandlerName names the like consumer in logs.
const LikeHandlerName = "like-events"

// RouterConfig holds configuration for the Watermill Router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// PoisonQueueTopic receives messages that still fail after all retries.
	// Empty disables the poison queue.
	PoisonQueueTopic string
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
		RetryMultiplier:      2.0,
		PoisonQueueTopic:     "feed.likes.poison",
	}
}

// RouterConfigFrom maps the NATS settings onto a RouterConfig.
func RouterConfigFrom(cfg *config.NATSConfig) RouterConfig {
	rc := DefaultRouterConfig()
	if cfg.RouterCloseTimeout > 0 {
		rc.CloseTimeout = cfg.RouterCloseTimeout
	}
	rc.RetryMaxRetries = cfg.RouterRetryCount
	if cfg.RouterRetryInitialInterval > 0 {
		rc.RetryInitialInterval = cfg.RouterRetryInitialInterval
	}
	rc.PoisonQueueTopic = ""
	if cfg.RouterPoisonQueueEnabled {
		rc.PoisonQueueTopic = cfg.RouterPoisonQueueTopic
	}
	return rc
}

// Router wraps the Watermill Router with the like pipeline middleware.
type Router struct {
	router  *message.Router
	config  RouterConfig
	logger  watermill.LoggerAdapter
	running atomic.Bool
}

// NewRouter creates a Watermill Router. Middleware, outermost first:
//   - Poison queue (when a publisher and topic are set)
//   - Recoverer
//   - Deduplicator on the event id (when dedup is non-nil)
//   - Retry with exponential backoff, skipped for ErrInvalidEvent
//
// A message that exhausts its retries, or whose payload is invalid, is
// published to the poison queue and acked. Without a poison queue it is
// nacked and redelivered by the broker.
func NewRouter(
	cfg *RouterConfig,
	poisonPublisher message.Publisher,
	dedup *Deduplicator,
	logger watermill.LoggerAdapter,
) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	if cfg == nil {
		defaultCfg := DefaultRouterConfig()
		cfg = &defaultCfg
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	if poisonPublisher != nil && cfg.PoisonQueueTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(poisonPublisher, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poisonQueue)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)

	if dedup != nil {
		wmRouter.AddMiddleware(dedup.Middleware)
	}

	if cfg.RetryMaxRetries > 0 {
		retry := middleware.Retry{
			MaxRetries:      cfg.RetryMaxRetries,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
			Multiplier:      cfg.RetryMultiplier,
			Logger:          logger,
		}
		wmRouter.AddMiddleware(skipRetryOnInvalid(retry.Middleware))
	}

	return &Router{
		router: wmRouter,
		config: *cfg,
		logger: logger,
	}, nil
}

// AddConsumerHandler registers a handler that doesn't produce output messages.
func (r *Router) AddConsumerHandler(
	name string,
	subscribeTopic string,
	subscriber message.Subscriber,
	handler message.NoPublishHandlerFunc,
) *message.Handler {
	return r.router.AddConsumerHandler(name, subscribeTopic, subscriber, handler)
}

// AddLikeHandler consumes like events from topic.
func (r *Router) AddLikeHandler(topic string, subscriber message.Subscriber, handler *LikeHandler) *message.Handler {
	return r.AddConsumerHandler(LikeHandlerName, topic, subscriber, handler.Handle)
}

// Run starts the router and blocks until context cancellation or Close().
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running returns a channel that closes when the router is running.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close gracefully stops the router, waiting up to CloseTimeout for
// in-flight messages.
func (r *Router) Close() error {
	return r.router.Close()
}

// IsRunning returns whether the router is currently processing messages.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// skipRetryOnInvalid wraps a retry middleware so that an ErrInvalidEvent from
// the handler ends the attempt loop at once and reaches the outer middleware.
func skipRetryOnInvalid(retry message.HandlerMiddleware) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			var invalid error
			attempt := retry(func(m *message.Message) ([]*message.Message, error) {
				out, err := h(m)
				if errors.Is(err, ErrInvalidEvent) {
					invalid = err
					return nil, nil
				}
				return out, err
			})

			out, err := attempt(msg)
			if invalid != nil {
				return nil, invalid
			}
			return out, err
		}
	}
}

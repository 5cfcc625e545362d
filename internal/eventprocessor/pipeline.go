// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/logging"
)

// poisonBreakerTimeout is how long the poison publisher breaker stays open.
const poisonBreakerTimeout = 30 * time.Second

// PipelineDeps are the stores the like consumer writes to.
type PipelineDeps struct {
	Recorder Recorder
	Likes    LikeSink
	Dedup    *Deduplicator
}

// Pipeline is one run of the like consumer: a NATS subscriber, an optional
// poison queue publisher and the router between them and LikeHandler.
//
// A closed Watermill router cannot be restarted, so supervisors build a new
// Pipeline for every run.
type Pipeline struct {
	router     *Router
	subscriber message.Subscriber
	poison     *BreakerPublisher
}

// NewPipeline connects to NATS and registers the like handler on
// cfg.LikesTopic.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipeline(cfg *config.NATSConfig, deps PipelineDeps, logger zerolog.Logger) (*Pipeline, error) {
	if deps.Recorder == nil {
		return nil, errors.New("like pipeline requires a recorder")
	}
	wmLogger := logging.NewWatermillAdapter(logger.With().Str("component", "eventprocessor").Logger())

	subscriber, err := NewSubscriber(cfg, wmLogger)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{subscriber: subscriber}

	var poison message.Publisher
	if cfg.RouterPoisonQueueEnabled {
		pub, err := NewPublisher(cfg, wmLogger)
		if err != nil {
			_ = subscriber.Close()
			return nil, err
		}
		p.poison = NewBreakerPublisher("poison-queue", pub, 0, poisonBreakerTimeout)
		poison = p.poison
	}

	routerCfg := RouterConfigFrom(cfg)
	p.router, err = NewRouter(&routerCfg, poison, deps.Dedup, wmLogger)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	p.router.AddLikeHandler(cfg.LikesTopic, subscriber, NewLikeHandler(deps.Recorder, deps.Likes, logger))

	return p, nil
}

// Run consumes until ctx is canceled or the router stops.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.router.Run(ctx); err != nil {
		return fmt.Errorf("like router: %w", err)
	}
	return nil
}

// Running closes once the handler is subscribed.
func (p *Pipeline) Running() <-chan struct{} {
	return p.router.Running()
}

// Close stops the router and releases the NATS connections.
func (p *Pipeline) Close() error {
	var errs []error
	if p.router != nil {
		errs = append(errs, p.router.Close())
	}
	errs = append(errs, p.subscriber.Close())
	if p.poison != nil {
		errs = append(errs, p.poison.Close())
	}
	return errors.Join(errs...)
}

// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Command feedrankd runs the feed ranking engine's background half: it
// consumes like events into tag profiles, keeps the feed cache healthy and
// serves the ops endpoints.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, config.yaml, environment)
//  2. Logging
//  3. MongoDB (posts, likes, user_profiles) and indexes
//  4. Feed cache backend (memory, badger, redis or none)
//  5. Assembler and LikeRecorder
//  6. Supervisor tree: like event pipeline, badger GC, ops HTTP server
//
// Feed pages are served by the embedding service through
// recommend.Assembler; HTTP_DEBUG_FEED exposes a preview on the ops port.
//
// SIGINT and SIGTERM cancel the tree; Mongo and the cache are closed once
// every supervised service has stopped.
//
// Example:
//
//	export MONGO_URI=mongodb://mongo:27017
//	export NATS_URL=nats://nats:4222
//	export CACHE_BACKEND=redis REDIS_ADDR=redis:6379
//	./feedrankd
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/tomtom215/feedrank/internal/api"
	"github.com/tomtom215/feedrank/internal/cache"
	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/database"
	"github.com/tomtom215/feedrank/internal/eventprocessor"
	"github.com/tomtom215/feedrank/internal/logging"
	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/recommend"
	"github.com/tomtom215/feedrank/internal/supervisor"
	"github.com/tomtom215/feedrank/internal/supervisor/services"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Logging.LoggerConfig())
	metrics.SetAppInfo(Version, runtime.Version())

	logging.Info().
		Str("version", Version).
		Str("mongo_database", cfg.Mongo.Database).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting feedrank")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("feedrank stopped with error")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel already called
	}
	logging.Info().Msg("feedrank stopped gracefully")
}

//nolint:gocyclo // sequential wiring
func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.Logger()

	db, err := database.New(ctx, &cfg.Mongo, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing MongoDB")
		}
	}()

	backend, err := cache.NewBackend(cfg.Cache.BackendConfig())
	if err != nil {
		return err
	}
	feedCache := cache.NewFeedCache(backend, cfg.FeedCacheConfig(), logger)
	defer func() {
		if err := feedCache.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing feed cache")
		}
	}()

	assembler, err := recommend.NewAssembler(&cfg.Feed, recommend.Deps{
		Content:  db.Content(),
		Likes:    db.Likes(),
		Profiles: db.Profiles(),
		Cache:    feedCache,
	}, logger)
	if err != nil {
		return err
	}
	recorder := recommend.NewLikeRecorder(db.Profiles(), feedCache, cfg.Feed.LikeBoost, logger)

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	if badgerBackend, ok := backend.(*cache.BadgerBackend); ok {
		tree.AddStorageService(services.NewBadgerGCService(badgerBackend, cfg.Cache.BadgerGCInterval, logger))
	}

	if cfg.NATS.Enabled {
		dedup := newDeduplicator(cfg, backend)
		defer func() { _ = dedup.Close() }()

		tree.AddEventService(services.NewRouterService("like-pipeline", func() (services.Runner, error) {
			pipeline, err := eventprocessor.NewPipeline(&cfg.NATS, eventprocessor.PipelineDeps{
				Recorder: recorder,
				Likes:    db.Likes(),
				Dedup:    dedup,
			}, logger)
			if err != nil {
				return nil, err
			}
			return pipeline, nil
		}))
	}

	opsOpts := api.Options{
		Version: Version,
		Checks: map[string]api.Check{
			"mongo": db.Ping,
			"feed_cache": func(context.Context) error {
				if !feedCache.IsAvailable() {
					return cache.ErrUnavailable
				}
				return nil
			},
		},
	}
	if cfg.Server.DebugFeed {
		opsOpts.Feed = assembler
		logging.Warn().Msg("Feed previews enabled on the ops server (HTTP_DEBUG_FEED)")
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           api.NewRouter(opsOpts),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
	}
	tree.AddOpsService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("Ops server configured")

	errCh := tree.ServeBackground(ctx)
	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, stopping services")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		return treeErr
	}
	return nil
}

// newDeduplicator shares processed event ids through redis when every
// instance already talks to it, otherwise keeps them in process.
func newDeduplicator(cfg *config.Config, backend cache.Backend) *eventprocessor.Deduplicator {
	if _, ok := backend.(*cache.RedisBackend); ok {
		return eventprocessor.NewDeduplicator(noClose{backend}, cfg.NATS.DedupTTL)
	}
	return eventprocessor.NewInMemoryDeduplicator(cfg.Cache.MaxEntries, cfg.NATS.DedupTTL)
}

// noClose leaves closing the shared backend to the feed cache.
type noClose struct{ cache.Backend }

func (noClose) Close() error { return nil }

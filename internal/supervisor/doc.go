// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package supervisor runs the long-lived parts of feedrankd under suture v4.

The tree has three independently restarting layers:

	feedrank
	├── storage-layer
	│   └── BadgerGCService (CACHE_BACKEND=badger)
	├── events-layer
	│   └── RouterService (NATS_ENABLED)
	└── ops-layer
	    └── HTTPServerService (/healthz, /readyz, /metrics)

Feed reads are synchronous library calls and are not supervised. The Mongo
client and the cache backend are owned by main and closed after the tree
stops.

# Usage

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddEventService(services.NewRouterService("like-router", buildRouter))
	tree.AddOpsService(services.NewHTTPServerService(srv, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("supervisor stopped")
	}

Supervisor events (start, failure, backoff) are logged through sutureslog,
which writes to the zerolog logger via the slog adapter in internal/logging.

# Restart Semantics

A service returning nil is considered finished and is not restarted. A
service returning an error is restarted, with backoff once its failure count
exceeds TreeConfig.FailureThreshold. Services must return promptly when their
context is canceled; UnstoppedServiceReport lists the ones that did not.
*/
package supervisor

// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package services adapts feedrankd components to suture.Service.
//
//   - HTTPServerService: ListenAndServe/Shutdown to Serve(ctx)
//   - RouterService: rebuilds an event consumer (eventprocessor.Pipeline) on every start
//   - BadgerGCService: periodic badger value log GC for the feed cache
//
// Every service returns ctx.Err() on cancellation and an error on failure so
// the supervisor restarts it.
package services

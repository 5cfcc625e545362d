// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

//go:build integration

// Package testinfra starts throwaway MongoDB, Redis and NATS containers for
// integration tests using testcontainers-go.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
//
// Typical use:
//
//	func TestProfileStore_Integration(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    mongo, err := testinfra.StartMongo(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, mongo)
//	    // connect to mongo.URI
//	}
package testinfra

// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package recommend assembles personalized feed pages and records the likes
// that shape them.
//
// # Feed Assembly
//
// The Assembler turns one feed request into one page:
//
//  1. Serve from the feed cache unless the request forces a refresh.
//  2. Load the requester's tag profile and merge in their recent likes.
//  3. Resolve the pagination cursor to a creation-time bound.
//  4. Fetch a candidate superset (three times the page size, at most 100).
//  5. Score every candidate (see package scoring) and keep the newest page
//     worth of them.
//  6. Order the page by sort mode and diversify ranked pages (see package
//     reranking).
//  7. Enrich with like status and relative age, then cache the page.
//
// # Pagination
//
// NextCursor names the oldest post on the page, which is the last item in
// recent order. Ranked and popular pages reorder that same window, so
// following cursors never repeats or skips a post. Ranking therefore orders
// posts within a page, not across pages.
//
// Content and profile store failures fail the request with
// ErrUpstreamUnavailable. Cache, recent-activity and like-status failures
// only degrade the page.
//
// # Likes
//
// LikeRecorder applies a like to the stored profile with an atomic
// increment-or-insert at the storage layer, then invalidates the liker's
// cached pages.
//
// # Consistency
//
// Likes and feed requests for the same user are not ordered. A feed request
// that races a like may or may not reflect it, and a request that started
// before the invalidation may write a page computed from the old profile back
// into the cache, where it lives until the next like or its TTL expires.
//
// # Usage
//
//	assembler, err := recommend.NewAssembler(cfg, recommend.Deps{
//	    Content:  contentStore,
//	    Likes:    likeLog,
//	    Profiles: profileStore,
//	    Cache:    feedCache,
//	}, logger)
//
//	page, err := assembler.Feed(ctx, recommend.Request{UserID: "u1", Limit: 20})
package recommend

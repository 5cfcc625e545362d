// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package cache provides the feed page cache and its storage backends.

# Overview

FeedCache is a cache-aside layer in front of feed assembly. It holds no
authoritative data: every entry is a projection that can be rebuilt from the
content store, so any cache failure simply degrades to recomputation.

	page, ok := feedCache.Get(ctx, key)
	if !ok {
	    page = assemble(...)
	    feedCache.Set(ctx, key, page, 0)
	}

# Keys

Keys have the form

	feed:v1:<user id | anon>:<sha256(query shape)[:16] hex>

The query shape covers limit, cursor, tag filter, sort mode and exclusions.
Tag and exclusion lists are sorted before hashing, so equivalent requests share
an entry. All pages of one user share the prefix feed:v1:<user>: which is what
InvalidateUser sweeps after deleting the canonical default page.

# Backends

  - memory: in-process LRU map with TTL and periodic cleanup
  - badger: embedded BadgerDB with native TTL and prefix iteration
  - redis: shared Redis with SET EX and SCAN based prefix deletion
  - none: caching disabled, every read misses

# Availability

Backend errors never reach callers. FeedCache wraps every backend call in a
per-operation timeout and a gobreaker circuit breaker; misses do not count as
failures. IsAvailable reports false while the breaker is open or the backend is
unreachable.

# Thread Safety

FeedCache and every backend are safe for concurrent use.
*/
package cache

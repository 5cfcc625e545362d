// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package profile implements the per-user tag preference profile.
//
// A profile maps normalized tags to a non-negative weight and the time the tag
// was last engaged with. Each like adds the like's boost to every tag of the
// liked post. The profile is capped at MaxEntries tags; when the cap is
// exceeded the lowest weights are evicted, ties going to the most recently
// updated tag.
//
// # Reading a profile
//
// TopTags ranks tags by weight plus a recency step boost:
//
//	updated within  7 days  +5
//	updated within 30 days  +2
//	updated within 90 days  +1
//
// MergeRecentActivity then blends in tag counts computed from the like log over
// a recent window. The merge is read-side only; the stored profile is never
// rewritten from it.
//
// # Persistence
//
// Stored profiles are updated with an atomic increment-or-insert per tag, then
// trimmed with the set returned by Evictions. See internal/database.
package profile

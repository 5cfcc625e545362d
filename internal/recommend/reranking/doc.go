// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package reranking implements post-processing passes over a scored feed.
//
// Reranking runs after candidates are scored and sorted:
//
//	Content store -> Scoring -> Sort -> Diversify -> Truncate
//
// # Tag Diversity
//
// The Diversifier walks the ranked list and, slot by slot, prefers the best
// remaining post whose tags are dissimilar to the post just placed:
//
//	sim(a, b) = |tags(a) intersection tags(b)| / |tags(a) union tags(b)|
//
// Posts with sim < 0.5 against the last placed post form the dissimilar set.
// With probability equal to the diversity factor the best dissimilar post is
// taken; otherwise the best remaining post overall. The top post never moves.
//
// Factor guidelines:
//   - 0.0: greedy, input order is preserved
//   - 0.3: light shuffling, the default
//   - 1.0: always break up runs of similar posts when an alternative exists
//
// # Randomness
//
// The random source is injected so tests can pin every decision:
//
//	d := reranking.NewDiversifier(rand.New(rand.NewSource(7)))
//	out := d.Diversify(scored, 0.3)
//
// # Performance
//
// Time is O(n^2) in the worst case for n candidates. The assembler never
// passes more than the candidate fetch cap (100).
package reranking

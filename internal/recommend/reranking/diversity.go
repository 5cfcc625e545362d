// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package reranking

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/feedrank/internal/models"
)

// SimilarityThreshold is the Jaccard similarity below which two posts count
// as dissimilar.
const SimilarityThreshold = 0.5

// RandSource supplies uniform values in [0, 1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

// Diversifier spreads out posts with overlapping tags.
//
// Starting from the top-ranked post, each next slot goes, with probability
// factor, to the highest-ranked remaining post that is dissimilar to the post
// just placed; otherwise to the highest-ranked remaining post. The result is
// always a permutation of the input.
//
// Diversifier is safe for concurrent use.
type Diversifier struct {
	rng   RandSource
	rngMu sync.Mutex
}

// NewDiversifier creates a diversifier drawing from src. A nil src uses a
// time-seeded math/rand source.
func NewDiversifier(src RandSource) *Diversifier {
	if src == nil {
		src = NewSource(0)
	}
	return &Diversifier{rng: src}
}

// NewSource returns a math/rand source for the seed; seed 0 seeds from the clock.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for feed shuffling
}

// Name returns the reranker identifier.
func (d *Diversifier) Name() string {
	return "tag-diversity"
}

// Diversify returns a reordered copy of ranked. The input must be sorted best
// first and is never modified. factor is clamped to [0, 1]; with factor 0 the
// input order is returned unchanged and the random source is not consulted.
//
//nolint:gocritic // rangeValCopy: ScoredCandidate is small enough to copy
func (d *Diversifier) Diversify(ranked []models.ScoredCandidate, factor float64) []models.ScoredCandidate {
	out := make([]models.ScoredCandidate, 0, len(ranked))
	if len(ranked) == 0 {
		return out
	}
	if factor <= 0 || len(ranked) < 3 {
		return append(out, ranked...)
	}
	if factor > 1 {
		factor = 1
	}

	tagSets := make([]map[string]struct{}, len(ranked))
	for i := range ranked {
		tagSets[i] = tagSet(ranked[i].Candidate.Tags)
	}

	placed := make([]bool, len(ranked))
	last := 0
	placed[0] = true
	out = append(out, ranked[0])

	for len(out) < len(ranked) {
		best := -1
		bestDissimilar := -1
		for i := range ranked {
			if placed[i] {
				continue
			}
			if best < 0 {
				best = i
			}
			if jaccard(tagSets[last], tagSets[i]) < SimilarityThreshold {
				bestDissimilar = i
				break
			}
		}

		next := best
		if bestDissimilar >= 0 && bestDissimilar != best && d.chance(factor) {
			next = bestDissimilar
		}

		placed[next] = true
		last = next
		out = append(out, ranked[next])
	}

	return out
}

// chance reports true with probability p.
func (d *Diversifier) chance(p float64) bool {
	if p >= 1 {
		return true
	}
	d.rngMu.Lock()
	defer d.rngMu.Unlock()
	return d.rng.Float64() < p
}

// JaccardSimilarity computes |A n B| / |A u B| over case-insensitive tag sets.
// It is 0 when either set is empty.
func JaccardSimilarity(a, b []string) float64 {
	return jaccard(tagSet(a), tagSet(b))
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

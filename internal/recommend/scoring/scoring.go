// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package scoring computes personalization, recency and popularity scores for
// feed candidates and combines them into a composite ranking score.
//
// Scoring is pure: no I/O and no randomness. For a fixed reference time the
// output is fully determined by the inputs.
package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/logging"
	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/profile"
)

const (
	// recencyHalfLifeDays is the half-life of the recency decay.
	recencyHalfLifeDays = 2.0

	// popularityLogBase normalizes ln(e+1) so ~1000 weighted engagements saturate.
	popularityLogBase = 1000.0

	// popularityMinTimeFactor floors the time adjustment of popularity.
	popularityMinTimeFactor = 0.1

	popularityRawShare  = 0.7
	popularityRateShare = 0.3

	likeWeight    = 1
	commentWeight = 2
	shareWeight   = 3
)

// Weights are the composite score weights. They should sum to 1 for the
// composite to stay in [0, 1]; this is not enforced.
type Weights struct {
	Personalization float64 `koanf:"personalization" json:"personalization" validate:"gte=0,lte=1"`
	Recency         float64 `koanf:"recency" json:"recency" validate:"gte=0,lte=1"`
	Popularity      float64 `koanf:"popularity" json:"popularity" validate:"gte=0,lte=1"`
}

// DefaultWeights returns the standard 0.4 / 0.3 / 0.3 split.
func DefaultWeights() Weights {
	return Weights{Personalization: 0.4, Recency: 0.3, Popularity: 0.3}
}

// Sum returns the total of the weights.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Sum() float64 {
	return w.Personalization + w.Recency + w.Popularity
}

// Engine scores candidates. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	weights Weights
	logger  zerolog.Logger

	// score is CompositeScore; replaced in tests to exercise panic recovery.
	score func(*models.Candidate, []profile.TagScore, time.Time) models.Scores
}

// NewEngine creates a scoring engine with the given weights.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(weights Weights, logger zerolog.Logger) *Engine {
	e := &Engine{
		weights: weights,
		logger:  logger.With().Str("component", "scoring").Logger(),
	}
	e.score = e.CompositeScore
	return e
}

// Weights returns the configured composite weights.
func (e *Engine) Weights() Weights {
	return e.weights
}

// PersonalizationScore measures how well post tags match the ranked profile tags.
//
// Each matching tag contributes its share of the total profile weight. The sum
// is divided by sqrt(len(postTags)) to dampen over-tagged posts, then scaled by
// (1 + fraction of post tags matched) and capped at 1. Empty profiles and
// untagged posts score 0.
func PersonalizationScore(postTags []string, tags []profile.TagScore) float64 {
	if len(postTags) == 0 || len(tags) == 0 {
		return 0
	}

	weights := make(map[string]float64, len(tags))
	total := 0.0
	for _, ts := range tags {
		if ts.Score <= 0 || math.IsNaN(ts.Score) || math.IsInf(ts.Score, 0) {
			continue
		}
		weights[strings.ToLower(ts.Tag)] += ts.Score
		total += ts.Score
	}
	if total == 0 {
		return 0
	}

	matchScore := 0.0
	matched := 0
	for _, tag := range postTags {
		if w, ok := weights[profile.NormalizeTag(tag)]; ok {
			matchScore += w / total
			matched++
		}
	}
	if matched == 0 {
		return 0
	}

	n := float64(len(postTags))
	normalized := matchScore / math.Sqrt(n)
	matchPercentage := float64(matched) / n

	return clamp01(normalized * (1 + matchPercentage))
}

// RecencyScore decays with a two day half-life: 0.5^(ageDays/2).
// Posts from the future score 1; a missing timestamp scores 0.
func RecencyScore(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	ageDays := now.Sub(createdAt).Hours() / 24
	return clamp01(math.Pow(0.5, ageDays/recencyHalfLifeDays))
}

// PopularityScore combines log-scaled weighted engagement, adjusted for age,
// with the engagement rate over views.
//
//	e    = likes + 2*comments + 3*shares
//	rate = e/views (0 without views)
//	t    = max(0.1, exp(-ageHours/24))
//	pop  = min(1, ln(e+1)/ln(1000) * t * 0.7 + rate * 0.3)
func PopularityScore(engagement models.Engagement, createdAt, now time.Time) float64 {
	likes, comments, shares, views := engagement.Counts()
	e := float64(likes)*likeWeight + float64(comments)*commentWeight + float64(shares)*shareWeight

	rate := 0.0
	if views > 0 {
		rate = e / float64(views)
	}

	t := popularityMinTimeFactor
	if !createdAt.IsZero() {
		ageHours := now.Sub(createdAt).Hours()
		t = math.Max(popularityMinTimeFactor, math.Exp(-ageHours/24))
	}

	raw := math.Log(e+1) / math.Log(popularityLogBase)
	adjusted := raw * t

	return clamp01(adjusted*popularityRawShare + rate*popularityRateShare)
}

// CompositeScore computes every sub-score of a candidate and their weighted sum.
func (e *Engine) CompositeScore(c *models.Candidate, tags []profile.TagScore, now time.Time) models.Scores {
	s := models.Scores{
		Personalization: PersonalizationScore(c.Tags, tags),
		Recency:         RecencyScore(c.CreatedAt, now),
		Popularity:      PopularityScore(c.Engagement, c.CreatedAt, now),
	}
	s.Composite = e.weights.Personalization*s.Personalization +
		e.weights.Recency*s.Recency +
		e.weights.Popularity*s.Popularity
	if math.IsNaN(s.Composite) || math.IsInf(s.Composite, 0) {
		s.Composite = 0
	}
	return s
}

// BatchScore scores every candidate against the profile tags.
//
// A candidate whose scoring fails degrades to zero scores; the failure is
// logged and never aborts the batch. Candidates with missing fields are scored
// with zero for the missing dimension and logged once each.
func (e *Engine) BatchScore(ctx context.Context, candidates []models.Candidate, tags []profile.TagScore, now time.Time) []models.ScoredCandidate {
	logger := e.logger
	if id := logging.RequestIDFromContext(ctx); id != "" {
		logger = logger.With().Str("request_id", id).Logger()
	}

	out := make([]models.ScoredCandidate, len(candidates))
	for i := range candidates {
		out[i] = models.ScoredCandidate{
			Candidate: candidates[i],
			Scores:    e.scoreOne(&logger, &candidates[i], tags, now),
		}
	}
	return out
}

func (e *Engine) scoreOne(logger *zerolog.Logger, c *models.Candidate, tags []profile.TagScore, now time.Time) (s models.Scores) {
	defer func() {
		if r := recover(); r != nil {
			s = models.Scores{}
			metrics.RecordScoringFailure()
			logger.Error().
				Str("post_id", c.ID).
				Str("panic", fmt.Sprint(r)).
				Msg("scoring failed, candidate degraded to zero")
		}
	}()

	if missing := missingFields(c); len(missing) > 0 {
		metrics.RecordMalformedCandidate(missing)
		logger.Debug().
			Str("post_id", c.ID).
			Strs("missing", missing).
			Msg("malformed candidate")
	}

	return e.score(c, tags, now)
}

func missingFields(c *models.Candidate) []string {
	missing := c.Engagement.Missing()
	if c.CreatedAt.IsZero() {
		missing = append([]string{"created_at"}, missing...)
	}
	return missing
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

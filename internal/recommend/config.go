// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/feedrank/internal/recommend/scoring"
)

// Config contains all configuration for feed assembly.
type Config struct {
	// DefaultLimit is the page size used when a request asks for none.
	DefaultLimit int `koanf:"default_limit" json:"default_limit" validate:"min=1"`

	// MaxLimit caps the page size a request may ask for.
	MaxLimit int `koanf:"max_limit" json:"max_limit" validate:"min=1"`

	// CandidateMultiplier sizes the candidate superset relative to the page:
	// fetchLimit = limit * CandidateMultiplier, capped at MaxCandidates.
	CandidateMultiplier int `koanf:"candidate_multiplier" json:"candidate_multiplier" validate:"min=1"`

	// MaxCandidates caps the candidate superset.
	MaxCandidates int `koanf:"max_candidates" json:"max_candidates" validate:"min=1"`

	// TopTagLimit is how many profile tags take part in personalization.
	TopTagLimit int `koanf:"top_tag_limit" json:"top_tag_limit" validate:"min=1"`

	// RecentWindowDays is the like-log window merged into the profile ranking.
	// Zero disables the merge.
	RecentWindowDays int `koanf:"recent_window_days" json:"recent_window_days" validate:"min=0"`

	// RecentActivityMultiplier scales each recent like count before it is
	// added to a tag's effective weight.
	RecentActivityMultiplier float64 `koanf:"recent_activity_multiplier" json:"recent_activity_multiplier" validate:"min=0"`

	// DiversityFactor is the probability of promoting a dissimilar post.
	// Applies to the ranked sort only. Zero disables diversity.
	DiversityFactor float64 `koanf:"diversity_factor" json:"diversity_factor" validate:"min=0,max=1"`

	// FetchTimeout bounds candidate retrieval. Exceeding it fails the request.
	FetchTimeout time.Duration `koanf:"fetch_timeout" json:"fetch_timeout"`

	// EnrichTimeout bounds the like-status lookup. Exceeding it marks every
	// post as not liked.
	EnrichTimeout time.Duration `koanf:"enrich_timeout" json:"enrich_timeout"`

	// LikeBoost is the boost applied by a like event that carries none.
	LikeBoost float64 `koanf:"like_boost" json:"like_boost" validate:"gt=0"`

	// Weights are the composite score weights.
	Weights scoring.Weights `koanf:"weights" json:"weights"`

	// Seed seeds the diversity random source. Zero seeds from the clock.
	Seed int64 `koanf:"seed" json:"seed"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultLimit:             20,
		MaxLimit:                 100,
		CandidateMultiplier:      3,
		MaxCandidates:            100,
		TopTagLimit:              20,
		RecentWindowDays:         30,
		RecentActivityMultiplier: 1.0,
		DiversityFactor:          0.3,
		FetchTimeout:             2 * time.Second,
		EnrichTimeout:            500 * time.Millisecond,
		LikeBoost:                1.0,
		Weights:                  scoring.DefaultWeights(),
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit must be >= default_limit, got %d < %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.CandidateMultiplier < 1 {
		return fmt.Errorf("candidate_multiplier must be positive, got %d", c.CandidateMultiplier)
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("max_candidates must be positive, got %d", c.MaxCandidates)
	}
	if c.TopTagLimit < 1 {
		return fmt.Errorf("top_tag_limit must be positive, got %d", c.TopTagLimit)
	}
	if c.RecentWindowDays < 0 {
		return fmt.Errorf("recent_window_days must be non-negative, got %d", c.RecentWindowDays)
	}
	if c.RecentActivityMultiplier < 0 {
		return fmt.Errorf("recent_activity_multiplier must be non-negative, got %f", c.RecentActivityMultiplier)
	}
	if c.DiversityFactor < 0 || c.DiversityFactor > 1 {
		return fmt.Errorf("diversity_factor must be in [0, 1], got %f", c.DiversityFactor)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %v", c.FetchTimeout)
	}
	if c.EnrichTimeout <= 0 {
		return fmt.Errorf("enrich_timeout must be positive, got %v", c.EnrichTimeout)
	}
	if c.LikeBoost <= 0 {
		return fmt.Errorf("like_boost must be positive, got %f", c.LikeBoost)
	}

	for name, w := range map[string]float64{
		"personalization": c.Weights.Personalization,
		"recency":         c.Weights.Recency,
		"popularity":      c.Weights.Popularity,
	} {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weights.%s must be a non-negative number, got %f", name, w)
		}
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	// All fields are values.
	clone := *c
	return &clone
}

// fetchLimit returns the candidate superset size for a page of limit posts.
func (c *Config) fetchLimit(limit int) int {
	n := limit * c.CandidateMultiplier
	if n > c.MaxCandidates {
		n = c.MaxCandidates
	}
	if n < limit {
		n = limit
	}
	return n
}

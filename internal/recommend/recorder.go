// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/cache"
	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/profile"
)

// LikeRecorder applies like events to tag profiles and drops the liker's
// cached feed so the next request reflects the new preferences.
type LikeRecorder struct {
	profiles     ProfileStore
	cache        *cache.FeedCache
	defaultBoost float64
	logger       zerolog.Logger
}

// NewLikeRecorder creates a LikeRecorder. feedCache may be nil.
// defaultBoost applies to events without a boost of their own.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLikeRecorder(profiles ProfileStore, feedCache *cache.FeedCache, defaultBoost float64, logger zerolog.Logger) *LikeRecorder {
	if defaultBoost <= 0 {
		defaultBoost = 1
	}
	return &LikeRecorder{
		profiles:     profiles,
		cache:        feedCache,
		defaultBoost: defaultBoost,
		logger:       logger.With().Str("component", "like-recorder").Logger(),
	}
}

// RecordLike adds the liked post's tags to the user's profile, then
// invalidates the user's cached feed. Profile store errors are returned;
// invalidation is best effort.
//
// An event without usable tags is accepted and changes nothing.
//
//nolint:gocritic // hugeParam: event passed by value for immutability
func (r *LikeRecorder) RecordLike(ctx context.Context, event models.LikeEvent) error {
	if event.UserID == "" {
		return fmt.Errorf("%w: like event without user", ErrInvalidRequest)
	}

	tags := profile.NormalizeTags(event.Tags)
	if len(tags) == 0 {
		r.logger.Debug().
			Str("user_id", event.UserID).
			Str("post_id", event.PostID).
			Msg("like event carries no tags, profile unchanged")
		return nil
	}

	boost := event.Boost
	if boost <= 0 {
		boost = r.defaultBoost
	}

	if err := r.profiles.UpsertTagWeights(ctx, event.UserID, tags, boost); err != nil {
		if !errors.Is(err, context.Canceled) {
			metrics.RecordUpstreamError(collaboratorProfiles, true)
		}
		return fmt.Errorf("upsert tag weights: %w: %w", ErrUpstreamUnavailable, err)
	}

	invalidated := true
	if r.cache != nil {
		invalidated = r.cache.InvalidateUser(ctx, event.UserID)
	}

	r.logger.Debug().
		Str("user_id", event.UserID).
		Str("post_id", event.PostID).
		Strs("tags", tags).
		Float64("boost", boost).
		Bool("cache_invalidated", invalidated).
		Msg("like recorded")
	return nil
}

// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package eventprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/logging"
	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/models"
)

// Recorder applies a like to the user's tag profile.
type Recorder interface {
	RecordLike(ctx context.Context, event models.LikeEvent) error
}

// LikeSink appends a like to the like log. Record must be idempotent per
// (user, post).
type LikeSink interface {
	Record(ctx context.Context, userID, postID string, tags []string, at time.Time) error
}

// LikeHandler consumes like events.
type LikeHandler struct {
	recorder Recorder
	likes    LikeSink
	logger   zerolog.Logger
	now      func() time.Time
}

// NewLikeHandler creates a handler. likes may be nil when another service
// owns the like log.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLikeHandler(recorder Recorder, likes LikeSink, logger zerolog.Logger) *LikeHandler {
	return &LikeHandler{
		recorder: recorder,
		likes:    likes,
		logger:   logger.With().Str("component", "like-handler").Logger(),
		now:      time.Now,
	}
}

// Handle is a message.NoPublishHandlerFunc. The like log is written before
// the profile boost: the log write is idempotent, the boost is not, and a
// retry repeats both.
func (h *LikeHandler) Handle(msg *message.Message) error {
	start := time.Now()

	event, err := DecodeLikeEvent(msg.Payload)
	if err != nil {
		metrics.RecordLikeEvent("invalid", time.Since(start))
		h.logger.Warn().
			Err(err).
			Str("message_uuid", msg.UUID).
			Msg("Rejecting like event")
		return err
	}
	if event.EventID == "" {
		event.EventID = eventKey(msg)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = h.now().UTC()
	}

	ctx := logging.ContextWithCorrelationID(msg.Context(), event.EventID)

	if h.likes != nil {
		if err := h.likes.Record(ctx, event.UserID, event.PostID, event.Tags, event.OccurredAt); err != nil {
			metrics.RecordLikeEvent("failed", time.Since(start))
			return fmt.Errorf("record like %s: %w", event.EventID, err)
		}
	}

	if err := h.recorder.RecordLike(ctx, *event); err != nil {
		metrics.RecordLikeEvent("failed", time.Since(start))
		return fmt.Errorf("apply like %s: %w", event.EventID, err)
	}

	metrics.RecordLikeEvent("processed", time.Since(start))
	h.logger.Debug().
		Str("event_id", event.EventID).
		Str("user_id", event.UserID).
		Str("post_id", event.PostID).
		Msg("Like event processed")

	return nil
}

// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package models

import "time"

// LikeEvent is emitted when a user likes a post. It carries the post's tags so
// the consumer can update the tag profile without reading the post back.
type LikeEvent struct {
	EventID    string    `json:"event_id" validate:"max=128"`
	UserID     string    `json:"user_id" validate:"required,max=128"`
	PostID     string    `json:"post_id" validate:"required,max=128"`
	Tags       []string  `json:"tags" validate:"max=64,dive,max=100"`
	Boost      float64   `json:"boost,omitempty" validate:"gte=0,lte=100"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/validation"
)

// Message metadata keys.
const (
	MetadataEventID   = "event_id"
	MetadataUserID    = "user_id"
	MetadataEventType = "event_type"

	EventTypeLike = "post.liked"
)

// ErrInvalidEvent marks a payload that can never be processed.
var ErrInvalidEvent = errors.New("invalid like event")

// EncodeLikeEvent serializes a like event to JSON.
//
//nolint:gocritic // hugeParam: event passed by value for immutability
func EncodeLikeEvent(event models.LikeEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal like event: %w", err)
	}
	return data, nil
}

// DecodeLikeEvent parses and validates a like event.
func DecodeLikeEvent(data []byte) (*models.LikeEvent, error) {
	var event models.LikeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if err := validation.ValidateStruct(&event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return &event, nil
}

// NewLikeMessage builds a Watermill message for a like event. A missing
// EventID or OccurredAt is filled in. The message UUID is the event id so
// redeliveries deduplicate.
//
//nolint:gocritic // hugeParam: event passed by value for immutability
func NewLikeMessage(event models.LikeEvent) (*message.Message, error) {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := EncodeLikeEvent(event)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(event.EventID, payload)
	msg.Metadata.Set(MetadataEventID, event.EventID)
	msg.Metadata.Set(MetadataUserID, event.UserID)
	msg.Metadata.Set(MetadataEventType, EventTypeLike)
	return msg, nil
}

// eventKey is the deduplication key of a message.
func eventKey(msg *message.Message) string {
	if id := msg.Metadata.Get(MetadataEventID); id != "" {
		return id
	}
	return msg.UUID
}

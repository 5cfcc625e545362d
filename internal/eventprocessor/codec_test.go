// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package eventprocessor

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/feedrank/internal/models"
)

func TestDecodeLikeEvent(t *testing.T) {
	at := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	data, err := EncodeLikeEvent(models.LikeEvent{
		EventID:    "e1",
		UserID:     "u1",
		PostID:     "p1",
		Tags:       []string{"go", "db"},
		Boost:      2,
		OccurredAt: at,
	})
	if err != nil {
		t.Fatal(err)
	}

	event, err := DecodeLikeEvent(data)
	if err != nil {
		t.Fatalf("DecodeLikeEvent() error = %v", err)
	}
	if event.UserID != "u1" || event.PostID != "p1" || event.Boost != 2 || len(event.Tags) != 2 {
		t.Errorf("event = %+v", event)
	}
	if !event.OccurredAt.Equal(at) {
		t.Errorf("OccurredAt = %v, want %v", event.OccurredAt, at)
	}
}

func TestDecodeLikeEventInvalid(t *testing.T) {
	tooManyTags := `["` + strings.Repeat(`t","`, 64) + `t"]`

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{user_id`},
		{"missing user", `{"post_id":"p1","tags":["go"]}`},
		{"missing post", `{"user_id":"u1","tags":["go"]}`},
		{"negative boost", `{"user_id":"u1","post_id":"p1","boost":-1}`},
		{"too many tags", `{"user_id":"u1","post_id":"p1","tags":` + tooManyTags + `}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLikeEvent([]byte(tt.payload))
			if !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("DecodeLikeEvent() error = %v, want ErrInvalidEvent", err)
			}
		})
	}
}

func TestDecodeLikeEventWithoutTags(t *testing.T) {
	event, err := DecodeLikeEvent([]byte(`{"user_id":"u1","post_id":"p1"}`))
	if err != nil {
		t.Fatalf("an event without tags is valid: %v", err)
	}
	if len(event.Tags) != 0 {
		t.Errorf("Tags = %v, want none", event.Tags)
	}
}

func TestNewLikeMessage(t *testing.T) {
	msg, err := NewLikeMessage(models.LikeEvent{UserID: "u1", PostID: "p1", Tags: []string{"go"}})
	if err != nil {
		t.Fatal(err)
	}

	id := msg.Metadata.Get(MetadataEventID)
	if id == "" {
		t.Fatal("event id not generated")
	}
	if msg.UUID != id {
		t.Errorf("UUID = %q, want event id %q", msg.UUID, id)
	}
	if msg.Metadata.Get(MetadataUserID) != "u1" || msg.Metadata.Get(MetadataEventType) != EventTypeLike {
		t.Errorf("metadata = %v", msg.Metadata)
	}

	event, err := DecodeLikeEvent(msg.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if event.EventID != id || event.OccurredAt.IsZero() {
		t.Errorf("payload = %+v, want filled event id and time", event)
	}
}

func TestEventKey(t *testing.T) {
	msg := message.NewMessage("uuid-1", nil)
	if got := eventKey(msg); got != "uuid-1" {
		t.Errorf("eventKey() = %q, want message UUID", got)
	}
	msg.Metadata.Set(MetadataEventID, "e1")
	if got := eventKey(msg); got != "e1" {
		t.Errorf("eventKey() = %q, want e1", got)
	}
}

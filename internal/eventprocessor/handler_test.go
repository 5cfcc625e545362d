// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/models"
)

type fakeRecorder struct {
	mu     sync.Mutex
	events []models.LikeEvent
	err    error
	seen   chan string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{seen: make(chan string, 64)}
}

func (f *fakeRecorder) RecordLike(_ context.Context, event models.LikeEvent) error {
	f.mu.Lock()
	err := f.err
	if err == nil {
		f.events = append(f.events, event)
	}
	f.mu.Unlock()
	if err == nil {
		f.seen <- event.EventID
	}
	return err
}

func (f *fakeRecorder) Events() []models.LikeEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.LikeEvent(nil), f.events...)
}

type fakeSink struct {
	mu    sync.Mutex
	posts []string
	err   error
}

func (f *fakeSink) Record(_ context.Context, _, postID string, _ []string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.posts = append(f.posts, postID)
	return nil
}

func likeMessage(t *testing.T, event models.LikeEvent) *message.Message {
	t.Helper()
	msg, err := NewLikeMessage(event)
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestLikeHandlerProcesses(t *testing.T) {
	rec := newFakeRecorder()
	sink := &fakeSink{}
	h := NewLikeHandler(rec, sink, zerolog.Nop())

	msg := likeMessage(t, models.LikeEvent{EventID: "e1", UserID: "u1", PostID: "p1", Tags: []string{"go"}})
	if err := h.Handle(msg); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	events := rec.Events()
	if len(events) != 1 || events[0].UserID != "u1" || events[0].EventID != "e1" {
		t.Errorf("recorded %+v", events)
	}
	if len(sink.posts) != 1 || sink.posts[0] != "p1" {
		t.Errorf("like log = %v, want [p1]", sink.posts)
	}
}

func TestLikeHandlerFillsMissingFields(t *testing.T) {
	rec := newFakeRecorder()
	h := NewLikeHandler(rec, nil, zerolog.Nop())
	fixed := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	msg := message.NewMessage("uuid-7", []byte(`{"user_id":"u1","post_id":"p1","tags":["go"]}`))
	if err := h.Handle(msg); err != nil {
		t.Fatal(err)
	}

	got := rec.Events()[0]
	if got.EventID != "uuid-7" {
		t.Errorf("EventID = %q, want message UUID", got.EventID)
	}
	if !got.OccurredAt.Equal(fixed) {
		t.Errorf("OccurredAt = %v, want %v", got.OccurredAt, fixed)
	}
}

func TestLikeHandlerErrors(t *testing.T) {
	storeErr := errors.New("mongo down")

	tests := []struct {
		name       string
		payload    []byte
		recErr     error
		sinkErr    error
		wantErr    error
		wantRecord bool
	}{
		{"invalid payload", []byte(`{"post_id":"p1"}`), nil, nil, ErrInvalidEvent, false},
		{"recorder failure", nil, storeErr, nil, storeErr, false},
		{"sink failure skips the boost", nil, nil, storeErr, storeErr, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newFakeRecorder()
			rec.err = tt.recErr
			h := NewLikeHandler(rec, &fakeSink{err: tt.sinkErr}, zerolog.Nop())

			msg := likeMessage(t, models.LikeEvent{UserID: "u1", PostID: "p1", Tags: []string{"go"}})
			if tt.payload != nil {
				msg.Payload = tt.payload
			}

			err := h.Handle(msg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Handle() error = %v, want %v", err, tt.wantErr)
			}
			if got := len(rec.Events()) > 0; got != tt.wantRecord {
				t.Errorf("recorded = %v, want %v", got, tt.wantRecord)
			}
		})
	}
}

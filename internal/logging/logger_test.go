// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInit_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})
	defer Init(DefaultConfig())

	logger := WithComponent("assembler")
	logger.Info().Str("user_id", "u1").Msg("feed built")

	out := buf.String()
	for _, want := range []string{`"component":"assembler"`, `"user_id":"u1"`, `"message":"feed built"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestCtx_AddsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRequestID(ctx, "req-123")
	ctx = ContextWithCorrelationID(ctx, "corr-9")

	Ctx(ctx).Warn().Msg("degraded")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-123"`) {
		t.Errorf("missing request_id: %s", out)
	}
	if !strings.Contains(out, `"correlation_id":"corr-9"`) {
		t.Errorf("missing correlation_id: %s", out)
	}
}

func TestGenerateIDs(t *testing.T) {
	if got := len(GenerateRequestID()); got != 36 {
		t.Errorf("request id length = %d, want 36", got)
	}
	if got := len(GenerateCorrelationID()); got != 8 {
		t.Errorf("correlation id length = %d, want 8", got)
	}
}

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(NewTestLogger(&buf))).
		With("service", "events").
		WithGroup("router")

	logger.Info("service started", "attempt", 2)

	out := buf.String()
	if !strings.Contains(out, `"service":"events"`) {
		t.Errorf("missing pre-set attr: %s", out)
	}
	if !strings.Contains(out, `"router.attempt":2`) {
		t.Errorf("missing grouped attr: %s", out)
	}
}

func TestWatermillAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewWatermillAdapter(NewTestLogger(&buf)).With(watermill.LogFields{"topic": "feed.likes"})

	adapter.Error("handler failed", errors.New("boom"), watermill.LogFields{"attempt": 3})

	out := buf.String()
	for _, want := range []string{`"topic":"feed.likes"`, `"attempt":3`, `"error":"boom"`, `"level":"error"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

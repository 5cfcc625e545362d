// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/feedrank/internal/validation"
)

func TestValidateCrossField(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"badger needs a path", func(c *Config) {
			c.Cache.Backend = "badger"
			c.Cache.BadgerPath = ""
		}, "BADGER_PATH"},
		{"in-memory badger needs no path", func(c *Config) {
			c.Cache.Backend = "badger"
			c.Cache.BadgerPath = ""
			c.Cache.BadgerInMemory = true
		}, ""},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, "CACHE_TTL"},
		{"zero ttl without cache", func(c *Config) {
			c.Cache.Backend = "none"
			c.Cache.TTL = 0
		}, ""},
		{"srv mongo uri", func(c *Config) { c.Mongo.URI = "mongodb+srv://cluster0.example.net" }, ""},
		{"poison topic required", func(c *Config) { c.NATS.RouterPoisonQueueTopic = "" }, "POISON"},
		{"nats disabled skips url", func(c *Config) {
			c.NATS.Enabled = false
			c.NATS.URL = "bogus"
		}, ""},
		{"jetstream needs durable", func(c *Config) {
			c.NATS.JetStream = true
			c.NATS.DurableName = ""
		}, "DURABLE"},
		{"feed limits", func(c *Config) {
			c.Feed.DefaultLimit = 50
			c.Feed.MaxLimit = 10
		}, "max_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() should fail with %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStructTags(t *testing.T) {
	cfg := defaultConfig()
	cfg.Mongo.Database = ""
	cfg.NATS.SubscribersCount = 0

	err := cfg.Validate()
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want *validation.Error", err)
	}
	if len(verr.Errors()) != 2 {
		t.Errorf("got %d field errors, want 2: %v", len(verr.Errors()), verr)
	}
}

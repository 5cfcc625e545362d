// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/feedrank/internal/validation"
)

// Validate checks struct tags first, then the rules that span fields.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := validateMongoURI(c.Mongo.URI); err != nil {
		return fmt.Errorf("invalid MONGO_URI: %w", err)
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if c.NATS.Enabled {
		if err := validateNATSURL(c.NATS.URL); err != nil {
			return fmt.Errorf("invalid NATS_URL: %w", err)
		}
		if c.NATS.LikesTopic == "" {
			return fmt.Errorf("NATS_LIKES_TOPIC is required when NATS is enabled")
		}
		if c.NATS.RouterPoisonQueueEnabled && c.NATS.RouterPoisonQueueTopic == "" {
			return fmt.Errorf("NATS_ROUTER_POISON_QUEUE_TOPIC is required when the poison queue is enabled")
		}
		if c.NATS.JetStream && c.NATS.DurableName == "" {
			return fmt.Errorf("NATS_DURABLE_NAME is required for JetStream consumers")
		}
	}

	if err := c.Feed.Validate(); err != nil {
		return fmt.Errorf("invalid feed configuration: %w", err)
	}

	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	case "badger":
		if !c.Cache.BadgerInMemory && c.Cache.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required when CACHE_BACKEND=badger and BADGER_IN_MEMORY is false")
		}
	}
	if c.Cache.Backend != "none" && c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %v", c.Cache.TTL)
	}
	return nil
}

// validateMongoURI accepts mongodb:// and mongodb+srv:// connection strings.
func validateMongoURI(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme != "mongodb" && parsedURL.Scheme != "mongodb+srv" {
		return fmt.Errorf("scheme must be mongodb or mongodb+srv, got: %s", parsedURL.Scheme)
	}
	if strings.TrimSpace(parsedURL.Host) == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

// validateNATSURL validates that the NATS URL is properly formatted.
// Supports nats://, tls://, ws:// and wss:// schemes.
func validateNATSURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	validSchemes := map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222, nats.example.com)")
	}

	return nil
}

// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package eventprocessor consumes like events and feeds them into tag profiles.

Like events are JSON documents on a NATS subject (feed.likes by default):

	{"event_id": "...", "user_id": "u1", "post_id": "p9", "tags": ["go"], "boost": 1, "occurred_at": "..."}

# Pipeline

A Watermill Router runs one consumer handler with this middleware, outermost
first:

  - PoisonQueue: messages that exhaust their retries go to the poison topic
  - Recoverer: handler panics become errors
  - Deduplicator: event ids already processed within DedupTTL are acked and skipped
  - Retry: exponential backoff for transient store failures

LikeHandler decodes and validates the event, appends it to the like log when
a LikeSink is configured, then calls the recorder that boosts the user's tag
weights and invalidates their cached feed pages.

Malformed events fail validation on every attempt and end up on the poison
topic after the retries.

# Transport

NewSubscriber and NewPublisher build watermill-nats/v2 clients. Core NATS
queue groups balance events across instances; with JetStream enabled the
subscription is a durable consumer. The poison publisher is wrapped in a
BreakerPublisher so a dead broker fails fast.

NewPipeline assembles subscriber, poison publisher and router for a single
run. The supervisor builds a fresh Pipeline after every failure.

Tests use the Watermill gochannel Pub/Sub in place of NATS.
*/
package eventprocessor

// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package config loads and validates feedrank configuration.

Configuration is layered with Koanf v2. Built-in defaults are loaded first,
then an optional YAML file, then environment variables. Later layers win.

# Config File

The file is taken from CONFIG_PATH when set, otherwise the first of
DefaultConfigPaths that exists. A file is optional.

	mongo:
	  uri: mongodb://mongo:27017
	  database: feedrank
	cache:
	  backend: redis
	  redis_addr: redis:6379
	feed:
	  default_limit: 20
	  diversity_factor: 0.3
	  weights:
	    personalization: 0.5
	    recency: 0.3
	    popularity: 0.2

# Environment Variables

Only explicitly mapped variables are read (see envMappings). The common ones:

  - HTTP_HOST, HTTP_PORT: operations server listen address (default: 0.0.0.0:9090)
  - HTTP_DEBUG_FEED: serve feed previews on /debug/feed/{userID} (default: false)
  - MONGO_URI, MONGO_DATABASE: content and profile store
  - CACHE_BACKEND: memory, badger, redis or none (default: memory)
  - CACHE_TTL: feed page lifetime (default: 5m)
  - REDIS_ADDR, BADGER_PATH: backend specific storage
  - NATS_ENABLED, NATS_URL, NATS_LIKES_TOPIC: like event ingestion
  - FEED_WEIGHT_PERSONALIZATION, FEED_WEIGHT_RECENCY, FEED_WEIGHT_POPULARITY
  - FEED_DIVERSITY_FACTOR, FEED_DEFAULT_LIMIT, FEED_MAX_LIMIT
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Validation

Validate runs go-playground/validator struct tags through the validation
package, then checks rules that span fields: backend specific cache
settings, URL schemes for MongoDB and NATS, and the feed assembly limits.

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	backend, err := cache.NewBackend(cfg.Cache.BackendConfig())
*/
package config

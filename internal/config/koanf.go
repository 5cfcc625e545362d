// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/feedrank/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/feedrank/config.yaml",
	"/etc/feedrank/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            9090,
			ReadTimeout:     5 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Mongo: MongoConfig{
			URI:                "mongodb://127.0.0.1:27017",
			Database:           "feedrank",
			PostsCollection:    "posts",
			LikesCollection:    "likes",
			ProfilesCollection: "user_profiles",
			ConnectTimeout:     10 * time.Second,
			MaxPoolSize:        100,
			EnsureIndexes:      true,
		},
		Cache: CacheConfig{
			Backend:          "memory",
			TTL:              5 * time.Minute,
			OpTimeout:        100 * time.Millisecond,
			MaxEntries:       10000,
			CleanupInterval:  time.Minute,
			BadgerPath:       "/data/feedcache",
			BadgerInMemory:   false,
			BadgerGCInterval: 10 * time.Minute,
			RedisAddr:        "127.0.0.1:6379",
			RedisDB:          0,
			BreakerFailures:  5,
			BreakerTimeout:   30 * time.Second,
		},
		NATS: NATSConfig{
			Enabled:                    true,
			URL:                        "nats://127.0.0.1:4222",
			JetStream:                  false,
			LikesTopic:                 "feed.likes",
			QueueGroup:                 "feedrank",
			DurableName:                "feedrank-likes",
			SubscribersCount:           4,
			RouterRetryCount:           3,
			RouterRetryInitialInterval: 100 * time.Millisecond,
			RouterPoisonQueueEnabled:   true,
			RouterPoisonQueueTopic:     "feed.likes.poison",
			RouterCloseTimeout:         30 * time.Second,
			DedupTTL:                   10 * time.Minute,
		},
		Feed: *recommend.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Struct defaults
//  2. Config file (optional)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" for none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps lowercased environment variable names to config paths.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"http_debug_feed":       "server.debug_feed",

	// MongoDB
	"mongo_uri":                 "mongo.uri",
	"mongo_database":            "mongo.database",
	"mongo_posts_collection":    "mongo.posts_collection",
	"mongo_likes_collection":    "mongo.likes_collection",
	"mongo_profiles_collection": "mongo.profiles_collection",
	"mongo_connect_timeout":     "mongo.connect_timeout",
	"mongo_max_pool_size":       "mongo.max_pool_size",
	"mongo_ensure_indexes":      "mongo.ensure_indexes",

	// Feed cache
	"cache_backend":          "cache.backend",
	"cache_ttl":              "cache.ttl",
	"cache_op_timeout":       "cache.op_timeout",
	"cache_max_entries":      "cache.max_entries",
	"cache_cleanup_interval": "cache.cleanup_interval",
	"cache_breaker_failures": "cache.breaker_failures",
	"cache_breaker_timeout":  "cache.breaker_timeout",
	"badger_path":            "cache.badger_path",
	"badger_in_memory":       "cache.badger_in_memory",
	"badger_gc_interval":     "cache.badger_gc_interval",
	"redis_addr":             "cache.redis_addr",
	"redis_password":         "cache.redis_password",
	"redis_db":               "cache.redis_db",

	// NATS
	"nats_enabled":                       "nats.enabled",
	"nats_url":                           "nats.url",
	"nats_jetstream":                     "nats.jetstream",
	"nats_likes_topic":                   "nats.likes_topic",
	"nats_queue_group":                   "nats.queue_group",
	"nats_durable_name":                  "nats.durable_name",
	"nats_subscribers":                   "nats.subscribers_count",
	"nats_router_retry_count":            "nats.router_retry_count",
	"nats_router_retry_initial_interval": "nats.router_retry_initial_interval",
	"nats_router_poison_queue_enabled":   "nats.router_poison_queue_enabled",
	"nats_router_poison_queue_topic":     "nats.router_poison_queue_topic",
	"nats_router_close_timeout":          "nats.router_close_timeout",
	"nats_dedup_ttl":                     "nats.dedup_ttl",

	// Feed assembly
	"feed_default_limit":              "feed.default_limit",
	"feed_max_limit":                  "feed.max_limit",
	"feed_candidate_multiplier":       "feed.candidate_multiplier",
	"feed_max_candidates":             "feed.max_candidates",
	"feed_top_tag_limit":              "feed.top_tag_limit",
	"feed_recent_window_days":         "feed.recent_window_days",
	"feed_recent_activity_multiplier": "feed.recent_activity_multiplier",
	"feed_diversity_factor":           "feed.diversity_factor",
	"feed_fetch_timeout":              "feed.fetch_timeout",
	"feed_enrich_timeout":             "feed.enrich_timeout",
	"feed_like_boost":                 "feed.like_boost",
	"feed_seed":                       "feed.seed",
	"feed_weight_personalization":     "feed.weights.personalization",
	"feed_weight_recency":             "feed.weights.recency",
	"feed_weight_popularity":          "feed.weights.popularity",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to config paths.
// Unmapped variables are skipped so unrelated environment never leaks into config.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// GetKoanfInstance returns a new Koanf instance for advanced usage.
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}

// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package config

import (
	"time"

	"github.com/tomtom215/feedrank/internal/cache"
	"github.com/tomtom215/feedrank/internal/logging"
	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/recommend"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in defaults for every setting
//  2. Config File: optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: mapped explicitly, see envTransformFunc
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server  ServerConfig     `koanf:"server"`
	Mongo   MongoConfig      `koanf:"mongo"`
	Cache   CacheConfig      `koanf:"cache"`
	NATS    NATSConfig       `koanf:"nats"`
	Feed    recommend.Config `koanf:"feed"`
	Logging LoggingConfig    `koanf:"logging"`
}

// ServerConfig configures the operations HTTP server (metrics and health).
//
// Environment Variables:
//   - HTTP_HOST: listen host (default: 0.0.0.0)
//   - HTTP_PORT: listen port (default: 9090)
//   - HTTP_SHUTDOWN_TIMEOUT: graceful shutdown limit (default: 10s)
//   - HTTP_DEBUG_FEED: mount GET /debug/feed/{userID} (default: false)
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// DebugFeed exposes feed previews on the ops port. Keep it off where
	// the ops port is reachable by untrusted clients.
	DebugFeed bool `koanf:"debug_feed"`
}

// MongoConfig configures the MongoDB connection holding posts, likes and
// tag profiles.
//
// Environment Variables:
//   - MONGO_URI: connection string (default: mongodb://127.0.0.1:27017)
//   - MONGO_DATABASE: database name (default: feedrank)
type MongoConfig struct {
	URI                string        `koanf:"uri" validate:"required"`
	Database           string        `koanf:"database" validate:"required"`
	PostsCollection    string        `koanf:"posts_collection" validate:"required"`
	LikesCollection    string        `koanf:"likes_collection" validate:"required"`
	ProfilesCollection string        `koanf:"profiles_collection" validate:"required"`
	ConnectTimeout     time.Duration `koanf:"connect_timeout"`
	MaxPoolSize        uint64        `koanf:"max_pool_size"`

	// EnsureIndexes creates the indexes feed queries rely on at startup.
	EnsureIndexes bool `koanf:"ensure_indexes"`
}

// CacheConfig configures the feed page cache.
//
// Environment Variables:
//   - CACHE_BACKEND: memory, badger, redis or none (default: memory)
//   - CACHE_TTL: page lifetime (default: 5m)
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB: redis backend connection
//   - BADGER_PATH, BADGER_IN_MEMORY: badger backend storage
type CacheConfig struct {
	Backend         string        `koanf:"backend" validate:"oneof=memory badger redis none"`
	TTL             time.Duration `koanf:"ttl"`
	OpTimeout       time.Duration `koanf:"op_timeout"`
	MaxEntries      int           `koanf:"max_entries" validate:"min=0"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	BadgerPath       string        `koanf:"badger_path"`
	BadgerInMemory   bool          `koanf:"badger_in_memory"`
	BadgerGCInterval time.Duration `koanf:"badger_gc_interval"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"min=0"`

	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// BackendConfig returns the settings needed to construct the cache backend.
func (c *CacheConfig) BackendConfig() *cache.BackendConfig {
	return &cache.BackendConfig{
		Type:            c.Backend,
		MaxEntries:      c.MaxEntries,
		CleanupInterval: c.CleanupInterval,
		BadgerPath:      c.BadgerPath,
		BadgerInMemory:  c.BadgerInMemory,
		RedisAddr:       c.RedisAddr,
		RedisPassword:   c.RedisPassword,
		RedisDB:         c.RedisDB,
	}
}

// FeedCacheConfig returns the FeedCache settings. The canonical shape is the
// default feed request: the default page size in ranked order.
func (c *Config) FeedCacheConfig() cache.Config {
	return cache.Config{
		TTL:             c.Cache.TTL,
		OpTimeout:       c.Cache.OpTimeout,
		CanonicalShape:  cache.Shape{Limit: c.Feed.DefaultLimit, Sort: string(models.SortRanked)},
		BreakerFailures: c.Cache.BreakerFailures,
		BreakerTimeout:  c.Cache.BreakerTimeout,
	}
}

// NATSConfig configures like event ingestion with Watermill over NATS.
//
// Environment Variables:
//   - NATS_ENABLED: consume like events (default: true)
//   - NATS_URL: server URL (default: nats://127.0.0.1:4222)
//   - NATS_LIKES_TOPIC: subject carrying like events (default: feed.likes)
type NATSConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`

	// JetStream consumes from a durable JetStream consumer instead of core NATS.
	JetStream bool `koanf:"jetstream"`

	LikesTopic       string `koanf:"likes_topic"`
	QueueGroup       string `koanf:"queue_group"`
	DurableName      string `koanf:"durable_name"`
	SubscribersCount int    `koanf:"subscribers_count" validate:"min=1"`

	RouterRetryCount           int           `koanf:"router_retry_count" validate:"min=0"`
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`
	RouterPoisonQueueEnabled   bool          `koanf:"router_poison_queue_enabled"`
	RouterPoisonQueueTopic     string        `koanf:"router_poison_queue_topic"`
	RouterCloseTimeout         time.Duration `koanf:"router_close_timeout"`

	// DedupTTL is how long a processed event id is remembered.
	DedupTTL time.Duration `koanf:"dedup_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// LoggerConfig converts to the logging package configuration.
func (c *LoggingConfig) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	return cfg
}

// Load loads configuration from defaults, the optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

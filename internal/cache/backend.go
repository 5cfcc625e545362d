// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMiss is returned by a backend when the key is absent or expired.
	ErrMiss = errors.New("cache miss")

	// ErrUnavailable is returned when the backend cannot be reached or is closed.
	ErrUnavailable = errors.New("cache backend unavailable")
)

// Backend is a byte-oriented key/value store with per-key TTL.
//
// Implementations report unreachability through error returns and Available;
// they never panic on connectivity problems.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Get returns the stored value or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix and returns how many
	// were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Available reports whether the backend is currently reachable.
	Available(ctx context.Context) bool

	// Close releases resources. The backend is unusable afterwards.
	Close() error
}

// Backend names accepted by NewBackend.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// BackendConfig selects and configures a backend.
type BackendConfig struct {
	Type string

	// Memory
	MaxEntries      int
	CleanupInterval time.Duration

	// Badger
	BadgerPath     string
	BadgerInMemory bool

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewBackend builds the backend named by cfg.Type.
func NewBackend(cfg *BackendConfig) (Backend, error) {
	switch cfg.Type {
	case BackendMemory, "":
		return NewMemoryBackend(cfg.MaxEntries, cfg.CleanupInterval), nil
	case BackendBadger:
		return OpenBadgerBackend(cfg.BadgerPath, cfg.BadgerInMemory)
	case BackendRedis:
		return NewRedisBackend(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	case BackendNone:
		return NoopBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Type)
	}
}

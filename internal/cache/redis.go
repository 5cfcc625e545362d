// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	redisScanCount   = 200
	redisPingTimeout = 250 * time.Millisecond
)

// RedisBackend stores cache entries in Redis so every replica shares them.
type RedisBackend struct {
	rdb   redis.UniversalClient
	owned bool
}

// NewRedisBackend connects to a single Redis node. The client connects lazily;
// use Available to probe reachability.
func NewRedisBackend(addr, password string, db int) *RedisBackend {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	return &RedisBackend{rdb: rdb, owned: true}
}

// NewRedisBackendFromClient wraps an existing client. Close does not close it.
func NewRedisBackendFromClient(rdb redis.UniversalClient) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

// Name implements Backend.
func (r *RedisBackend) Name() string { return BackendRedis }

// Get implements Backend.
func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return val, nil
}

// Set implements Backend.
func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Delete implements Backend.
func (r *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// DeletePrefix implements Backend using SCAN so the server is never blocked.
func (r *RedisBackend) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	pattern := escapeGlob(prefix) + "*"
	deleted := 0

	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, pattern, redisScanCount).Result()
		if err != nil {
			return deleted, fmt.Errorf("%w: scan: %v", ErrUnavailable, err)
		}
		if len(keys) > 0 {
			n, err := r.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("%w: del: %v", ErrUnavailable, err)
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

// Available implements Backend with a short PING.
func (r *RedisBackend) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	return r.rdb.Ping(ctx).Err() == nil
}

// Close implements Backend.
func (r *RedisBackend) Close() error {
	if !r.owned {
		return nil
	}
	return r.rdb.Close()
}

// escapeGlob escapes Redis MATCH metacharacters.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

var _ Backend = (*RedisBackend)(nil)

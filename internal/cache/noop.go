// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package cache

import (
	"context"
	"time"
)

// NoopBackend stores nothing. Every read misses. Used when caching is disabled.
type NoopBackend struct{}

func (NoopBackend) Name() string { return BackendNone }
func (NoopBackend) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }
func (NoopBackend) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NoopBackend) Delete(context.Context, ...string) error { return nil }
func (NoopBackend) DeletePrefix(context.Context, string) (int, error) { return 0, nil }
func (NoopBackend) Available(context.Context) bool { return true }
func (NoopBackend) Close() error { return nil }

var _ Backend = NoopBackend{}

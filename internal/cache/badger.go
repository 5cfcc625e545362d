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

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/feedrank/internal/logging"
)

// deleteBatchSize bounds the number of deletes per badger transaction.
const deleteBatchSize = 1000

// BadgerBackend stores cache entries in an embedded BadgerDB using native
// per-key TTLs. Entries survive process restarts until they expire.
type BadgerBackend struct {
	db    *badger.DB
	owned bool
}

// OpenBadgerBackend opens (or creates) a BadgerDB at path. With inMemory set
// the path is ignored and nothing touches disk.
func OpenBadgerBackend(path string, inMemory bool) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Badger's own logger is too chatty for a cache.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", path).
		Bool("in_memory", inMemory).
		Msg("badger feed cache opened")

	return &BadgerBackend{db: db, owned: true}, nil
}

// NewBadgerBackend wraps an already open database. Close does not close it.
func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

// DB exposes the underlying database for value log GC.
func (b *BadgerBackend) DB() *badger.DB {
	return b.db
}

// Name implements Backend.
func (b *BadgerBackend) Name() string { return BackendBadger }

// Get implements Backend.
func (b *BadgerBackend) Get(_ context.Context, key string) ([]byte, error) {
	if b.db.IsClosed() {
		return nil, ErrUnavailable
	}

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrMiss
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set implements Backend.
func (b *BadgerBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if b.db.IsClosed() {
		return ErrUnavailable
	}

	return b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete implements Backend.
func (b *BadgerBackend) Delete(_ context.Context, keys ...string) error {
	if b.db.IsClosed() {
		return ErrUnavailable
	}

	return b.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
		return nil
	})
}

// DeletePrefix implements Backend. Keys are collected in a read transaction
// and removed in batches.
func (b *BadgerBackend) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if b.db.IsClosed() {
		return 0, ErrUnavailable
	}

	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan prefix %s: %w", prefix, err)
	}

	deleted := 0
	for start := 0; start < len(keys); start += deleteBatchSize {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		end := start + deleteBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]
		err := b.db.Update(func(txn *badger.Txn) error {
			for _, k := range batch {
				if err := txn.Delete(k); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return deleted, fmt.Errorf("delete prefix %s: %w", prefix, err)
		}
		deleted += len(batch)
	}
	return deleted, nil
}

// Available implements Backend.
func (b *BadgerBackend) Available(context.Context) bool {
	return !b.db.IsClosed()
}

// RunGC runs value log garbage collection until nothing is left to rewrite.
func (b *BadgerBackend) RunGC(discardRatio float64) error {
	if b.db.IsClosed() {
		return ErrUnavailable
	}
	for {
		err := b.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close implements Backend.
func (b *BadgerBackend) Close() error {
	if !b.owned || b.db.IsClosed() {
		return nil
	}
	return b.db.Close()
}

var _ Backend = (*BadgerBackend)(nil)

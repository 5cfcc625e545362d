// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// memoryEntry is a node in the recency list.
type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
	prev      *memoryEntry
	next      *memoryEntry
}

// MemoryBackend is an in-process TTL cache bounded by entry count.
// When full, the least recently used entry is evicted. Expired entries are
// dropped lazily on read and by a periodic cleanup goroutine.
type MemoryBackend struct {
	mu         sync.Mutex
	items      map[string]*memoryEntry
	head, tail *memoryEntry // head.next is most recent
	maxEntries int
	closed     bool

	stats Stats
	now   func() time.Time
	stop  chan struct{}
	done  chan struct{}
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// NewMemoryBackend creates a memory backend holding at most maxEntries values
// (10000 when maxEntries <= 0). A cleanupInterval <= 0 disables the background
// cleanup goroutine.
func NewMemoryBackend(maxEntries int, cleanupInterval time.Duration) *MemoryBackend {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	m := &MemoryBackend{
		items:      make(map[string]*memoryEntry),
		head:       &memoryEntry{},
		tail:       &memoryEntry{},
		maxEntries: maxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	m.head.next = m.tail
	m.tail.prev = m.head
	m.stats.LastCleanup = m.now()

	if cleanupInterval > 0 {
		go m.cleanupLoop(cleanupInterval)
	} else {
		close(m.done)
	}
	return m
}

// Name implements Backend.
func (m *MemoryBackend) Name() string { return BackendMemory }

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrUnavailable
	}

	e, ok := m.items[key]
	if !ok {
		m.stats.Misses++
		return nil, ErrMiss
	}
	if m.now().After(e.expiresAt) {
		m.removeEntry(e)
		m.stats.Misses++
		m.stats.Evictions++
		return nil, ErrMiss
	}

	m.moveToFront(e)
	m.stats.Hits++
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrUnavailable
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	expiresAt := m.now().Add(ttl)

	if e, ok := m.items[key]; ok {
		e.value = stored
		e.expiresAt = expiresAt
		m.moveToFront(e)
		return nil
	}

	for len(m.items) >= m.maxEntries {
		m.removeEntry(m.tail.prev)
		m.stats.Evictions++
	}

	e := &memoryEntry{key: key, value: stored, expiresAt: expiresAt}
	m.items[key] = e
	m.addToFront(e)
	m.stats.TotalKeys = int64(len(m.items))
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrUnavailable
	}
	for _, key := range keys {
		if e, ok := m.items[key]; ok {
			m.removeEntry(e)
			m.stats.Evictions++
		}
	}
	return nil
}

// DeletePrefix implements Backend.
func (m *MemoryBackend) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrUnavailable
	}
	n := 0
	for key, e := range m.items {
		if strings.HasPrefix(key, prefix) {
			m.removeEntry(e)
			n++
		}
	}
	m.stats.Evictions += int64(n)
	return n, nil
}

// Available implements Backend.
func (m *MemoryBackend) Available(context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Close stops the cleanup goroutine and drops all entries.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.items = make(map[string]*memoryEntry)
	m.head.next = m.tail
	m.tail.prev = m.head
	m.stats.TotalKeys = 0
	m.mu.Unlock()

	select {
	case <-m.done:
	default:
		close(m.stop)
		<-m.done
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// GetStats returns a snapshot of the counters.
func (m *MemoryBackend) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// HitRate returns the hit rate as a percentage.
func (m *MemoryBackend) HitRate() float64 {
	s := m.GetStats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

func (m *MemoryBackend) cleanupLoop(interval time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

// cleanup removes all expired entries and returns how many were removed.
func (m *MemoryBackend) cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for _, e := range m.items {
		if now.After(e.expiresAt) {
			m.removeEntry(e)
			n++
		}
	}
	m.stats.Evictions += int64(n)
	m.stats.LastCleanup = now
	return n
}

// List helpers; callers hold mu.

func (m *MemoryBackend) addToFront(e *memoryEntry) {
	e.prev = m.head
	e.next = m.head.next
	m.head.next.prev = e
	m.head.next = e
}

func (m *MemoryBackend) moveToFront(e *memoryEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	m.addToFront(e)
}

func (m *MemoryBackend) removeEntry(e *memoryEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(m.items, e.key)
	m.stats.TotalKeys = int64(len(m.items))
}

var _ Backend = (*MemoryBackend)(nil)

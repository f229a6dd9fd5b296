package store

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Memory is a concurrency-safe in-memory cache with TTL and size bounds.
// It backs the geocoding and series caches; both are small and short-lived,
// so eviction scans are cheap.
type Memory[V any] struct {
	mu sync.RWMutex

	entries map[string]entry[V]

	maxEntries int           // max number of cached entries (0 = unlimited)
	ttl        time.Duration // max age of an entry (0 = unlimited)

	now func() time.Time
}

// NewMemory creates a cache with optional limits. maxEntries <= 0 means
// unbounded; ttl <= 0 means entries never expire.
func NewMemory[V any](maxEntries int, ttl time.Duration) *Memory[V] {
	return &Memory[V]{
		entries:    make(map[string]entry[V]),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns the cached value for key, if present and not expired.
func (m *Memory[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || m.expired(e, m.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value, evicting the oldest entry when the size bound is hit.
func (m *Memory[V]) Set(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry[V]{value: value, storedAt: m.now()}

	if m.maxEntries > 0 && len(m.entries) > m.maxEntries {
		var (
			oldestKey string
			oldestAt  time.Time
		)
		for k, e := range m.entries {
			if oldestKey == "" || e.storedAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.storedAt
			}
		}
		delete(m.entries, oldestKey)
	}
}

// Prune removes all expired entries and returns how many were dropped.
func (m *Memory[V]) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	dropped := 0
	for k, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, k)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of entries currently held, expired or not.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory[V]) expired(e entry[V], now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.storedAt) > m.ttl
}

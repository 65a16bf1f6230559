package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store backed by a map. It is the
// default backend for a single storefront session: no capacity bound,
// no eviction beyond the freshness check at read time.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration

	// now is injectable for freshness tests.
	now func() time.Time
}

// NewMemoryStore creates an in-memory store with the given freshness
// window. A non-positive ttl falls back to DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves the entry for key.
// Returns ErrCacheMiss if the key is absent or the entry is stale.
func (s *MemoryStore) Get(_ context.Context, key Key) (*Entry, error) {
	cacheKey := key.String()

	s.mu.RLock()
	entry, ok := s.entries[cacheKey]
	s.mu.RUnlock()

	if !ok {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	if !entry.Fresh(s.now(), s.ttl) {
		// Stale entries are dropped so the map stays bounded by the
		// live key set.
		s.mu.Lock()
		delete(s.entries, cacheKey)
		s.mu.Unlock()

		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("memory").Inc()
	return &entry, nil
}

// Set stores payload under key, overwriting any existing entry and
// stamping it with the current time.
func (s *MemoryStore) Set(_ context.Context, key Key, payload []byte) error {
	cacheKey := key.String()

	s.mu.Lock()
	s.entries[cacheKey] = Entry{
		Payload:   payload,
		FetchedAt: s.now(),
	}
	s.mu.Unlock()

	CacheWrittenBytes.WithLabelValues("memory").Add(float64(len(payload)))
	return nil
}

// Delete removes the entry for key. Deleting an absent key is a no-op.
func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	delete(s.entries, key.String())
	s.mu.Unlock()
	return nil
}

// Len returns the number of live entries (stale entries included until
// the next Get touches them).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// SetClock replaces the time source (for testing).
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

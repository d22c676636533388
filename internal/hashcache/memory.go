package hashcache

import (
	"context"
	"sync"
)

// MemoryCache is an in-memory Cache for tests and for runs with the
// persistent cache disabled. Entries do not survive the process.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Entry)}
}

// Lookup returns the entry for path, or (nil, nil) when absent.
func (m *MemoryCache) Lookup(_ context.Context, path string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[path]
	if !ok {
		return nil, nil
	}
	copied := entry
	return &copied, nil
}

// Upsert stores a copy of entry keyed by its path.
func (m *MemoryCache) Upsert(_ context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Path] = *entry
	return nil
}

// Prune drops entries whose path is not in existing.
func (m *MemoryCache) Prune(_ context.Context, existing map[string]struct{}) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pruned int64
	for path := range m.entries {
		if _, ok := existing[path]; !ok {
			delete(m.entries, path)
			pruned++
		}
	}
	return pruned, nil
}

// Len reports the number of stored entries.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close is a no-op for the in-memory cache.
func (m *MemoryCache) Close() error {
	return nil
}

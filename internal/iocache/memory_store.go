package iocache

import (
	"maps"
	"sync"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"
)

// MemoryStore is an in-process CacheStore used by tests and dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]schema.CacheEntry
}

var _ contract.CacheStore = &MemoryStore{} // Compile-time check

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]schema.CacheEntry)}
}

// Get retrieves a value by key from the store.
func (ms *MemoryStore) Get(key string) ([]byte, int, int64, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	e, ok := ms.entries[key]
	if !ok {
		return nil, 0, 0, ErrNotFound
	}
	return e.Value, e.Version, e.Timestamp, nil
}

// Set inserts or replaces a key/value pair in the store.
func (ms *MemoryStore) Set(key string, value []byte, version int, timestamp int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.entries[key] = schema.CacheEntry{Value: value, Version: version, Timestamp: timestamp}
	return nil
}

// Entries returns a copy of every stored entry.
func (ms *MemoryStore) Entries() (map[string]schema.CacheEntry, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return maps.Clone(ms.entries), nil
}

// Replace swaps the whole content of the store.
func (ms *MemoryStore) Replace(entries map[string]schema.CacheEntry) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.entries = maps.Clone(entries)
	if ms.entries == nil {
		ms.entries = make(map[string]schema.CacheEntry)
	}
	return nil
}

// GetStatus returns status information about the memory store.
func (ms *MemoryStore) GetStatus() (schema.CacheStatus, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	status := schema.CacheStatus{Backend: "memory", Connected: true, TotalEntries: len(ms.entries)}
	timestamps := make([]int64, 0, len(ms.entries))
	for _, e := range ms.entries {
		timestamps = append(timestamps, e.Timestamp)
	}
	fillTimeRange(&status, timestamps)
	return status, nil
}

// Close implements the CacheStore interface.
func (ms *MemoryStore) Close() error { return nil }

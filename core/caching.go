package core

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"
)

// healthCacheVersion defines the version of the cached bundle schema
const healthCacheVersion = 1

// cachedBundle is the value stored under a join key in the health cache.
type cachedBundle struct {
	Bundle    schema.HealthBundle `json:"bundle"`
	FetchedAt time.Time           `json:"fetched_at"`
}

// HealthCache is the in-memory view of the durable health store for one run.
// It is read once with Load and written once with Flush.
type HealthCache struct {
	now     time.Time
	entries map[string]schema.CacheEntry
	hits    int
}

// NewHealthCache returns an empty cache that judges freshness against now.
func NewHealthCache(now time.Time) *HealthCache {
	return &HealthCache{now: now, entries: make(map[string]schema.CacheEntry)}
}

// IsFresh reports whether a bundle fetched at fetchedAt is still within the TTL at now.
func IsFresh(fetchedAt, now time.Time) bool {
	return !fetchedAt.IsZero() && now.Sub(fetchedAt) < schema.HealthTTL
}

// Load reads every entry of the store once. An unreadable store leaves the cache empty.
func (c *HealthCache) Load(store contract.CacheStore) {
	if store == nil {
		return
	}
	entries, err := store.Entries()
	if err != nil {
		contract.LogWarn("Health cache unreadable, starting empty", err)
		return
	}
	maps.Copy(c.entries, entries)
}

// Get returns the cached bundle for key when it is decodable, of the current version and fresh.
func (c *HealthCache) Get(key string) (schema.HealthBundle, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return schema.HealthBundle{}, false
	}
	cached, ok := c.decode(entry)
	if !ok {
		return schema.HealthBundle{}, false
	}
	c.hits++
	return cached.Bundle, true
}

// decode returns the bundle of an entry that is of the current version and still fresh.
func (c *HealthCache) decode(entry schema.CacheEntry) (cachedBundle, bool) {
	if entry.Version != healthCacheVersion {
		return cachedBundle{}, false
	}
	var cached cachedBundle
	if err := json.Unmarshal(entry.Value, &cached); err != nil {
		return cachedBundle{}, false
	}
	if !IsFresh(cached.FetchedAt, c.now) {
		return cachedBundle{}, false
	}
	return cached, true
}

// Put buffers a freshly built bundle until Flush.
func (c *HealthCache) Put(key string, bundle schema.HealthBundle, fetchedAt time.Time) error {
	data, err := json.Marshal(cachedBundle{Bundle: bundle, FetchedAt: fetchedAt.UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode health bundle for %s: %w", key, err)
	}
	c.entries[key] = schema.CacheEntry{Value: data, Version: healthCacheVersion, Timestamp: fetchedAt.Unix()}
	return nil
}

// Flush writes the loaded entries plus every buffered update back to the store.
// Entries that could no longer be served (stale, undecodable or of an old version)
// are dropped.
func (c *HealthCache) Flush(store contract.CacheStore) error {
	if store == nil {
		return nil
	}
	kept := make(map[string]schema.CacheEntry, len(c.entries))
	for key, entry := range c.entries {
		if _, ok := c.decode(entry); ok {
			kept[key] = entry
		}
	}
	if err := store.Replace(kept); err != nil {
		return fmt.Errorf("failed to flush health cache: %w", err)
	}
	return nil
}

// Hits returns how many Get calls were served from the cache.
func (c *HealthCache) Hits() int { return c.hits }

// Len returns the number of entries held, stale ones included.
func (c *HealthCache) Len() int { return len(c.entries) }

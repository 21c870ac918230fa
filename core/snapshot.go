package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"
)

// snapshotVersion defines the version of the stored snapshot entry schema
const snapshotVersion = 1

// Snapshot holds the metrics of the previous run and collects those of the current one.
// The stored snapshot is replaced wholesale on Flush, so entities absent from a run drop out.
type Snapshot struct {
	previous map[string]schema.SnapshotEntry
	current  map[string]schema.SnapshotEntry
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		previous: make(map[string]schema.SnapshotEntry),
		current:  make(map[string]schema.SnapshotEntry),
	}
}

// Load reads the previous run's snapshot once. Undecodable entries are skipped and an
// unreadable store leaves the snapshot empty, which makes every entity a first sighting.
func (s *Snapshot) Load(store contract.CacheStore) {
	if store == nil {
		return
	}
	entries, err := store.Entries()
	if err != nil {
		contract.LogWarn("Metrics snapshot unreadable, starting empty", err)
		return
	}
	skipped := 0
	for key, e := range entries {
		var entry schema.SnapshotEntry
		if e.Version != snapshotVersion || json.Unmarshal(e.Value, &entry) != nil {
			skipped++
			continue
		}
		s.previous[key] = entry
	}
	if skipped > 0 {
		contract.LogWarn("Skipped unreadable snapshot entries", fmt.Errorf("%d of %d entries", skipped, len(entries)))
	}
}

// Get returns the previous entry for key, or nil on a first sighting.
func (s *Snapshot) Get(key string) *schema.SnapshotEntry {
	entry, ok := s.previous[key]
	if !ok {
		return nil
	}
	return &entry
}

// Record buffers the current metrics of key.
func (s *Snapshot) Record(key string, metrics schema.Metrics, now time.Time) {
	s.current[key] = schema.SnapshotEntry{Metrics: metrics, FetchedAt: now.UTC()}
}

// Len returns the number of previous entries.
func (s *Snapshot) Len() int { return len(s.previous) }

// Flush replaces the stored snapshot with the metrics recorded during this run.
func (s *Snapshot) Flush(store contract.CacheStore) error {
	if store == nil {
		return nil
	}
	entries := make(map[string]schema.CacheEntry, len(s.current))
	for key, entry := range s.current {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to encode snapshot entry for %s: %w", key, err)
		}
		entries[key] = schema.CacheEntry{Value: data, Version: snapshotVersion, Timestamp: entry.FetchedAt.Unix()}
	}
	if err := store.Replace(entries); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}

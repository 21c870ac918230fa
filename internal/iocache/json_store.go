package iocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"
)

// jsonRecord is the on-disk shape of one entry. Values must be valid JSON.
type jsonRecord struct {
	Value     json.RawMessage `json:"value"`
	Version   int             `json:"version"`
	Timestamp int64           `json:"timestamp"`
}

// JSONStore keeps every entry in one flat JSON mapping on disk.
// The file is read on every call, so concurrent processes see each other's writes.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

var _ contract.CacheStore = &JSONStore{} // Compile-time check

// NewJSONStore returns a store backed by the file at path. The file is created on first write.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// read loads the mapping. A missing file is an empty store.
func (js *JSONStore) read() (map[string]jsonRecord, error) {
	data, err := os.ReadFile(js.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]jsonRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", js.path, err)
	}
	records := map[string]jsonRecord{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("corrupt JSON store %s: %w", js.path, err)
	}
	return records, nil
}

// write replaces the file through a temp file and rename.
func (js *JSONStore) write(records map[string]jsonRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON store: %w", err)
	}
	if dir := filepath.Dir(js.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	tmp := js.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	return os.Rename(tmp, js.path)
}

func toRecord(value []byte, version int, timestamp int64) (jsonRecord, error) {
	if !json.Valid(value) {
		return jsonRecord{}, fmt.Errorf("JSON store values must be valid JSON")
	}
	return jsonRecord{Value: json.RawMessage(value), Version: version, Timestamp: timestamp}, nil
}

// Get retrieves a value by key from the store.
func (js *JSONStore) Get(key string) ([]byte, int, int64, error) {
	js.mu.Lock()
	defer js.mu.Unlock()

	records, err := js.read()
	if err != nil {
		return nil, 0, 0, err
	}
	rec, ok := records[key]
	if !ok {
		return nil, 0, 0, ErrNotFound
	}
	return []byte(rec.Value), rec.Version, rec.Timestamp, nil
}

// Set inserts or replaces a key/value pair in the store.
func (js *JSONStore) Set(key string, value []byte, version int, timestamp int64) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	rec, err := toRecord(value, version, timestamp)
	if err != nil {
		return err
	}
	records, err := js.read()
	if err != nil {
		// Overwrite a corrupt file rather than failing forever
		records = map[string]jsonRecord{}
	}
	records[key] = rec
	return js.write(records)
}

// Entries returns every stored entry.
func (js *JSONStore) Entries() (map[string]schema.CacheEntry, error) {
	js.mu.Lock()
	defer js.mu.Unlock()

	records, err := js.read()
	if err != nil {
		return nil, err
	}
	entries := make(map[string]schema.CacheEntry, len(records))
	for k, rec := range records {
		entries[k] = schema.CacheEntry{Value: []byte(rec.Value), Version: rec.Version, Timestamp: rec.Timestamp}
	}
	return entries, nil
}

// Replace rewrites the file with exactly the given entries.
func (js *JSONStore) Replace(entries map[string]schema.CacheEntry) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	records := make(map[string]jsonRecord, len(entries))
	for k, e := range entries {
		rec, err := toRecord(e.Value, e.Version, e.Timestamp)
		if err != nil {
			return fmt.Errorf("key %s: %w", k, err)
		}
		records[k] = rec
	}
	return js.write(records)
}

// GetStatus returns status information about the JSON store.
func (js *JSONStore) GetStatus() (schema.CacheStatus, error) {
	js.mu.Lock()
	defer js.mu.Unlock()

	status := schema.CacheStatus{Backend: string(schema.JSONBackend), Connected: true}
	records, err := js.read()
	if err != nil {
		return status, err
	}
	status.TotalEntries = len(records)
	timestamps := make([]int64, 0, len(records))
	for _, rec := range records {
		timestamps = append(timestamps, rec.Timestamp)
	}
	fillTimeRange(&status, timestamps)
	if info, err := os.Stat(js.path); err == nil {
		status.TableSizeBytes = info.Size()
	}
	return status, nil
}

// Close is a no-op; the file is not held open.
func (js *JSONStore) Close() error { return nil }

// Path returns the backing file path.
func (js *JSONStore) Path() string { return js.path }

// fillTimeRange sets the newest and oldest entry times.
func fillTimeRange(status *schema.CacheStatus, timestamps []int64) {
	if len(timestamps) == 0 {
		return
	}
	minTs, maxTs := timestamps[0], timestamps[0]
	for _, ts := range timestamps[1:] {
		minTs = min(minTs, ts)
		maxTs = max(maxTs, ts)
	}
	status.LastEntryTime = time.Unix(maxTs, 0)
	status.OldestEntryTime = time.Unix(minTs, 0)
}

package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repodex/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateTableName tests the validateTableName function with various inputs.
func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"valid simple name", "test_table", false},
		{"valid name with numbers", "test_table_123", false},
		{"valid name starting with underscore", "_test_table", false},
		{"valid mixed case", "TestTable_123", false},
		{"health table", HealthTable, false},
		{"empty name", "", true},
		{"starts with number", "123_table", true},
		{"contains dash", "test-table", true},
		{"contains space", "test table", true},
		{"sql injection attempt", "test'; DROP TABLE users; --", true},
		{"contains dot", "test.table", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err, "validateTableName should error for %q", tt.tableName)
			} else {
				assert.NoError(t, err, "validateTableName should not error for %q", tt.tableName)
			}
		})
	}
}

// TestQuoteTableName tests the quoteTableName function for all backends.
func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
	}{
		{schema.SQLiteBackend, `"repodex_snapshot"`},
		{schema.MySQLBackend, "`repodex_snapshot`"},
		{schema.PostgreSQLBackend, `"repodex_snapshot"`},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			assert.Equal(t, tt.want, quoteTableName(SnapshotTable, tt.backend))
		})
	}
}

func TestSQLiteBackendOperations(t *testing.T) {
	newStore := func(t *testing.T) *CacheStoreImpl {
		t.Helper()
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err, "Failed to create SQLite store")
		t.Cleanup(func() { _ = store.Close() })
		return store.(*CacheStoreImpl)
	}

	t.Run("set and get operations", func(t *testing.T) {
		store := newStore(t)

		err := store.Set("github:a/b", []byte(`{"health_score":0.7}`), 1, 1234567890)
		assert.NoError(t, err, "Set should not fail")

		value, version, timestamp, err := store.Get("github:a/b")
		assert.NoError(t, err, "Get should not fail")
		assert.Equal(t, `{"health_score":0.7}`, string(value))
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(1234567890), timestamp)
	})

	t.Run("upsert behavior", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Set("k", []byte("initial_value"), 1, 1000))
		require.NoError(t, store.Set("k", []byte("updated_value"), 2, 2000))

		value, version, timestamp, err := store.Get("k")
		assert.NoError(t, err)
		assert.Equal(t, "updated_value", string(value), "After upsert, value mismatch")
		assert.Equal(t, 2, version, "After upsert, version mismatch")
		assert.Equal(t, int64(2000), timestamp, "After upsert, timestamp mismatch")
	})

	t.Run("get non-existent key", func(t *testing.T) {
		store := newStore(t)
		_, _, _, err := store.Get("non_existent_key")
		assert.Equal(t, sql.ErrNoRows, err, "Get non-existent key should return sql.ErrNoRows")
	})

	t.Run("entries and replace", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("stale", []byte("x"), 1, 10))

		replacement := map[string]schema.CacheEntry{
			"github:a/b":    {Value: []byte("1"), Version: 1, Timestamp: 100},
			"huggingface:m": {Value: []byte("2"), Version: 1, Timestamp: 200},
		}
		require.NoError(t, store.Replace(replacement))

		entries, err := store.Entries()
		require.NoError(t, err)
		assert.Equal(t, replacement, entries, "Replace should drop keys absent from the new content")
	})

	t.Run("replace with empty map clears table", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("k", []byte("x"), 1, 10))
		require.NoError(t, store.Replace(map[string]schema.CacheEntry{}))

		entries, err := store.Entries()
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestTwoTablesShareSQLiteFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	health, err := NewCacheStore(HealthTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = health.Close() }()
	snapshot, err := NewCacheStore(SnapshotTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = snapshot.Close() }()

	require.NoError(t, health.Set("k", []byte("health"), 1, 1))
	require.NoError(t, snapshot.Set("k", []byte("snapshot"), 1, 1))

	value, _, _, err := health.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "health", string(value))
	value, _, _, err = snapshot.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "snapshot", string(value))
}

// TestGetPlaceholder tests the getPlaceholder method for different backends.
func TestGetPlaceholder(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
	}{
		{schema.SQLiteBackend, "?"},
		{schema.MySQLBackend, "?"},
		{schema.PostgreSQLBackend, "$1"},
		{schema.NoneBackend, "?"},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			store := &CacheStoreImpl{backend: tt.backend}
			assert.Equal(t, tt.want, store.getPlaceholder(), "getPlaceholder()")
		})
	}
}

// TestGetUpsertQuery tests the getUpsertQuery method for different backends.
func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		backend      schema.DatabaseBackend
		wantContains []string
	}{
		{schema.SQLiteBackend, []string{"INSERT OR REPLACE", `"test_table"`}},
		{schema.MySQLBackend, []string{"INSERT INTO", "ON DUPLICATE KEY UPDATE", "`test_table`"}},
		{schema.PostgreSQLBackend, []string{"INSERT INTO", "ON CONFLICT", "DO UPDATE SET", `"test_table"`, "$1", "$4"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			store := &CacheStoreImpl{backend: tt.backend, tableName: "test_table"}
			got := store.getUpsertQuery()
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want, "getUpsertQuery() should contain %q", want)
			}
		})
	}
}

// TestGetCreateTableQuery tests the getCreateTableQuery function for different backends.
func TestGetCreateTableQuery(t *testing.T) {
	tests := []struct {
		backend      schema.DatabaseBackend
		wantContains []string
	}{
		{schema.SQLiteBackend, []string{"CREATE TABLE IF NOT EXISTS", "BLOB", "INTEGER"}},
		{schema.MySQLBackend, []string{"CREATE TABLE IF NOT EXISTS", "MEDIUMBLOB", "VARCHAR(255)"}},
		{schema.PostgreSQLBackend, []string{"CREATE TABLE IF NOT EXISTS", "BYTEA", "BIGINT"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			got := getCreateTableQuery("test_table", tt.backend)
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestNewCacheStoreErrors(t *testing.T) {
	t.Run("invalid table name", func(t *testing.T) {
		_, err := NewCacheStore("bad-name", schema.SQLiteBackend, ":memory:")
		assert.Error(t, err)
	})

	t.Run("unsupported backend", func(t *testing.T) {
		_, err := NewCacheStore("test_table", schema.DatabaseBackend("redis"), "")
		assert.ErrorContains(t, err, "unsupported cache backend")
	})

	t.Run("unreachable mysql", func(t *testing.T) {
		_, err := NewCacheStore("test_table", schema.MySQLBackend, "invalid://connection")
		assert.Error(t, err)
	})
}

func TestNoneBackendOperations(t *testing.T) {
	store, err := NewCacheStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err, "Failed to create none backend store")

	_, _, _, err = store.Get("test_key")
	assert.Error(t, err, "Expected error from Get on none backend")

	assert.NoError(t, store.Set("test_key", []byte("test_value"), 1, 123456789), "Set should not error on none backend")

	_, _, _, err = store.Get("test_key")
	assert.Error(t, err, "Expected error from Get after Set on none backend")

	entries, err := store.Entries()
	assert.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, store.Replace(map[string]schema.CacheEntry{"k": {Value: []byte("1")}}))

	assert.NoError(t, store.Close(), "Close should not error on none backend")
}

func TestJSONStore(t *testing.T) {
	t.Run("persists across instances", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "health.json")

		first := NewJSONStore(path)
		require.NoError(t, first.Set("github:a/b", []byte(`{"x":1}`), 1, 500))

		second := NewJSONStore(path)
		value, version, ts, err := second.Get("github:a/b")
		require.NoError(t, err)
		assert.JSONEq(t, `{"x":1}`, string(value))
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(500), ts)
	})

	t.Run("missing key and missing file", func(t *testing.T) {
		store := NewJSONStore(filepath.Join(t.TempDir(), "none.json"))
		_, _, _, err := store.Get("k")
		assert.ErrorIs(t, err, ErrNotFound)

		entries, err := store.Entries()
		assert.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("rejects non JSON values", func(t *testing.T) {
		store := NewJSONStore(filepath.Join(t.TempDir(), "s.json"))
		assert.Error(t, store.Set("k", []byte("not json"), 1, 1))
		assert.Error(t, store.Replace(map[string]schema.CacheEntry{"k": {Value: []byte("{")}}))
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "s.json")
		require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o644))
		store := NewJSONStore(path)

		_, err := store.Entries()
		assert.ErrorContains(t, err, "corrupt JSON store")

		// A write recovers the file
		require.NoError(t, store.Set("k", []byte(`"v"`), 1, 1))
		entries, err := store.Entries()
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("replace and status", func(t *testing.T) {
		store := NewJSONStore(filepath.Join(t.TempDir(), "s.json"))
		require.NoError(t, store.Set("old", []byte("1"), 1, 1))
		require.NoError(t, store.Replace(map[string]schema.CacheEntry{
			"a": {Value: []byte("1"), Version: 1, Timestamp: 3000},
			"b": {Value: []byte("2"), Version: 1, Timestamp: 1000},
		}))

		entries, err := store.Entries()
		require.NoError(t, err)
		assert.NotContains(t, entries, "old")

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "json", status.Backend)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, time.Unix(3000, 0), status.LastEntryTime)
		assert.Equal(t, time.Unix(1000, 0), status.OldestEntryTime)
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})

	t.Run("factory uses connection string as path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "snap.json")
		store, err := NewCacheStore(SnapshotTable, schema.JSONBackend, path)
		require.NoError(t, err)
		assert.Equal(t, path, store.(*JSONStore).Path())
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	_, _, _, err := store.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("k", []byte("v"), 2, 20))
	value, version, ts, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(value))
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(20), ts)

	entries, err := store.Entries()
	require.NoError(t, err)
	delete(entries, "k")
	_, _, _, err = store.Get("k")
	assert.NoError(t, err, "Entries should return a copy")

	require.NoError(t, store.Replace(nil))
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalEntries)
}

// TestCacheStoreGetStatus tests the GetStatus method for different backends.
func TestCacheStoreGetStatus(t *testing.T) {
	t.Run("SQLite backend with data", func(t *testing.T) {
		store, err := NewCacheStore("test_status_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		for key, ts := range map[string]int64{"key1": 1000, "key2": 2000, "key3": 1500} {
			require.NoError(t, store.Set(key, []byte("value"), 1, ts))
		}

		status, err := store.GetStatus()
		assert.NoError(t, err, "GetStatus should not fail")
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Equal(t, 3, status.TotalEntries)
		assert.Equal(t, time.Unix(2000, 0), status.LastEntryTime)
		assert.Equal(t, time.Unix(1000, 0), status.OldestEntryTime)
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})

	t.Run("SQLite backend empty", func(t *testing.T) {
		store, err := NewCacheStore("test_empty_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		assert.NoError(t, err)
		assert.Equal(t, 0, status.TotalEntries)
		assert.True(t, status.LastEntryTime.IsZero())
		assert.Equal(t, int64(0), status.TableSizeBytes)
	})

	t.Run("None backend", func(t *testing.T) {
		store, err := NewCacheStore("test_none", schema.NoneBackend, "")
		require.NoError(t, err)

		status, err := store.GetStatus()
		assert.NoError(t, err)
		assert.Equal(t, "none", status.Backend)
		assert.False(t, status.Connected)
	})
}

func TestCacheStoreImplWithNilDB(t *testing.T) {
	store := &CacheStoreImpl{tableName: "test", backend: schema.SQLiteBackend}
	_, _, _, err := store.Get("k")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	assert.NoError(t, store.Close())
}

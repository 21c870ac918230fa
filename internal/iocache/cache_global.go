package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"
)

// Table names for the key/value stores.
const (
	HealthTable   = "repodex_health_cache"
	SnapshotTable = "repodex_snapshot"
)

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// StoreOptions selects the backend and connection of each store.
// An empty backend leaves that store uninitialized.
type StoreOptions struct {
	CacheBackend      schema.DatabaseBackend
	CacheDBConnect    string
	SnapshotBackend   schema.DatabaseBackend
	SnapshotDBConnect string
	RunsBackend       schema.DatabaseBackend
	RunsDBConnect     string
}

// StoreOptionsFromConfig extracts store settings from the validated config.
func StoreOptionsFromConfig(cfg *contract.Config) StoreOptions {
	return StoreOptions{
		CacheBackend:      cfg.CacheBackend,
		CacheDBConnect:    cfg.CacheDBConnect,
		SnapshotBackend:   cfg.SnapshotBackend,
		SnapshotDBConnect: cfg.SnapshotDBConnect,
		RunsBackend:       cfg.RunsBackend,
		RunsDBConnect:     cfg.RunsDBConnect,
	}
}

// GetDBFilePath returns the path to the SQLite DB file for the key/value stores.
func GetDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run history.
func GetRunsDBFilePath() string {
	return contract.GetRunsDBFilePath()
}

// InitStores initializes the global manager with the health cache, snapshot and run stores.
func InitStores(opts StoreOptions) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		var opened []interface{ Close() error }
		fail := func(err error) {
			for _, s := range opened {
				_ = s.Close()
			}
			initErr = err
		}

		var health, snapshot contract.CacheStore
		var runs contract.RunStore
		var err error

		if opts.CacheBackend != "" {
			if health, err = NewCacheStore(HealthTable, opts.CacheBackend, opts.CacheDBConnect); err != nil {
				fail(fmt.Errorf("failed to initialize health cache: %w", err))
				return
			}
			opened = append(opened, health)
		}

		if opts.SnapshotBackend != "" {
			if snapshot, err = NewCacheStore(SnapshotTable, opts.SnapshotBackend, opts.SnapshotDBConnect); err != nil {
				fail(fmt.Errorf("failed to initialize snapshot store: %w", err))
				return
			}
			opened = append(opened, snapshot)
		}

		if opts.RunsBackend != "" {
			if runs, err = NewRunStore(opts.RunsBackend, opts.RunsDBConnect); err != nil {
				fail(fmt.Errorf("failed to initialize run store: %w", err))
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.health = health
		Manager.snapshot = snapshot
		Manager.runs = runs
	})

	return initErr
}

// CloseCaching should be called on application shutdown.
func CloseCaching() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.health != nil {
			_ = Manager.health.Close()
		}
		if Manager.snapshot != nil {
			_ = Manager.snapshot.Close()
		}
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// ClearStore removes every entry of a key/value store.
// SQL backends drop the table, since the health cache and snapshot may share a SQLite file.
// The JSON backend deletes its file. NoneBackend does nothing.
func ClearStore(table string, backend schema.DatabaseBackend, connStr string) error {
	if err := validateTableName(table); err != nil {
		return err
	}
	switch backend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, GetDBFilePath(), table)

	case schema.JSONBackend:
		path := connStr
		if path == "" {
			path = contract.GetJSONStoreFilePath(table)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove JSON store %s: %w", path, err)
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// ClearRuns clears the run history for the specified backend.
// For SQLite, it deletes the database file. For MySQL/PostgreSQL, it drops the run tables
// together with the migration bookkeeping.
func ClearRuns(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		dbFilePath := connStr
		if dbFilePath == "" {
			dbFilePath = GetRunsDBFilePath()
		}
		if err := os.Remove(dbFilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, "", runsTable, projectScoresTable, "schema_migrations")

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported runs backend for clearing: %s", backend)
	}
}

// clearSQLTables connects to the SQL database and drops the tables if they exist.
func clearSQLTables(backend schema.DatabaseBackend, connStr, defaultPath string, tables ...string) error {
	db, _, err := openDB(backend, connStr, defaultPath)
	if err != nil {
		return err
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	for _, table := range tables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}

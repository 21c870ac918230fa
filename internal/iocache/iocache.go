// Package iocache is for durable key/value stores and run history.
package iocache

import (
	"database/sql"
	"sync"

	"github.com/huangsam/repodex/internal/contract"
)

// ErrNotFound is returned by Get when a key is absent. It aliases sql.ErrNoRows so that
// SQL and file-backed stores report misses the same way.
var ErrNotFound = sql.ErrNoRows

// CacheStoreManager manages the health cache, metrics snapshot and run stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	health       contract.CacheStore
	snapshot     contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager wires already opened stores into a manager.
func NewCacheStoreManager(health, snapshot contract.CacheStore, runs contract.RunStore) *CacheStoreManager {
	return &CacheStoreManager{health: health, snapshot: snapshot, runs: runs}
}

// GetHealthStore returns the health cache store.
func (mgr *CacheStoreManager) GetHealthStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.health
}

// GetSnapshotStore returns the metrics snapshot store.
func (mgr *CacheStoreManager) GetSnapshotStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshot
}

// GetRunStore returns the run-history store.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}

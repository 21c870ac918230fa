// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/repodex/schema"
)

// ErrSignalUnavailable is returned by an ActivitySource when it has no data for a sub-signal.
var ErrSignalUnavailable = errors.New("signal unavailable")

// ActivitySource supplies the GitHub activity counters that feed the health scorer.
// Each method is independent so that one failing sub-signal never hides the others.
// This allows the health logic to be tested without network access.
type ActivitySource interface {
	// Commits returns the last push time and commit counts for the 30/90-day windows.
	Commits(ctx context.Context, fullName string) (schema.CommitActivity, error)

	// Release returns the latest published release, if any.
	Release(ctx context.Context, fullName string) (schema.ReleaseInfo, error)

	// Contributors returns the 30/90-day author logins and an all-time contributor sample.
	Contributors(ctx context.Context, fullName string) (schema.ContributorActivity, error)

	// PullRequests returns merged pull requests in the last 60 days.
	PullRequests(ctx context.Context, fullName string) (schema.PullRequestActivity, error)

	// Issues returns opened and closed issue counts in the last 60 days.
	Issues(ctx context.Context, fullName string) (schema.IssueActivity, error)
}

// Embedder turns a batch of texts into vectors, preserving order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetHealthStore() CacheStore
	GetSnapshotStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for key/value data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error

	// Entries returns every stored row keyed by cache key.
	Entries() (map[string]schema.CacheEntry, error)

	// Replace atomically swaps the whole content of the store.
	Replace(entries map[string]schema.CacheEntry) error

	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking build runs and storing per-project scores.
type RunStore interface {
	// BeginRun records a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (string, error)

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, totalProjects int) error

	// RecordProjectScores stores the final scores of one project
	RecordProjectScores(runID string, record schema.ProjectScoreRecord) error

	// GetAllRuns returns every recorded run ordered by start time
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllProjectScores returns every recorded project score row
	GetAllProjectScores() ([]schema.ProjectScoreRecord, error)

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunsStatus, error)

	// Close closes the underlying connection
	Close() error
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"
)

// activityRecord is the per-repository entry of an activity file. A nil field
// means the fetcher could not obtain that sub-signal.
type activityRecord struct {
	Commits      *schema.CommitActivity      `json:"commits"`
	Release      *schema.ReleaseInfo         `json:"release"`
	Contributors *schema.ContributorActivity `json:"contributors"`
	PullRequests *schema.PullRequestActivity `json:"pull_requests"`
	Issues       *schema.IssueActivity       `json:"issues"`
}

// FileActivitySource serves activity counters captured to a JSON file keyed by full name.
type FileActivitySource struct {
	records map[string]activityRecord
}

var _ contract.ActivitySource = &FileActivitySource{} // Compile-time check

// LoadActivity reads an activity file. An empty path yields a source with no data.
func LoadActivity(path string) (*FileActivitySource, error) {
	src := &FileActivitySource{records: make(map[string]activityRecord)}
	if path == "" {
		return src, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading activity: %w", err)
	}
	if err := json.Unmarshal(data, &src.records); err != nil {
		return nil, fmt.Errorf("parsing activity %s: %w", path, err)
	}
	return src, nil
}

// Len returns the number of repositories with activity data.
func (s *FileActivitySource) Len() int { return len(s.records) }

// lookup returns a sub-signal of a repository, or ErrSignalUnavailable.
func lookup[T any](ctx context.Context, s *FileActivitySource, fullName string, pick func(activityRecord) *T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	rec, ok := s.records[fullName]
	if !ok {
		return zero, fmt.Errorf("no activity for %s: %w", fullName, contract.ErrSignalUnavailable)
	}
	v := pick(rec)
	if v == nil {
		return zero, contract.ErrSignalUnavailable
	}
	return *v, nil
}

// Commits returns the commit sub-signal.
func (s *FileActivitySource) Commits(ctx context.Context, fullName string) (schema.CommitActivity, error) {
	return lookup(ctx, s, fullName, func(r activityRecord) *schema.CommitActivity { return r.Commits })
}

// Release returns the release sub-signal.
func (s *FileActivitySource) Release(ctx context.Context, fullName string) (schema.ReleaseInfo, error) {
	return lookup(ctx, s, fullName, func(r activityRecord) *schema.ReleaseInfo { return r.Release })
}

// Contributors returns the contributor sub-signal.
func (s *FileActivitySource) Contributors(ctx context.Context, fullName string) (schema.ContributorActivity, error) {
	return lookup(ctx, s, fullName, func(r activityRecord) *schema.ContributorActivity { return r.Contributors })
}

// PullRequests returns the pull-request sub-signal.
func (s *FileActivitySource) PullRequests(ctx context.Context, fullName string) (schema.PullRequestActivity, error) {
	return lookup(ctx, s, fullName, func(r activityRecord) *schema.PullRequestActivity { return r.PullRequests })
}

// Issues returns the issue sub-signal.
func (s *FileActivitySource) Issues(ctx context.Context, fullName string) (schema.IssueActivity, error) {
	return lookup(ctx, s, fullName, func(r activityRecord) *schema.IssueActivity { return r.Issues })
}

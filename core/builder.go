package core

import (
	"context"
	"time"

	"github.com/huangsam/repodex/core/algo"
	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"
)

// Signal is the outcome of one best-effort sub-signal fetch: a value or the reason it is missing.
type Signal[T any] struct {
	Value T
	Err   error
}

// SignalOf wraps a value/error pair as returned by an ActivitySource method.
func SignalOf[T any](value T, err error) Signal[T] {
	return Signal[T]{Value: value, Err: err}
}

// OK reports whether the signal carries a value.
func (s Signal[T]) OK() bool { return s.Err == nil }

// Or returns the value, or fallback when the signal is missing.
func (s Signal[T]) Or(fallback T) T {
	if s.Err != nil {
		return fallback
	}
	return s.Value
}

// missingSignal is the state of every sub-signal before it is fetched.
func missingSignal[T any]() Signal[T] {
	var zero T
	return Signal[T]{Value: zero, Err: contract.ErrSignalUnavailable}
}

// HealthBuilder assembles the health bundle of one GitHub repository from independent sub-signals.
// A failed sub-signal is logged and replaced by its default, so Build always returns a bundle.
type HealthBuilder struct {
	ctx    context.Context
	source contract.ActivitySource
	entity schema.Entity
	key    string

	commits      Signal[schema.CommitActivity]
	release      Signal[schema.ReleaseInfo]
	contributors Signal[schema.ContributorActivity]
	pulls        Signal[schema.PullRequestActivity]
	issues       Signal[schema.IssueActivity]
}

// NewHealthBuilder is the starting point for building a health bundle.
// A nil source leaves every sub-signal missing.
func NewHealthBuilder(ctx context.Context, source contract.ActivitySource, entity schema.Entity) *HealthBuilder {
	return &HealthBuilder{
		ctx:          ctx,
		source:       source,
		entity:       entity,
		key:          schema.JoinKey(entity),
		commits:      missingSignal[schema.CommitActivity](),
		release:      missingSignal[schema.ReleaseInfo](),
		contributors: missingSignal[schema.ContributorActivity](),
		pulls:        missingSignal[schema.PullRequestActivity](),
		issues:       missingSignal[schema.IssueActivity](),
	}
}

// fetch runs one sub-signal call and logs a failure against the item.
func fetch[T any](b *HealthBuilder, name schema.SignalName, call func(context.Context, string) (T, error)) Signal[T] {
	value, err := call(b.ctx, b.entity.FullName)
	s := SignalOf(value, err)
	if s.Err != nil {
		contract.LogItemWarn(b.key, string(name), s.Err)
	}
	return s
}

// FetchCommits pulls the last push time and the 30/90-day commit counts.
func (b *HealthBuilder) FetchCommits() *HealthBuilder {
	if b.source != nil {
		b.commits = fetch(b, schema.CommitsSignal, b.source.Commits)
	}
	return b
}

// FetchRelease pulls the latest release.
func (b *HealthBuilder) FetchRelease() *HealthBuilder {
	if b.source != nil {
		b.release = fetch(b, schema.ReleaseSignal, b.source.Release)
	}
	return b
}

// FetchContributors pulls the recent author sets and the all-time contributor sample.
func (b *HealthBuilder) FetchContributors() *HealthBuilder {
	if b.source != nil {
		b.contributors = fetch(b, schema.ContributorsSignal, b.source.Contributors)
	}
	return b
}

// FetchPullRequests pulls merged pull requests of the last 60 days.
func (b *HealthBuilder) FetchPullRequests() *HealthBuilder {
	if b.source != nil {
		b.pulls = fetch(b, schema.PullsSignal, b.source.PullRequests)
	}
	return b
}

// FetchIssues pulls issue throughput of the last 60 days.
func (b *HealthBuilder) FetchIssues() *HealthBuilder {
	if b.source != nil {
		b.issues = fetch(b, schema.IssuesSignal, b.source.Issues)
	}
	return b
}

// FetchAll pulls every sub-signal.
func (b *HealthBuilder) FetchAll() *HealthBuilder {
	return b.FetchCommits().FetchRelease().FetchContributors().FetchPullRequests().FetchIssues()
}

// Build folds the fetched sub-signals with their defaults and scores the bundle.
func (b *HealthBuilder) Build(now time.Time) schema.HealthBundle {
	var bundle schema.HealthBundle

	// Commits: the entity's own staleness stands in for a missing push time
	commits := b.commits.Or(schema.CommitActivity{})
	if b.commits.OK() && !commits.PushedAt.IsZero() {
		bundle.DaysSincePush = daysSince(commits.PushedAt, now)
	} else {
		bundle.DaysSincePush = entityStaleness(b.entity, now)
	}
	bundle.Commits30d = commits.Commits30d
	bundle.Commits90d = commits.Commits90d

	if release := b.release.Or(schema.ReleaseInfo{}); !release.PublishedAt.IsZero() {
		days := daysSince(release.PublishedAt, now)
		bundle.DaysSinceRelease = &days
	}

	// New contributors are approximated as recent logins absent from the all-time sample
	contributors := b.contributors.Or(schema.ContributorActivity{})
	logins30 := uniqueLogins(contributors.Logins30d)
	logins90 := uniqueLogins(contributors.Logins90d)
	known := make(map[string]struct{}, len(contributors.AllTime))
	for _, c := range contributors.AllTime {
		known[c.Login] = struct{}{}
	}
	for login := range logins90 {
		if _, ok := known[login]; !ok {
			bundle.NewContributors90d++
		}
	}
	bundle.Contributors30d = len(logins30)
	bundle.Contributors90d = len(logins90)
	bundle.TopContributors = contributors.AllTime

	pulls := b.pulls.Or(schema.PullRequestActivity{})
	bundle.PRsMerged60d = pulls.Merged60d
	bundle.PRMergeLatencyDays = algo.Median(pulls.MergeLatenciesDays)

	issues := b.issues.Or(schema.IssueActivity{})
	bundle.IssuesOpened60d = issues.Opened60d
	bundle.IssuesClosed60d = issues.Closed60d
	bundle.IssueCloseLatencyDays = algo.Median(issues.CloseLatenciesDays)

	bundle.SignalsMissing = b.Missing()
	bundle.HealthScore = algo.HealthScore(&bundle)
	bundle.HealthLabel = algo.HealthLabelFor(bundle.HealthScore)
	return bundle
}

// Missing lists the sub-signals that are unavailable, in fetch order.
func (b *HealthBuilder) Missing() []schema.SignalName {
	var missing []schema.SignalName
	for _, s := range []struct {
		name schema.SignalName
		err  error
	}{
		{schema.CommitsSignal, b.commits.Err},
		{schema.ReleaseSignal, b.release.Err},
		{schema.ContributorsSignal, b.contributors.Err},
		{schema.PullsSignal, b.pulls.Err},
		{schema.IssuesSignal, b.issues.Err},
	} {
		if s.err != nil {
			missing = append(missing, s.name)
		}
	}
	return missing
}

// BuildHealth fetches every sub-signal of a GitHub entity and returns its bundle.
func BuildHealth(ctx context.Context, source contract.ActivitySource, entity schema.Entity, now time.Time) schema.HealthBundle {
	return NewHealthBuilder(ctx, source, entity).FetchAll().Build(now)
}

// daysSince returns the whole days between t and now, never negative.
func daysSince(t, now time.Time) int {
	d := now.Sub(t)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// entityStaleness returns the entity's own days since update, derived from updated_at if needed.
func entityStaleness(e schema.Entity, now time.Time) int {
	switch {
	case e.DaysSinceUpdate != nil:
		return max(0, *e.DaysSinceUpdate)
	case !e.UpdatedAt.IsZero():
		return daysSince(e.UpdatedAt, now)
	default:
		return algo.NoReleaseDays
	}
}

func uniqueLogins(logins []string) map[string]struct{} {
	set := make(map[string]struct{}, len(logins))
	for _, l := range logins {
		if l != "" {
			set[l] = struct{}{}
		}
	}
	return set
}

package schema

import "time"

// HealthBundle is the derived maintenance-activity record of a GitHub repository.
type HealthBundle struct {
	DaysSincePush         int           `json:"days_since_push"`
	DaysSinceRelease      *int          `json:"days_since_release"`
	Commits30d            int           `json:"commits_30d"`
	Commits90d            int           `json:"commits_90d"`
	Contributors30d       int           `json:"contributors_30d"`
	Contributors90d       int           `json:"contributors_90d"`
	NewContributors90d    int           `json:"new_contributors_90d"`
	PRsMerged60d          int           `json:"prs_merged_60d"`
	IssuesOpened60d       int           `json:"issues_opened_60d"`
	IssuesClosed60d       int           `json:"issues_closed_60d"`
	PRMergeLatencyDays    *float64      `json:"pr_merge_latency_days"`
	IssueCloseLatencyDays *float64      `json:"issue_close_latency_days"`
	HealthScore           float64       `json:"health_score"`
	HealthLabel           HealthLabel   `json:"health_label"`
	TopContributors       []Contributor `json:"top_contributors,omitempty"`
	SignalsMissing        []SignalName  `json:"signals_missing,omitempty"`
}

// CommitActivity is the commit sub-signal of an activity source.
type CommitActivity struct {
	PushedAt   time.Time `json:"pushed_at"`
	Commits30d int       `json:"commits_30d"`
	Commits90d int       `json:"commits_90d"`
}

// ReleaseInfo is the release sub-signal. A zero PublishedAt means no release exists.
type ReleaseInfo struct {
	Tag         string    `json:"tag,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// ContributorActivity holds the login sets of recent windows and the
// all-time top-contributor sample (at most 100 entries).
type ContributorActivity struct {
	Logins30d []string      `json:"logins_30d"`
	Logins90d []string      `json:"logins_90d"`
	AllTime   []Contributor `json:"all_time"`
}

// PullRequestActivity is the merged pull-request sub-signal over 60 days.
type PullRequestActivity struct {
	Merged60d          int       `json:"merged_60d"`
	MergeLatenciesDays []float64 `json:"merge_latencies_days"`
}

// IssueActivity is the issue sub-signal over 60 days.
type IssueActivity struct {
	Opened60d          int       `json:"opened_60d"`
	Closed60d          int       `json:"closed_60d"`
	CloseLatenciesDays []float64 `json:"close_latencies_days"`
}

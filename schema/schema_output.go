package schema

import "time"

// RankedProject adds presentation data to a project for terminal output.
type RankedProject struct {
	Rank int `json:"rank"`
	Project
}

// BuildSummary holds the counts reported at the end of a build.
type BuildSummary struct {
	RunID            string        `json:"run_id"`
	TotalInput       int           `json:"total_input"`
	Processed        int           `json:"processed"`
	SkippedInvalid   int           `json:"skipped_invalid"`
	SkippedDuplicate int           `json:"skipped_duplicate"`
	Filtered         int           `json:"filtered"`
	CacheHits        int           `json:"cache_hits"`
	Recomputed       int           `json:"recomputed"`
	SignalsMissing   int           `json:"signals_missing"`
	OverridesDropped int           `json:"overrides_dropped"`
	Shards           int           `json:"shards"`
	NewSinceLastRun  int           `json:"new_since_last_run"`
	SectionsSkipped  []string      `json:"sections_skipped,omitempty"`
	Duration         time.Duration `json:"duration"`
}

// EnrichProjects assigns 1-based ranks to an already sorted project list.
func EnrichProjects(projects []Project) []RankedProject {
	out := make([]RankedProject, len(projects))
	for i, p := range projects {
		out[i] = RankedProject{Rank: i + 1, Project: p}
	}
	return out
}

package schema

import "time"

// CacheEntry is one raw row of a key/value store.
type CacheEntry struct {
	Value     []byte `json:"value"`
	Version   int    `json:"version"`
	Timestamp int64  `json:"timestamp"` // Unix seconds; zero means unknown
}

// RunRecord represents a row from the repodex_runs table.
type RunRecord struct {
	RunID         string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalProjects int32
	ConfigParams  *string
}

// ProjectScoreRecord represents a row from the repodex_project_scores table.
type ProjectScoreRecord struct {
	RunID            string
	ProjectKey       string
	Source           string
	AnalysisTime     time.Time
	Stars            int64
	Downloads        int64
	PopularityScore  float64
	HealthScore      float64
	PeopleScore      float64
	Score            float64
	HealthLabel      string
	MomentumLabel    string
	NormalizedGrowth float64
}

package schema

import "time"

// SnapshotEntry is the persisted state of one entity at the end of a run.
type SnapshotEntry struct {
	Metrics   Metrics   `json:"metrics"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Momentum is the cross-run growth record of one entity.
type Momentum struct {
	DeltaStars       int                 `json:"delta_stars"`
	DeltaForks       int                 `json:"delta_forks"`
	DeltaDownloads   int                 `json:"delta_downloads"`
	DeltaLikes       int                 `json:"delta_likes"`
	StarsPerWeek     float64             `json:"stars_per_week"`
	ForksPerWeek     float64             `json:"forks_per_week"`
	DownloadsPerWeek float64             `json:"downloads_per_week"`
	LikesPerWeek     float64             `json:"likes_per_week"`
	WeeksElapsed     float64             `json:"weeks_elapsed"`
	NormalizedGrowth float64             `json:"normalized_growth"`
	MomentumScore    float64             `json:"momentum_score"`
	Label            MomentumLabel       `json:"momentum_label"`
	LegacyLabel      LegacyMomentumLabel `json:"momentum_label_legacy"`
}

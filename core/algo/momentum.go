package algo

import (
	"math"
	"time"

	"github.com/huangsam/repodex/schema"
)

// Momentum thresholds.
const (
	BreakoutBaseline    = 1000 // stars or downloads below which growth can be a breakout
	BreakoutGrowth      = 0.10
	RisingGrowth        = 0.05
	LegacyTrendingScore = 5.0 // legacy thresholds on the 1..100 momentum score
	LegacyGrowingScore  = 1.0
)

const week = 7 * 24 * time.Hour

// NormalizedGrowth is log1p(|delta|)/log1p(max(1, current)).
func NormalizedGrowth(delta, current int) float64 {
	return math.Log1p(math.Abs(float64(delta))) / math.Log1p(math.Max(1, float64(current)))
}

// ClassifyMomentum gives the v2 label of a growing entity.
func ClassifyMomentum(baseline int, growth float64) schema.MomentumLabel {
	switch {
	case baseline < BreakoutBaseline && growth > BreakoutGrowth:
		return schema.BreakoutMomentum
	case growth > RisingGrowth:
		return schema.RisingMomentum
	default:
		return schema.FlatMomentum
	}
}

// ClassifyLegacyMomentum gives the legacy label of a 0..100 momentum score.
func ClassifyLegacyMomentum(score float64) schema.LegacyMomentumLabel {
	switch {
	case score > LegacyTrendingScore:
		return schema.TrendingLegacy
	case score > LegacyGrowingScore:
		return schema.GrowingLegacy
	default:
		return schema.FlatLegacy
	}
}

// ComputeMomentum compares current metrics against the previous snapshot entry.
// Without a previous entry the baseline is the current metrics, so every delta is zero.
func ComputeMomentum(source schema.Source, current schema.Metrics, previous *schema.SnapshotEntry, now time.Time) schema.Momentum {
	baseline := current
	weeks := 1.0
	if previous != nil {
		baseline = previous.Metrics
		if !previous.FetchedAt.IsZero() {
			weeks = math.Max(1, float64(now.Sub(previous.FetchedAt))/float64(week))
		}
	}

	m := schema.Momentum{
		DeltaStars:     current.Stars - baseline.Stars,
		DeltaForks:     current.Forks - baseline.Forks,
		DeltaDownloads: current.Downloads - baseline.Downloads,
		DeltaLikes:     current.Likes - baseline.Likes,
		WeeksElapsed:   Round(weeks, 2),
	}
	m.StarsPerWeek = Round(float64(m.DeltaStars)/weeks, 2)
	m.ForksPerWeek = Round(float64(m.DeltaForks)/weeks, 2)
	m.DownloadsPerWeek = Round(float64(m.DeltaDownloads)/weeks, 2)
	m.LikesPerWeek = Round(float64(m.DeltaLikes)/weeks, 2)

	var growth float64
	var primaryDelta, primaryValue int
	if source == schema.HuggingFaceSource {
		growth = 0.7*NormalizedGrowth(m.DeltaDownloads, current.Downloads) +
			0.3*NormalizedGrowth(m.DeltaLikes, current.Likes)
		primaryDelta, primaryValue = m.DeltaDownloads, current.Downloads
	} else {
		growth = NormalizedGrowth(m.DeltaStars, current.Stars)
		primaryDelta, primaryValue = m.DeltaStars, current.Stars
	}
	m.NormalizedGrowth = Round(growth, 4)

	m.Label = schema.FlatMomentum
	if primaryDelta > 0 {
		m.Label = ClassifyMomentum(primaryValue, growth)
		m.MomentumScore = clamp(Round(growth*100, 1), 0, 100)
	}
	m.LegacyLabel = ClassifyLegacyMomentum(m.MomentumScore)
	return m
}

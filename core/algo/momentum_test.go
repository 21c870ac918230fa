package algo

import (
	"math"
	"testing"
	"time"

	"github.com/huangsam/repodex/schema"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestComputeMomentumFirstRun(t *testing.T) {
	for _, source := range []schema.Source{schema.GitHubSource, schema.HuggingFaceSource} {
		t.Run(string(source), func(t *testing.T) {
			current := schema.Metrics{Stars: 420, Forks: 12, Downloads: 9000, Likes: 30}
			m := ComputeMomentum(source, current, nil, now)

			assert.Zero(t, m.DeltaStars)
			assert.Zero(t, m.DeltaForks)
			assert.Zero(t, m.DeltaDownloads)
			assert.Zero(t, m.DeltaLikes)
			assert.Zero(t, m.NormalizedGrowth)
			assert.Zero(t, m.MomentumScore)
			assert.Equal(t, 1.0, m.WeeksElapsed)
			assert.Equal(t, schema.FlatMomentum, m.Label)
			assert.Equal(t, schema.FlatLegacy, m.LegacyLabel)
		})
	}
}

func TestClassifyMomentum(t *testing.T) {
	tests := []struct {
		name     string
		baseline int
		growth   float64
		want     schema.MomentumLabel
	}{
		{"small repo breaks out", 500, 0.15, schema.BreakoutMomentum},
		{"large repo only rises", 5000, 0.15, schema.RisingMomentum},
		{"baseline boundary", 1000, 0.15, schema.RisingMomentum},
		{"breakout needs more than 0.10", 500, 0.10, schema.RisingMomentum},
		{"rising needs more than 0.05", 5000, 0.05, schema.FlatMomentum},
		{"flat", 10, 0.01, schema.FlatMomentum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyMomentum(tt.baseline, tt.growth))
		})
	}
}

func TestClassifyLegacyMomentum(t *testing.T) {
	assert.Equal(t, schema.TrendingLegacy, ClassifyLegacyMomentum(5.1))
	assert.Equal(t, schema.GrowingLegacy, ClassifyLegacyMomentum(5.0))
	assert.Equal(t, schema.GrowingLegacy, ClassifyLegacyMomentum(1.1))
	assert.Equal(t, schema.FlatLegacy, ClassifyLegacyMomentum(1.0))
	assert.Equal(t, schema.FlatLegacy, ClassifyLegacyMomentum(0))
}

func TestComputeMomentumGitHub(t *testing.T) {
	previous := &schema.SnapshotEntry{
		Metrics:   schema.Metrics{Stars: 400, Forks: 10},
		FetchedAt: now.Add(-14 * 24 * time.Hour),
	}
	current := schema.Metrics{Stars: 500, Forks: 14}

	m := ComputeMomentum(schema.GitHubSource, current, previous, now)

	assert.Equal(t, 100, m.DeltaStars)
	assert.Equal(t, 4, m.DeltaForks)
	assert.Equal(t, 2.0, m.WeeksElapsed)
	assert.Equal(t, 50.0, m.StarsPerWeek)
	assert.Equal(t, 2.0, m.ForksPerWeek)

	growth := math.Log1p(100) / math.Log1p(500)
	assert.InDelta(t, growth, m.NormalizedGrowth, 1e-4)
	assert.Equal(t, schema.BreakoutMomentum, m.Label)
	assert.Equal(t, Round(growth*100, 1), m.MomentumScore)
	assert.Equal(t, schema.TrendingLegacy, m.LegacyLabel)
}

func TestComputeMomentumDecline(t *testing.T) {
	previous := &schema.SnapshotEntry{Metrics: schema.Metrics{Stars: 900}, FetchedAt: now.Add(-7 * 24 * time.Hour)}
	m := ComputeMomentum(schema.GitHubSource, schema.Metrics{Stars: 600}, previous, now)

	assert.Equal(t, -300, m.DeltaStars)
	assert.Greater(t, m.NormalizedGrowth, 0.0, "growth is magnitude only")
	assert.Equal(t, schema.FlatMomentum, m.Label, "declines are never surfaced")
	assert.Zero(t, m.MomentumScore)
	assert.Equal(t, schema.FlatLegacy, m.LegacyLabel)
}

func TestComputeMomentumWeeksFloor(t *testing.T) {
	previous := &schema.SnapshotEntry{Metrics: schema.Metrics{Stars: 10}, FetchedAt: now.Add(-time.Hour)}
	m := ComputeMomentum(schema.GitHubSource, schema.Metrics{Stars: 30}, previous, now)
	assert.Equal(t, 1.0, m.WeeksElapsed)
	assert.Equal(t, 20.0, m.StarsPerWeek)

	// An entry without a fetch time still compares but uses one week
	undated := &schema.SnapshotEntry{Metrics: schema.Metrics{Stars: 10}}
	m = ComputeMomentum(schema.GitHubSource, schema.Metrics{Stars: 30}, undated, now)
	assert.Equal(t, 1.0, m.WeeksElapsed)
}

func TestComputeMomentumHuggingFace(t *testing.T) {
	previous := &schema.SnapshotEntry{
		Metrics:   schema.Metrics{Downloads: 600, Likes: 10},
		FetchedAt: now.Add(-21 * 24 * time.Hour),
	}
	current := schema.Metrics{Downloads: 900, Likes: 20}

	m := ComputeMomentum(schema.HuggingFaceSource, current, previous, now)

	growth := 0.7*math.Log1p(300)/math.Log1p(900) + 0.3*math.Log1p(10)/math.Log1p(20)
	assert.InDelta(t, growth, m.NormalizedGrowth, 1e-4)
	assert.Equal(t, 3.0, m.WeeksElapsed)
	assert.Equal(t, 100.0, m.DownloadsPerWeek)
	assert.Equal(t, schema.BreakoutMomentum, m.Label)

	t.Run("likes alone do not count as growth", func(t *testing.T) {
		m := ComputeMomentum(schema.HuggingFaceSource, schema.Metrics{Downloads: 600, Likes: 40}, previous, now)
		assert.Equal(t, schema.FlatMomentum, m.Label)
	})
}

func TestNormalizedGrowth(t *testing.T) {
	assert.Zero(t, NormalizedGrowth(0, 100))
	assert.InDelta(t, math.Log1p(5)/math.Log1p(1), NormalizedGrowth(5, 0), 1e-9, "current floors at 1")
	assert.Equal(t, NormalizedGrowth(-50, 200), NormalizedGrowth(50, 200))
}

package algo

import (
	"math"
	"testing"

	"github.com/huangsam/repodex/schema"
	"github.com/stretchr/testify/assert"
)

func TestComputeScoresGitHub(t *testing.T) {
	t.Run("end to end popularity and health", func(t *testing.T) {
		e := schema.Entity{Source: schema.GitHubSource, Stars: 12000, Forks: 800}
		b := &schema.HealthBundle{HealthScore: 1.0, Contributors90d: 20}

		s := ComputeScores(e, b)

		wantPopularity := Round(math.Min(70*math.Log1p(12000)/math.Log1p(10000)+20*math.Log1p(800)/math.Log1p(2000)+10, 100), 1)
		assert.Equal(t, wantPopularity, s.Popularity)
		assert.Equal(t, 99.0, s.Popularity)
		assert.Equal(t, 100.0, s.Health)
	})

	t.Run("no bundle means zero health", func(t *testing.T) {
		s := ComputeScores(schema.Entity{Source: schema.GitHubSource}, nil)
		assert.Equal(t, 10.0, s.Popularity, "only the trend constant remains")
		assert.Equal(t, 0.0, s.Health)
		assert.Equal(t, 0.0, s.People)
		assert.Equal(t, 3.3, s.Score)
	})

	t.Run("popularity saturates", func(t *testing.T) {
		s := ComputeScores(schema.Entity{Source: schema.GitHubSource, Stars: 500000, Forks: 90000}, nil)
		assert.Equal(t, 100.0, s.Popularity)
	})
}

func TestComputeScoresHuggingFace(t *testing.T) {
	tests := []struct {
		name       string
		entity     schema.Entity
		popularity float64
		health     float64
		people     float64
	}{
		{
			name:       "unknown age",
			entity:     schema.Entity{Source: schema.HuggingFaceSource, Downloads: 5000, Likes: 50},
			popularity: 50,
			health:     50,
			people:     Round(50*math.Log1p(5000)/math.Log1p(1e6), 1),
		},
		{
			name:       "fresh and capped",
			entity:     schema.Entity{Source: schema.HuggingFaceSource, Downloads: 5_000_000, Likes: 900, DaysSinceUpdate: intPtr(3)},
			popularity: 100,
			health:     80,
			people:     50,
		},
		{"60 days", schema.Entity{Source: schema.HuggingFaceSource, DaysSinceUpdate: intPtr(60)}, 0, 60, 0},
		{"120 days", schema.Entity{Source: schema.HuggingFaceSource, DaysSinceUpdate: intPtr(120)}, 0, 40, 0},
		{"old", schema.Entity{Source: schema.HuggingFaceSource, DaysSinceUpdate: intPtr(400)}, 0, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeScores(tt.entity, nil)
			assert.Equal(t, tt.popularity, s.Popularity)
			assert.Equal(t, tt.health, s.Health)
			assert.Equal(t, tt.people, s.People)
		})
	}
}

func TestPeopleSubScores(t *testing.T) {
	tests := []struct {
		name          string
		contributors  []schema.Contributor
		bench         float64
		concentration float64
	}{
		{"none", nil, 0, 0},
		{"single maintainer", []schema.Contributor{{Login: "a", Contributions: 900}}, 0, 5},
		{
			name:          "dominant owner",
			contributors:  []schema.Contributor{{Login: "a", Contributions: 900}, {Login: "b", Contributions: 100}},
			bench:         30 * math.Log1p(2) / math.Log1p(5),
			concentration: 10,
		},
		{
			name:          "majority owner",
			contributors:  []schema.Contributor{{Login: "a", Contributions: 60}, {Login: "b", Contributions: 40}},
			bench:         30 * math.Log1p(2) / math.Log1p(5),
			concentration: 20,
		},
		{
			name: "healthy spread",
			contributors: []schema.Contributor{
				{Login: "a", Contributions: 40}, {Login: "b", Contributions: 30}, {Login: "c", Contributions: 20}, {Login: "d", Contributions: 10},
			},
			bench:         30 * math.Log1p(4) / math.Log1p(5),
			concentration: 30,
		},
		{
			name: "tail below cutoff",
			contributors: []schema.Contributor{
				{Login: "a", Contributions: 1000}, {Login: "b", Contributions: 40}, {Login: "c", Contributions: 60},
			},
			bench:         30 * math.Log1p(2) / math.Log1p(5),
			concentration: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.bench, BenchScore(tt.contributors), 1e-9)
			assert.Equal(t, tt.concentration, ConcentrationScore(tt.contributors))
		})
	}

	t.Run("diffuse", func(t *testing.T) {
		var cs []schema.Contributor
		for range 10 {
			cs = append(cs, schema.Contributor{Contributions: 10})
		}
		assert.Equal(t, 15.0, ConcentrationScore(cs))
	})
}

func TestGitHubPeopleSources(t *testing.T) {
	listed := []schema.Contributor{{Login: "a", Contributions: 5}}
	e := schema.Entity{Source: schema.GitHubSource, Contributors: listed}

	withoutBundle := ComputeScores(e, nil)
	assert.InDelta(t, Round(40*math.Log1p(1)/math.Log1p(10)+5, 1), withoutBundle.People, 1e-9, "falls back to the entity's contributor list")

	b := &schema.HealthBundle{Contributors90d: 10, TopContributors: []schema.Contributor{
		{Login: "a", Contributions: 40}, {Login: "b", Contributions: 30}, {Login: "c", Contributions: 30},
	}}
	withBundle := ComputeScores(e, b)
	assert.InDelta(t, Round(40+30*math.Log1p(3)/math.Log1p(5)+30, 1), withBundle.People, 1e-9)
}

func TestScoreIsRoundedMean(t *testing.T) {
	entities := []schema.Entity{
		{Source: schema.GitHubSource, Stars: 123, Forks: 7},
		{Source: schema.GitHubSource, Stars: 77777, Forks: 1234, Contributors: []schema.Contributor{{Contributions: 3}, {Contributions: 1}}},
		{Source: schema.HuggingFaceSource, Downloads: 3333, Likes: 17, DaysSinceUpdate: intPtr(45)},
	}
	bundle := &schema.HealthBundle{HealthScore: 0.637, Contributors90d: 7}

	for _, e := range entities {
		s := ComputeScores(e, bundle)
		assert.Equal(t, Round((s.Popularity+s.Health+s.People)/3, 1), s.Score)
	}
}

// FuzzComputeScores checks that every score stays within [0,100].
func FuzzComputeScores(f *testing.F) {
	f.Add(true, 12000, 800, 0, 0, 0.9, 12, 3)
	f.Add(false, 0, 0, 1_000_000, 5000, 0.0, 0, 1)
	f.Add(true, -5, -1, -3, -2, 1.7, -4, -9)

	f.Fuzz(func(t *testing.T, github bool, stars, forks, downloads, likes int, health float64, c90, top int) {
		if math.IsNaN(health) || math.IsInf(health, 0) {
			t.Skip()
		}
		e := schema.Entity{Source: schema.HuggingFaceSource, Stars: stars, Forks: forks, Downloads: downloads, Likes: likes}
		var b *schema.HealthBundle
		if github {
			e.Source = schema.GitHubSource
			b = &schema.HealthBundle{
				HealthScore:     health,
				Contributors90d: c90,
				TopContributors: []schema.Contributor{{Contributions: top}, {Contributions: 1}},
			}
		}

		s := ComputeScores(e, b)
		for _, v := range []float64{s.Popularity, s.Health, s.People, s.Score} {
			if v < 0 || v > 100 || math.IsNaN(v) {
				t.Fatalf("score out of bounds: %+v", s)
			}
		}
	})
}

package algo

import (
	"math"

	"github.com/huangsam/repodex/schema"
)

// Reference scales of the composite scores.
const (
	starsReference        = 10000.0
	forksReference        = 2000.0
	trendConstant         = 10.0 // reserved for velocity data
	downloadsReference    = 10000.0
	likesReference        = 100.0
	breadthReference      = 10.0
	benchReference        = 5.0
	benchShareCutoff      = 0.05
	hfPeopleCap           = 50.0
	hfDownloadsPeopleRef  = 1e6
	unknownAgeHealthScore = 50.0
)

// ComputeScores derives the score triple of an entity. The bundle may be nil.
// Each score is rounded to one decimal and Score is the rounded mean of the three.
func ComputeScores(e schema.Entity, b *schema.HealthBundle) schema.Scores {
	var s schema.Scores
	switch e.Source {
	case schema.HuggingFaceSource:
		s.Popularity = huggingFacePopularity(e)
		s.Health = huggingFaceHealth(e.DaysSinceUpdate)
		s.People = huggingFacePeople(e.Downloads)
	default:
		s.Popularity = gitHubPopularity(e)
		if b != nil {
			s.Health = b.HealthScore * 100
		}
		s.People = gitHubPeople(e, b)
	}

	s.Popularity = Round(clamp(s.Popularity, 0, 100), 1)
	s.Health = Round(clamp(s.Health, 0, 100), 1)
	s.People = Round(clamp(s.People, 0, 100), 1)
	s.Score = Round((s.Popularity+s.Health+s.People)/3, 1)
	return s
}

func gitHubPopularity(e schema.Entity) float64 {
	return math.Min(100, 70*logRatioRaw(float64(e.Stars), starsReference)+
		20*logRatioRaw(float64(e.Forks), forksReference)+trendConstant)
}

// logRatioRaw is log1p(v)/log1p(ref) without saturation.
func logRatioRaw(v, ref float64) float64 {
	return math.Log1p(math.Max(0, v)) / math.Log1p(ref)
}

func huggingFacePopularity(e schema.Entity) float64 {
	return math.Min(100, 70*float64(e.Downloads)/downloadsReference+30*float64(e.Likes)/likesReference)
}

// huggingFaceHealth steps down with the age of the last update.
func huggingFaceHealth(daysSinceUpdate *int) float64 {
	if daysSinceUpdate == nil {
		return unknownAgeHealthScore
	}
	switch d := *daysSinceUpdate; {
	case d < 30:
		return 80
	case d < 90:
		return 60
	case d < 180:
		return 40
	default:
		return 20
	}
}

// huggingFacePeople is a downloads proxy. It is not comparable to the GitHub people score.
func huggingFacePeople(downloads int) float64 {
	return math.Min(hfPeopleCap, hfPeopleCap*logRatioRaw(float64(downloads), hfDownloadsPeopleRef))
}

// gitHubPeople estimates bus factor from breadth, bench depth and ownership concentration.
func gitHubPeople(e schema.Entity, b *schema.HealthBundle) float64 {
	contributors := e.Contributors
	recent := len(e.Contributors)
	if b != nil {
		recent = b.Contributors90d
		if len(b.TopContributors) > 0 {
			contributors = b.TopContributors
		}
	}

	breadth := 40 * logRatio(float64(recent), breadthReference)
	return math.Min(100, breadth+BenchScore(contributors)+ConcentrationScore(contributors))
}

// BenchScore counts contributors holding more than 5% of the top contributor's total.
// It needs at least two known contributors.
func BenchScore(contributors []schema.Contributor) float64 {
	if len(contributors) < 2 {
		return 0
	}
	top := topContributions(contributors)
	if top <= 0 {
		return 0
	}
	bench := 0
	for _, c := range contributors {
		if float64(c.Contributions) > benchShareCutoff*float64(top) {
			bench++
		}
	}
	return 30 * logRatio(float64(bench), benchReference)
}

// ConcentrationScore penalizes both single-owner and overly diffuse projects.
func ConcentrationScore(contributors []schema.Contributor) float64 {
	switch len(contributors) {
	case 0:
		return 0
	case 1:
		return 5
	}
	total := 0
	for _, c := range contributors {
		total += c.Contributions
	}
	if total <= 0 {
		return 0
	}
	share := float64(topContributions(contributors)) / float64(total)
	switch {
	case share > 0.70:
		return 10 // high risk
	case share > 0.50:
		return 20
	case share < 0.15:
		return 15 // too diffuse
	default:
		return 30
	}
}

func topContributions(contributors []schema.Contributor) int {
	top := 0
	for _, c := range contributors {
		top = max(top, c.Contributions)
	}
	return top
}

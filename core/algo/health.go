package algo

import (
	"math"

	"github.com/huangsam/repodex/schema"
)

// Health label thresholds on the 0..1 scale.
const (
	AliveThreshold  = 0.70
	SteadyThreshold = 0.40
)

// Neutral values used when a sub-signal has no data.
const (
	NoReleaseDays          = 999 // stands in for a missing release in the recency term
	neutralResponsiveness  = 0.7
	neutralReleaseCadence  = 0.5
	staticTeamDiversity    = 0.7
	unstableTeamDiversity  = 0.5
	recencyHalfLifeDays    = 30.0
	prReferenceCount       = 20.0
	contributorReference90 = 15.0
)

// RecencyScore decays by half every 30 days since the most recent push or release.
func RecencyScore(daysSincePush int, daysSinceRelease *int) float64 {
	release := NoReleaseDays
	if daysSinceRelease != nil {
		release = *daysSinceRelease
	}
	days := math.Max(0, float64(min(daysSincePush, release)))
	return clamp01(math.Pow(0.5, days/recencyHalfLifeDays))
}

// DiversityScore rewards contributor churn between 10% and 30% of the 90-day team.
// A team with no 90-day contributors counts as fully static.
func DiversityScore(newContributors90d, contributors90d int) float64 {
	churn := 0.0
	if contributors90d > 0 {
		churn = float64(newContributors90d) / float64(contributors90d)
	}
	switch {
	case churn < 0.10:
		return staticTeamDiversity + 3*churn
	case churn <= 0.30:
		return 1.0
	default:
		return math.Max(unstableTeamDiversity, 1-(churn-0.30))
	}
}

// ActivityScore blends merged PR volume, contributor breadth and diversity.
func ActivityScore(prsMerged60d, contributors90d, newContributors90d int) float64 {
	const (
		wVolume    = 0.5
		wBreadth   = 0.3
		wDiversity = 0.2
	)
	return wVolume*logRatio(float64(prsMerged60d), prReferenceCount) +
		wBreadth*logRatio(float64(contributors90d), contributorReference90) +
		wDiversity*DiversityScore(newContributors90d, contributors90d)
}

// latencyCurve gives full credit below fast, decays to 0.6 at slow and to 0.2 at stale.
func latencyCurve(days, fast, slow, stale float64) float64 {
	switch {
	case days < fast:
		return 1.0
	case days < slow:
		return lerp(days, fast, slow, 1.0, 0.6)
	case days < stale:
		return lerp(days, slow, stale, 0.6, 0.2)
	default:
		return 0.2
	}
}

// PRLatencyScore scores the median merge latency of pull requests.
func PRLatencyScore(days float64) float64 {
	return latencyCurve(days, 7, 30, 90)
}

// IssueLatencyScore scores the median close latency of issues.
func IssueLatencyScore(days float64) float64 {
	return latencyCurve(days, 14, 60, 180)
}

// ResponsivenessScore is the mean of the available latency and throughput signals.
// With none available it stays neutral so other workflows are not penalized.
func ResponsivenessScore(prLatencyDays, issueLatencyDays *float64, issuesOpened, issuesClosed int) float64 {
	var parts []float64
	if prLatencyDays != nil {
		parts = append(parts, PRLatencyScore(*prLatencyDays))
	}
	if issueLatencyDays != nil {
		parts = append(parts, IssueLatencyScore(*issueLatencyDays))
	}
	if issuesOpened > 0 {
		parts = append(parts, clamp01(float64(issuesClosed)/float64(issuesOpened)))
	}
	if len(parts) == 0 {
		return neutralResponsiveness
	}
	sum := 0.0
	for _, p := range parts {
		sum += p
	}
	return sum / float64(len(parts))
}

// ReleaseCadenceScore steps down with the age of the last release.
func ReleaseCadenceScore(daysSinceRelease *int) float64 {
	if daysSinceRelease == nil {
		return neutralReleaseCadence
	}
	switch d := *daysSinceRelease; {
	case d < 30:
		return 1.0
	case d < 90:
		return 0.7
	case d < 180:
		return 0.4
	default:
		return 0.2
	}
}

// HealthScore computes the 0..1 composite of a bundle, rounded to 3 decimals.
func HealthScore(b *schema.HealthBundle) float64 {
	const (
		wRecency        = 0.30
		wActivity       = 0.20
		wResponsiveness = 0.35 // hardest to fake with stockpiled commits
		wCadence        = 0.15
	)
	raw := wRecency*RecencyScore(b.DaysSincePush, b.DaysSinceRelease) +
		wActivity*ActivityScore(b.PRsMerged60d, b.Contributors90d, b.NewContributors90d) +
		wResponsiveness*ResponsivenessScore(b.PRMergeLatencyDays, b.IssueCloseLatencyDays, b.IssuesOpened60d, b.IssuesClosed60d) +
		wCadence*ReleaseCadenceScore(b.DaysSinceRelease)
	return Round(clamp01(raw), 3)
}

// HealthLabelFor maps a 0..1 health score to its label. Both thresholds are inclusive.
func HealthLabelFor(score float64) schema.HealthLabel {
	switch {
	case score >= AliveThreshold:
		return schema.AliveHealth
	case score >= SteadyThreshold:
		return schema.SteadyHealth
	default:
		return schema.DecayingHealth
	}
}

package algo

import (
	"cmp"
	"slices"

	"github.com/huangsam/repodex/schema"
)

// RankProjects sorts projects by score in descending order, breaking ties by key,
// and returns the top 'limit' projects. A limit of zero or less keeps all of them.
func RankProjects(projects []schema.Project, limit int) []schema.Project {
	slices.SortStableFunc(projects, func(a, b schema.Project) int {
		return compareByScore(a.Score, b.Score, a.Key, b.Key)
	})
	if limit > 0 && len(projects) > limit {
		return projects[:limit]
	}
	return projects
}

// RankItems sorts index items by score in descending order, breaking ties by key.
func RankItems(items []schema.IndexItem) {
	slices.SortStableFunc(items, func(a, b schema.IndexItem) int {
		return compareByScore(a.Score, b.Score, a.Key, b.Key)
	})
}

func compareByScore(scoreA, scoreB float64, keyA, keyB string) int {
	if c := cmp.Compare(scoreB, scoreA); c != 0 {
		return c
	}
	return cmp.Compare(keyA, keyB)
}

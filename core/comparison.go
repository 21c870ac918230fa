package core

import (
	"slices"

	"github.com/huangsam/repodex/schema"
)

// NewSinceLastRun returns the ids of the current run that the previous run did not have, sorted.
func NewSinceLastRun(previousIDs, currentIDs []string) schema.NewSince {
	added, _ := diffIDs(previousIDs, currentIDs)
	return schema.NewSince{Count: len(added), IDs: added}
}

// diffIDs compares two id lists as sets and returns the sorted additions and removals.
func diffIDs(base, target []string) (added, removed []string) {
	baseSet := make(map[string]struct{}, len(base))
	targetSet := make(map[string]struct{}, len(target))
	for _, id := range base {
		baseSet[id] = struct{}{}
	}
	for _, id := range target {
		targetSet[id] = struct{}{}
	}

	added = []string{}
	for id := range targetSet {
		if _, ok := baseSet[id]; !ok {
			added = append(added, id)
		}
	}
	removed = []string{}
	for id := range baseSet {
		if _, ok := targetSet[id]; !ok {
			removed = append(removed, id)
		}
	}
	slices.Sort(added)
	slices.Sort(removed)
	return added, removed
}

// projectIDs returns the entity ids of projects in order.
func projectIDs(projects []schema.Project) []string {
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	return ids
}

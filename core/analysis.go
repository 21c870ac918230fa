package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/repodex/core/algo"
	"github.com/huangsam/repodex/core/tags"
	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/internal/source"
	"github.com/huangsam/repodex/schema"
)

// selectEntities drops entities without an id or a known source, repeated ids or join keys,
// and entities below the configured popularity floor. Counts go into the summary.
func selectEntities(entities []schema.Entity, cfg *contract.Config, summary *schema.BuildSummary) []schema.Entity {
	seenIDs := make(map[string]struct{}, len(entities))
	seenKeys := make(map[string]struct{}, len(entities))
	selected := make([]schema.Entity, 0, len(entities))

	for i, e := range entities {
		if e.ID == "" {
			summary.SkippedInvalid++
			contract.LogWarn("Skipping entity", fmt.Errorf("record %d has no id", i))
			continue
		}
		if _, ok := schema.ValidSources[e.Source]; !ok {
			summary.SkippedInvalid++
			contract.LogWarn("Skipping entity", fmt.Errorf("record %s has unknown source %q", e.ID, e.Source))
			continue
		}
		key := schema.JoinKey(e)
		_, dupID := seenIDs[e.ID]
		_, dupKey := seenKeys[key]
		if dupID || dupKey {
			summary.SkippedDuplicate++
			continue
		}
		seenIDs[e.ID] = struct{}{}
		seenKeys[key] = struct{}{}

		if belowFloor(e, cfg) {
			summary.Filtered++
			continue
		}
		selected = append(selected, e)
	}
	return selected
}

func belowFloor(e schema.Entity, cfg *contract.Config) bool {
	if e.Source == schema.HuggingFaceSource {
		return e.Downloads < cfg.MinDownloads
	}
	return e.Stars < cfg.MinStars
}

// analyzer scores entities one at a time against the run's cache and snapshot.
type analyzer struct {
	ctx       context.Context
	activity  contract.ActivitySource
	extractor *tags.Extractor
	overrides source.Overrides
	cache     *HealthCache
	snapshot  *Snapshot
	summary   *schema.BuildSummary
}

// analyzeEntities runs tags, health, scores and momentum for each entity in input order.
func (a *analyzer) analyzeEntities(entities []schema.Entity, now time.Time) ([]schema.Project, error) {
	projects := make([]schema.Project, 0, len(entities))
	for _, e := range entities {
		if err := a.ctx.Err(); err != nil {
			return nil, err
		}
		projects = append(projects, a.analyzeEntity(e, now))
	}
	return projects, nil
}

func (a *analyzer) analyzeEntity(e schema.Entity, now time.Time) schema.Project {
	e = withDaysSinceUpdate(e, now)
	key := schema.JoinKey(e)

	tagSet := a.extractor.Extract(e.Name+" "+e.Description, e.Topics, e.License)
	tags.MergeOverrides(tagSet, a.overrides[key])

	var bundle *schema.HealthBundle
	if e.Source == schema.GitHubSource {
		b := a.health(e, key, now)
		if len(b.SignalsMissing) > 0 {
			a.summary.SignalsMissing++
		}
		bundle = &b
	}

	metrics := schema.MetricsOf(e)
	momentum := algo.ComputeMomentum(e.Source, metrics, a.snapshot.Get(key), now)
	a.snapshot.Record(key, metrics, now)

	return schema.Project{
		Entity:   e,
		Key:      key,
		Tags:     tagSet.Sorted(),
		Signals:  bundle,
		Momentum: momentum,
		Scores:   algo.ComputeScores(e, bundle),
	}
}

// withDaysSinceUpdate fills days_since_update from updated_at when the record lacks it
// and clamps negative values to zero.
func withDaysSinceUpdate(e schema.Entity, now time.Time) schema.Entity {
	switch {
	case e.DaysSinceUpdate != nil:
		d := max(0, *e.DaysSinceUpdate)
		e.DaysSinceUpdate = &d
	case !e.UpdatedAt.IsZero():
		d := daysSince(e.UpdatedAt, now)
		e.DaysSinceUpdate = &d
	}
	return e
}

// health serves a fresh cached bundle or builds and buffers a new one.
func (a *analyzer) health(e schema.Entity, key string, now time.Time) schema.HealthBundle {
	if b, ok := a.cache.Get(key); ok {
		return b
	}
	b := BuildHealth(a.ctx, a.activity, e, now)
	a.summary.Recomputed++
	if err := a.cache.Put(key, b, now); err != nil {
		contract.LogItemWarn(key, "cache", err)
	}
	return b
}

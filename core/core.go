// Package core has the build pipeline: entity scoring, health tracking, momentum and artifacts.
package core

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/repodex/core/agg"
	"github.com/huangsam/repodex/core/algo"
	"github.com/huangsam/repodex/core/tags"
	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/internal/embed"
	"github.com/huangsam/repodex/internal/graph"
	"github.com/huangsam/repodex/internal/outwriter"
	"github.com/huangsam/repodex/internal/parquet"
	"github.com/huangsam/repodex/internal/source"
	"github.com/huangsam/repodex/schema"
	"github.com/sirupsen/logrus"
)

// Optional output sections, as reported in the summary when skipped.
const (
	ParquetSection    = "parquet"
	GraphSection      = "graph"
	EmbeddingsSection = "embeddings"
)

// BuildDeps are the collaborators of a build. Either may be nil: without an activity source
// every health sub-signal falls back to its default, and without an embedder a requested
// embeddings section is skipped.
type BuildDeps struct {
	Activity contract.ActivitySource
	Embedder contract.Embedder
}

// buildInputs is everything read before the first entity is scored.
type buildInputs struct {
	entities    []schema.Entity
	overrides   source.Overrides
	dropped     int
	table       tags.Table
	previousIDs []string
}

// ExecuteBuild runs a full build and prints the top projects.
// It serves as the main entry point for the 'build' command.
func ExecuteBuild(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, deps BuildDeps) (schema.BuildSummary, error) {
	start := time.Now()
	projects, summary, err := RunBuild(ctx, cfg, mgr, deps)
	if err != nil {
		return summary, err
	}
	top := algo.RankProjects(slices.Clone(projects), cfg.ResultLimit)
	if err := outwriter.NewOutWriter().WriteProjects(top, cfg, time.Since(start)); err != nil {
		return summary, err
	}
	return summary, nil
}

// RunBuild scores every entity, writes the artifact set and returns the ranked projects.
// Stores are read once before scoring and written once after the artifacts.
func RunBuild(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, deps BuildDeps) ([]schema.Project, schema.BuildSummary, error) {
	start := time.Now()
	now := cfg.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// --- 1. Inputs ---
	in, err := loadInputs(cfg)
	if err != nil {
		return nil, schema.BuildSummary{}, err
	}
	summary := schema.BuildSummary{TotalInput: len(in.entities), OverridesDropped: in.dropped}
	entities := selectEntities(in.entities, cfg, &summary)

	healthStore, snapshotStore, runStore := storesOf(mgr)
	summary.RunID = beginRun(runStore, cfg, start)

	// --- 2. Stores are read exactly once ---
	cache := NewHealthCache(now)
	cache.Load(healthStore)
	snapshot := NewSnapshot()
	snapshot.Load(snapshotStore)
	contract.LogInfo("Starting build", logrus.Fields{
		"run_id":   summary.RunID,
		"entities": len(entities),
		"cached":   cache.Len(),
		"snapshot": snapshot.Len(),
	})

	// --- 3. Per-entity scoring ---
	a := &analyzer{
		ctx:       ctx,
		activity:  deps.Activity,
		extractor: tags.NewExtractor(in.table),
		overrides: in.overrides,
		cache:     cache,
		snapshot:  snapshot,
		summary:   &summary,
	}
	projects, err := a.analyzeEntities(entities, now)
	if err != nil {
		return nil, summary, err
	}
	projects = algo.RankProjects(projects, 0)
	summary.Processed = len(projects)
	summary.CacheHits = cache.Hits()

	// --- 4. Artifacts ---
	bundle := agg.NewBuilder(summary.RunID, now, cfg.MinTagShard, in.table).Build(projects)
	summary.Shards = len(bundle.Shards)
	if err := outwriter.WriteProjects(cfg.OutDir, projects, now); err != nil {
		return nil, summary, err
	}
	if err := outwriter.WriteIndex(cfg.OutDir, bundle); err != nil {
		return nil, summary, err
	}
	diff := NewSinceLastRun(in.previousIDs, projectIDs(projects))
	summary.NewSinceLastRun = diff.Count
	if err := outwriter.WriteNewSince(cfg.OutDir, diff); err != nil {
		return nil, summary, err
	}
	writeOptionalSections(ctx, cfg, deps, projects, bundle, in.table, &summary)

	// --- 5. Stores are written exactly once ---
	if err := cache.Flush(healthStore); err != nil {
		contract.LogWarn("Health cache not saved", err)
	}
	if err := snapshot.Flush(snapshotStore); err != nil {
		contract.LogWarn("Metrics snapshot not saved", err)
	}
	endRun(runStore, summary.RunID, projects, now)

	summary.Duration = time.Since(start)
	return projects, summary, nil
}

// loadInputs reads entities, overrides, the tag table and the previous run's ids.
// Only an unreadable entity file, override file or tag table is fatal.
func loadInputs(cfg *contract.Config) (buildInputs, error) {
	var in buildInputs
	var err error

	if in.entities, err = source.LoadEntities(cfg.InputPath); err != nil {
		return in, fmt.Errorf("failed to load entities: %w", err)
	}

	if in.overrides, in.dropped, err = source.LoadOverrides(cfg.OverridesPath); err != nil {
		return in, fmt.Errorf("failed to load overrides: %w", err)
	}
	if in.dropped > 0 {
		contract.LogWarn("Dropped malformed override entries", fmt.Errorf("%d entries in %s", in.dropped, cfg.OverridesPath))
	}

	if in.table, err = loadTable(cfg); err != nil {
		return in, err
	}

	previous := filepath.Join(cfg.OutDir, outwriter.ProjectsFile)
	if in.previousIDs, err = source.LoadPreviousIDs(previous); err != nil {
		contract.LogWarn("Previous project list unreadable, treating every project as new", err)
		in.previousIDs = nil
	}
	return in, nil
}

// loadTable returns the configured tag table, or the built-in one.
func loadTable(cfg *contract.Config) (tags.Table, error) {
	if cfg.TagTablePath == "" {
		return tags.DefaultTable(), nil
	}
	table, err := tags.LoadTable(cfg.TagTablePath)
	if err != nil {
		return tags.Table{}, fmt.Errorf("failed to load tag table: %w", err)
	}
	return table, nil
}

// storesOf unpacks the manager. A nil manager means no persistence at all.
func storesOf(mgr contract.CacheManager) (health, snapshot contract.CacheStore, runs contract.RunStore) {
	if mgr == nil {
		return nil, nil, nil
	}
	return mgr.GetHealthStore(), mgr.GetSnapshotStore(), mgr.GetRunStore()
}

// beginRun records the start of the run and returns its id. Tracking is best effort,
// so a failing run store still yields an id for the manifest.
func beginRun(runs contract.RunStore, cfg *contract.Config, start time.Time) string {
	if runs == nil {
		return uuid.NewString()
	}
	configParams := map[string]any{
		"input":         cfg.InputPath,
		"out":           cfg.OutDir,
		"min_tag_shard": cfg.MinTagShard,
		"min_stars":     cfg.MinStars,
		"min_downloads": cfg.MinDownloads,
		"result_limit":  cfg.ResultLimit,
	}
	runID, err := runs.BeginRun(start, configParams)
	if err != nil || runID == "" {
		contract.LogWarn("Run tracking initialization failed", err)
		return uuid.NewString()
	}
	return runID
}

// endRun stores the scores of every project and closes the run.
func endRun(runs contract.RunStore, runID string, projects []schema.Project, now time.Time) {
	if runs == nil {
		return
	}
	for _, p := range projects {
		if err := runs.RecordProjectScores(runID, projectScoreRecord(p, now)); err != nil {
			contract.LogWarn("Failed to record project scores", err)
			break
		}
	}
	if err := runs.EndRun(runID, time.Now(), len(projects)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

func projectScoreRecord(p schema.Project, now time.Time) schema.ProjectScoreRecord {
	var label string
	if p.Signals != nil {
		label = string(p.Signals.HealthLabel)
	}
	return schema.ProjectScoreRecord{
		ProjectKey:       p.Key,
		Source:           string(p.Source),
		AnalysisTime:     now,
		Stars:            int64(p.Stars),
		Downloads:        int64(p.Downloads),
		PopularityScore:  p.Popularity,
		HealthScore:      p.Health,
		PeopleScore:      p.People,
		Score:            p.Score,
		HealthLabel:      label,
		MomentumLabel:    string(p.Momentum.Label),
		NormalizedGrowth: p.Momentum.NormalizedGrowth,
	}
}

// writeOptionalSections writes parquet, graph and embeddings when enabled.
// A failing section is logged and named in the summary; it never fails the build.
func writeOptionalSections(ctx context.Context, cfg *contract.Config, deps BuildDeps, projects []schema.Project,
	bundle schema.IndexBundle, table tags.Table, summary *schema.BuildSummary,
) {
	skip := func(section string, err error) {
		contract.LogWarn(fmt.Sprintf("Skipping %s output", section), err)
		summary.SectionsSkipped = append(summary.SectionsSkipped, section)
	}

	if cfg.Parquet {
		path := filepath.Join(cfg.OutDir, outwriter.IndexParquet)
		if err := parquet.WriteIndexParquet(bundle.Items, path); err != nil {
			skip(ParquetSection, err)
		}
	}

	if cfg.Graph {
		g := graph.Build(projects, table)
		if err := outwriter.WriteJSONFile(filepath.Join(cfg.OutDir, outwriter.GraphFile), g); err != nil {
			skip(GraphSection, err)
		}
	}

	if cfg.Embed {
		if err := writeEmbeddings(ctx, cfg, deps.Embedder, projects); err != nil {
			skip(EmbeddingsSection, err)
		}
	}
}

// writeEmbeddings embeds every project as one whole batch call and writes embeddings.json.
func writeEmbeddings(ctx context.Context, cfg *contract.Config, embedder contract.Embedder, projects []schema.Project) error {
	if embedder == nil {
		return fmt.Errorf("no embedder configured: %w", embed.ErrNoAPIKey)
	}
	keys := make([]string, len(projects))
	texts := make([]string, len(projects))
	for i, p := range projects {
		keys[i] = p.Key
		texts[i] = embed.TextOf(p)
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedder returned %d vectors for %d projects", len(vectors), len(texts))
	}
	out := outwriter.Embeddings{Model: cfg.EmbedModel, Keys: keys, Vectors: vectors}
	if len(vectors) > 0 {
		out.Dimensions = len(vectors[0])
	}
	return outwriter.WriteEmbeddings(cfg.OutDir, out)
}

package cmd

import (
	"errors"
	"os"

	"github.com/huangsam/repodex/core"
	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/internal/embed"
	"github.com/huangsam/repodex/internal/outwriter"
	"github.com/huangsam/repodex/internal/source"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// buildCmd runs the full pipeline.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Score entities and write projects.json plus the sharded index",
	Long: `Read an entity file, compute health, momentum and scores, and write the catalog.

Writes to --out:
- projects.json - every processed project, flat
- index/ - manifest, facets, items, shards and per-project details
- new_since_last_run.json - ids that were not in the previous projects.json
- index.parquet, graph.json, embeddings.json - with --parquet, --graph, --embed

Health bundles are cached for 12 hours and star counts are snapshotted between runs
to derive momentum. The ranked top projects are printed at the end.

Examples:
  # Build from a JSON lines export with health signals
  repodex build --input entities.jsonl --activity activity.json

  # Reproducible build with every optional artifact
  repodex build -i entities.json --now 2025-06-01T00:00:00Z --parquet --graph --embed`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.InputPath == "" {
			contract.LogFatal("Cannot build", errors.New("--input is required"))
		}
		// A missing .env file is fine
		_ = godotenv.Load()

		deps, err := buildDeps()
		if err != nil {
			contract.LogFatal("Cannot build", err)
		}
		summary, err := core.ExecuteBuild(rootCtx, cfg, cacheManager, deps)
		if err != nil {
			contract.LogFatal("Build failed", err)
		}
		if err := outwriter.NewOutWriter().WriteSummary(summary, cfg); err != nil {
			contract.LogWarn("Failed to print build summary", err)
		}
	},
}

// buildDeps wires the activity source and, when --embed is set, the embedder.
// Without OPENAI_API_KEY the embeddings section is skipped rather than failing the build.
func buildDeps() (core.BuildDeps, error) {
	var deps core.BuildDeps
	if cfg.ActivityPath != "" {
		activity, err := source.LoadActivity(cfg.ActivityPath)
		if err != nil {
			return deps, err
		}
		deps.Activity = activity
	}
	if cfg.Embed {
		if key := os.Getenv(embed.EnvAPIKey); key != "" {
			embedder, err := embed.NewOpenAIEmbedder(key, cfg.EmbedModel, os.Getenv(embed.EnvBaseURL), cfg.EmbedBatch)
			if err != nil {
				return deps, err
			}
			deps.Embedder = embedder
		}
	}
	return deps, nil
}

// Package cmd defines the command-line interface for repodex.
package cmd

import (
	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the store subcommands to their parents
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	snapshotCmd.AddCommand(snapshotClearCmd)
	snapshotCmd.AddCommand(snapshotStatusCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("out", contract.DefaultOutDir, "Output directory for projects.json and the index")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of ranked projects to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("tag-table", "", "Path to a YAML tag rule table (default: built-in)")
	rootCmd.PersistentFlags().Bool("embed", false, "Write embeddings.json using the OpenAI embeddings API")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Health cache backend: sqlite or mysql or postgresql or json or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string or file path for the health cache")
	rootCmd.PersistentFlags().String("snapshot-backend", string(schema.SQLiteBackend), "Snapshot backend: sqlite or mysql or postgresql or json or none")
	rootCmd.PersistentFlags().String("snapshot-db-connect", "", "Connection string or file path for the snapshot store")
	rootCmd.PersistentFlags().String("runs-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Connection string for run history (must differ from the cache file)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of buildCmd to Viper
	buildCmd.Flags().StringP("input", "i", "", "Entity file: JSON array or JSON lines")
	buildCmd.Flags().String("activity", "", "Activity file with GitHub health signals per full name")
	buildCmd.Flags().String("overrides", "", "YAML file of manual tag overrides keyed by source:name")
	buildCmd.Flags().Int("min-tag-shard", schema.MinTagShardSize, "Minimum members before a tag gets its own shard")
	buildCmd.Flags().Int("min-stars", 0, "Drop GitHub repositories below this many stars")
	buildCmd.Flags().Int("min-downloads", 0, "Drop Hugging Face models below this many downloads")
	buildCmd.Flags().Bool("parquet", false, "Also write index.parquet")
	buildCmd.Flags().Bool("graph", false, "Also write graph.json")
	buildCmd.Flags().String("embed-model", contract.DefaultEmbedModel, "Embedding model name")
	buildCmd.Flags().Int("embed-batch", contract.DefaultEmbedBatch, "Texts per embeddings request")
	buildCmd.Flags().String("now", "", "Fixed clock for the run in RFC3339 (default: current time)")
	if err := viper.BindPFlags(buildCmd.Flags()); err != nil {
		contract.LogFatal("Error binding build flags", err)
	}

	// Bind all flags of graphCmd to Viper
	graphCmd.Flags().Bool("publish", false, "Upsert the graph into Neo4j or Memgraph")
	graphCmd.Flags().String("graph-uri", "bolt://localhost:7687", "Bolt URI of the graph database")
	graphCmd.Flags().String("graph-user", "neo4j", "Graph database user")
	graphCmd.Flags().String("graph-password", "", "Graph database password (prefer REPODEX_GRAPH_PASSWORD)")
	if err := viper.BindPFlags(graphCmd.Flags()); err != nil {
		contract.LogFatal("Error binding graph flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", ":8080", "Listen address of the preview server")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}

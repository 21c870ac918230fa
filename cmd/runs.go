package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/internal/iocache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsCmd focused on build history management.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage build history tracking and exports",
	Long: `Manage the history of builds used for trend tracking and reporting.

When --runs-backend is set, every build stores:
- Run metadata (id, timestamps, configuration, project count)
- Per-project scores, labels and raw counts

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export history to Parquet for analytics
  clear   - Remove all tracked runs
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  repodex runs status --runs-backend sqlite

  # Export for analysis in pandas/DuckDB
  repodex runs export --runs-backend sqlite --output-file repodex-runs.parquet`,
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked runs and project scores",
	Long: `Delete all stored runs and per-project score history.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  repodex runs export --output-file backup.parquet
  repodex runs clear`,
	PreRunE: configSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsStatusCmd shows run history status.
var runsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run tracking statistics and connection details",
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := cacheManager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get runs status", err)
		}
		iocache.PrintRunsStatus(os.Stdout, status)
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs and project scores to Parquet.

Requires: --output-file parameter

Examples:
  repodex runs export --output-file repodex-runs.parquet
  duckdb -c "SELECT * FROM read_parquet('repodex-runs.runs.parquet') LIMIT 10"`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(os.Stdout, cacheManager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  repodex runs migrate --runs-backend postgresql --runs-db-connect "host=... dbname=..."

  # Rollback to initial state
  repodex runs migrate --target-version 0`,
	PreRunE: configSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

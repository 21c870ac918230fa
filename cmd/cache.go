package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/internal/iocache"
	"github.com/spf13/cobra"
)

// cacheCmd focused on health cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the health bundle cache",
	Long: `Manage the cache of per-repository health bundles.

A bundle is reused for 12 hours, so repeated builds skip recomputing health.

Supported backends: SQLite (default), MySQL, PostgreSQL, JSON file, or None (in-memory)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached bundles

Examples:
  # Check cache status
  repodex cache status

  # Force every bundle to be recomputed on the next build
  repodex cache clear`,
}

// cacheClearCmd clears the health cache.
var cacheClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove all cached health bundles",
	PreRunE: configSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearStore(iocache.HealthTable, cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Health cache cleared successfully.")
	},
}

// cacheStatusCmd shows health cache status.
var cacheStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display health cache statistics and connection details",
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := cacheManager.GetHealthStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, "Cache", status)
	},
}

// snapshotCmd focused on the star and download snapshot used for momentum.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage the popularity snapshot used for momentum",
	Long: `Manage the per-project snapshot of stars and downloads from the previous build.

Momentum compares the current counts against this snapshot. Clearing it makes
the next build treat every project as a first sighting with flat momentum.

Examples:
  repodex snapshot status
  repodex snapshot clear`,
}

// snapshotClearCmd clears the snapshot.
var snapshotClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove the popularity snapshot",
	PreRunE: configSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearStore(iocache.SnapshotTable, cfg.SnapshotBackend, cfg.SnapshotDBConnect); err != nil {
			contract.LogFatal("Failed to clear snapshot", err)
		}
		fmt.Println("Snapshot cleared successfully.")
	},
}

// snapshotStatusCmd shows snapshot status.
var snapshotStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display snapshot statistics and connection details",
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := cacheManager.GetSnapshotStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get snapshot status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, "Snapshot", status)
	},
}

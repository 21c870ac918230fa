package cmd

import (
	"os"

	"github.com/huangsam/repodex/core"
	"github.com/huangsam/repodex/internal/contract"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// checkCmd verifies credentials before a build.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify API credentials are present (fails on a missing required token)",
	Long: `Check the environment, and a .env file if present, for the tokens a build needs.

Required: GITHUB_TOKEN
Optional: HF_TOKEN
Required with --embed: OPENAI_API_KEY

Values are masked in the report. Exits non-zero when a required token is missing,
so it can gate a scheduled build.

Examples:
  repodex check
  repodex check --embed`,
	PreRunE: configSetup,
	Run: func(_ *cobra.Command, _ []string) {
		// A missing .env file is fine
		_ = godotenv.Load()
		if err := core.ExecuteCheck(os.Stdout, os.LookupEnv, cfg.Embed); err != nil {
			contract.LogFatal("Credential check failed", err)
		}
	},
}

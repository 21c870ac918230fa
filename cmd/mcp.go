package cmd

import (
	"github.com/huangsam/repodex/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Repodex MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents browse and search a built catalog.`,
	// Logs go to stderr, so stdout stays clean for the protocol
	PreRunE: configSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg.OutDir, version)
	},
}

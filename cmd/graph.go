package cmd

import (
	"github.com/huangsam/repodex/core"
	"github.com/huangsam/repodex/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// graphCmd rebuilds and optionally publishes the contributor graph.
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Rebuild graph.json from the last build and optionally publish it",
	Long: `Build the bipartite contributor/project graph from projects.json in --out.

With --publish the graph is merged into Neo4j or Memgraph over Bolt. Nodes are
upserted by id, so publishing twice is safe.

Examples:
  repodex graph
  REPODEX_GRAPH_PASSWORD=secret repodex graph --publish --graph-uri bolt://localhost:7687`,
	PreRunE: configSetup,
	Run: func(_ *cobra.Command, _ []string) {
		var target *core.GraphTarget
		if viper.GetBool("publish") {
			target = &core.GraphTarget{
				URI:      viper.GetString("graph-uri"),
				User:     viper.GetString("graph-user"),
				Password: viper.GetString("graph-password"),
			}
		}
		if _, err := core.ExecuteGraph(rootCtx, cfg, target); err != nil {
			contract.LogFatal("Graph failed", err)
		}
	},
}

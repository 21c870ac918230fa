package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/internal/web"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd previews a built output directory over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the built index locally with a small JSON API",
	Long: `Serve --out as static files and expose the index under /api.

Routes:
  GET /api/manifest
  GET /api/facets
  GET /api/shards/:name
  GET /api/projects/:slug
  GET /api/search?q=&tag=&source=&health_label=&limit=

Examples:
  repodex serve --out data --addr :8080`,
	PreRunE: configSetup,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := web.NewServer(cfg.OutDir).Run(ctx, viper.GetString("addr")); err != nil {
			contract.LogFatal("Server failed", err)
		}
	},
}

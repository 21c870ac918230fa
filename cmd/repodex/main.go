// Command repodex builds a ranked, faceted catalog of open-source projects.
package main

import (
	"github.com/huangsam/repodex/cmd"
	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/internal/iocache"
)

func main() {
	defer iocache.CloseCaching()
	cmd.SetCacheManager(iocache.Manager)

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}

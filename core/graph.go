package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/internal/graph"
	"github.com/huangsam/repodex/internal/outwriter"
	"github.com/sirupsen/logrus"
)

// GraphTarget is the Bolt endpoint a graph is published to.
type GraphTarget struct {
	URI      string
	User     string
	Password string
}

// ExecuteGraph rebuilds graph.json from the projects of the last build.
// With a target it also upserts the graph into Neo4j or Memgraph.
func ExecuteGraph(ctx context.Context, cfg *contract.Config, target *GraphTarget) (graph.Graph, error) {
	list, err := outwriter.ReadProjects(cfg.OutDir)
	if err != nil {
		return graph.Graph{}, fmt.Errorf("failed to read projects, run 'repodex build' first: %w", err)
	}
	table, err := loadTable(cfg)
	if err != nil {
		return graph.Graph{}, err
	}

	g := graph.Build(list.Projects, table)
	if err := outwriter.WriteJSONFile(filepath.Join(cfg.OutDir, outwriter.GraphFile), g); err != nil {
		return g, err
	}
	contract.LogInfo("Wrote graph", logrus.Fields{"nodes": len(g.Nodes), "links": len(g.Links)})

	if target == nil {
		return g, nil
	}
	if target.URI == "" {
		return g, errors.New("--graph-uri is required to publish")
	}
	runner, err := graph.NewBoltRunner(ctx, target.URI, target.User, target.Password)
	if err != nil {
		return g, err
	}
	defer func() { _ = runner.Close(ctx) }()

	if err := graph.Publish(ctx, runner, g); err != nil {
		return g, err
	}
	contract.LogInfo("Published graph", logrus.Fields{"uri": target.URI})
	return g, nil
}

package graph

import (
	"context"
	"fmt"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// QueryRunner executes one Cypher statement.
type QueryRunner interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	Close(ctx context.Context) error
}

// BoltRunner runs queries against a Neo4j or Memgraph server over Bolt.
type BoltRunner struct {
	driver neo4j.DriverWithContext
}

var _ QueryRunner = &BoltRunner{} // Compile-time check

// NewBoltRunner connects and verifies connectivity.
func NewBoltRunner(ctx context.Context, uri, username, password string) (*BoltRunner, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create graph driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach graph database at %s: %w", uri, err)
	}
	return &BoltRunner{driver: driver}, nil
}

// ExecuteQuery runs a statement and eagerly collects its result.
func (r *BoltRunner) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, r.driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// Close releases the driver.
func (r *BoltRunner) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// Cypher statements used by Publish. Nodes are merged on id so publishing is repeatable.
const (
	indexProjectQuery = "CREATE INDEX IF NOT EXISTS FOR (p:Project) ON (p.id)"
	indexPersonQuery  = "CREATE INDEX IF NOT EXISTS FOR (p:Person) ON (p.id)"
	mergeProjects     = `UNWIND $rows AS row
MERGE (p:Project {id: row.id})
SET p.label = row.label, p.url = row.url, p.full_name = row.full_name,
    p.score = row.score, p.stars = row.stars, p.topics = row.topics, p.use_cases = row.use_cases`
	mergePeople = `UNWIND $rows AS row
MERGE (p:Person {id: row.id})
SET p.label = row.label, p.url = row.url, p.avatar_url = row.avatar_url,
    p.project_count = row.project_count, p.total_score = row.total_score,
    p.total_contributions = row.total_contributions`
	mergeLinks = `UNWIND $rows AS row
MATCH (a:Person {id: row.source}), (b:Project {id: row.target})
MERGE (a)-[r:CONTRIBUTES_TO]->(b)
SET r.weight = row.weight, r.contributions = row.contributions`
)

// Publish upserts the graph into a property-graph database.
func Publish(ctx context.Context, runner QueryRunner, g Graph) error {
	for _, q := range []string{indexProjectQuery, indexPersonQuery} {
		if _, err := runner.ExecuteQuery(ctx, q, nil); err != nil {
			// Memgraph uses a different index syntax; the merge still works without one
			contract.LogWarn("Failed to create graph index", err)
		}
	}

	var projects, people []any
	for _, n := range g.Nodes {
		if n.Kind == ProjectKind {
			projects = append(projects, map[string]any{
				"id": n.ID, "label": n.Label, "url": n.URL, "full_name": n.FullName,
				"score": n.Score, "stars": n.Stars, "topics": stringsOrEmpty(n.Topics), "use_cases": stringsOrEmpty(n.UseCases),
			})
			continue
		}
		people = append(people, map[string]any{
			"id": n.ID, "label": n.Label, "url": n.URL, "avatar_url": n.AvatarURL,
			"project_count": n.ProjectCount, "total_score": n.TotalScore, "total_contributions": n.TotalContributions,
		})
	}
	links := make([]any, 0, len(g.Links))
	for _, l := range g.Links {
		links = append(links, map[string]any{
			"source": l.Source, "target": l.Target, "weight": l.Weight, "contributions": l.Contributions,
		})
	}

	for _, step := range []struct {
		name  string
		query string
		rows  []any
	}{
		{"projects", mergeProjects, projects},
		{"people", mergePeople, people},
		{"links", mergeLinks, links},
	} {
		if len(step.rows) == 0 {
			continue
		}
		if _, err := runner.ExecuteQuery(ctx, step.query, map[string]any{"rows": step.rows}); err != nil {
			return fmt.Errorf("failed to publish %s: %w", step.name, err)
		}
	}
	return nil
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Package graph builds the bipartite contributor/project graph of a catalog.
package graph

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/huangsam/repodex/core/tags"
	"github.com/huangsam/repodex/schema"
)

// Node kinds.
const (
	ProjectKind = "project"
	PersonKind  = "person"
)

// Node is a project or a person. Person fields are omitted on projects, and project
// fields are omitted on persons but always present on projects.
type Node struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`

	FullName string   `json:"full_name,omitempty"`
	Score    float64  `json:"score,omitempty"`
	Topics   []string `json:"topics,omitempty"`
	UseCases []string `json:"use_cases,omitempty"`
	Stars    int      `json:"stars,omitempty"`

	AvatarURL          string  `json:"avatar_url,omitempty"`
	ProjectCount       int     `json:"project_count,omitempty"`
	TotalScore         float64 `json:"total_score,omitempty"`
	TotalContributions int     `json:"total_contributions,omitempty"`
}

// MarshalJSON always writes score, stars, topics and use_cases for project nodes.
func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	if n.Kind != ProjectKind {
		return json.Marshal(plain(n))
	}
	topics, useCases := n.Topics, n.UseCases
	if topics == nil {
		topics = []string{}
	}
	if useCases == nil {
		useCases = []string{}
	}
	return json.Marshal(struct {
		plain
		Score    float64  `json:"score"`
		Topics   []string `json:"topics"`
		UseCases []string `json:"use_cases"`
		Stars    int      `json:"stars"`
	}{plain(n), n.Score, topics, useCases, n.Stars})
}

// Link connects a person to a project.
type Link struct {
	Source        string  `json:"source"`
	Target        string  `json:"target"`
	Weight        float64 `json:"weight"`
	Contributions int     `json:"contributions"`
}

// Graph is the graph.json artifact.
type Graph struct {
	NodeCount    int    `json:"node_count"`
	LinkCount    int    `json:"link_count"`
	PersonCount  int    `json:"person_count"`
	ProjectCount int    `json:"project_count"`
	Nodes        []Node `json:"nodes"`
	Links        []Link `json:"links"`
}

// ProjectID and PersonID build node identifiers.
func ProjectID(fullName string) string { return "proj:" + fullName }

// PersonID builds the node identifier of a contributor login.
func PersonID(login string) string { return "person:" + login }

// contributorsOf prefers the entity's own list and falls back to the activity sample.
func contributorsOf(p schema.Project) []schema.Contributor {
	if len(p.Contributors) > 0 {
		return p.Contributors
	}
	if p.Signals != nil {
		return p.Signals.TopContributors
	}
	return nil
}

// Build links GitHub projects with their contributors. Hugging Face entries are left out
// because their contributor data is not reliable. Use cases are the task tags of a project.
func Build(projects []schema.Project, table tags.Table) Graph {
	nodes := make(map[string]*Node)
	links := make(map[[2]string]*Link)

	for _, p := range projects {
		contributors := contributorsOf(p)
		if p.Source != schema.GitHubSource || p.FullName == "" || len(contributors) == 0 {
			continue
		}
		projID := ProjectID(p.FullName)
		nodes[projID] = &Node{
			ID:       projID,
			Kind:     ProjectKind,
			Label:    p.Name,
			URL:      p.URL,
			FullName: p.FullName,
			Score:    p.Score,
			Topics:   p.Topics,
			UseCases: useCases(p.Tags, table),
			Stars:    p.Stars,
		}

		for _, c := range contributors {
			if c.Login == "" {
				continue
			}
			personID := PersonID(c.Login)
			if _, ok := nodes[personID]; !ok {
				url := c.URL
				if url == "" {
					url = "https://github.com/" + c.Login
				}
				nodes[personID] = &Node{ID: personID, Kind: PersonKind, Label: c.Login, URL: url, AvatarURL: c.AvatarURL}
			}
			// A repeated pair keeps the last sample, as an undirected simple graph would
			contributions := max(c.Contributions, 0)
			links[[2]string{personID, projID}] = &Link{
				Source:        personID,
				Target:        projID,
				Weight:        float64(max(c.Contributions, 1)) * (1 + p.Score/100),
				Contributions: contributions,
			}
		}
	}

	g := Graph{Nodes: []Node{}, Links: []Link{}}
	for _, l := range links {
		person, project := nodes[l.Source], nodes[l.Target]
		person.ProjectCount++
		person.TotalScore += project.Score
		person.TotalContributions += l.Contributions
		g.Links = append(g.Links, *l)
	}
	for _, n := range nodes {
		g.Nodes = append(g.Nodes, *n)
		if n.Kind == PersonKind {
			g.PersonCount++
		} else {
			g.ProjectCount++
		}
	}

	slices.SortFunc(g.Nodes, func(a, b Node) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	slices.SortFunc(g.Links, func(a, b Link) int {
		if c := cmp.Compare(a.Target, b.Target); c != 0 {
			return c
		}
		return cmp.Compare(a.Source, b.Source)
	})
	g.NodeCount = len(g.Nodes)
	g.LinkCount = len(g.Links)
	return g
}

func useCases(labels []string, table tags.Table) []string {
	var out []string
	for _, l := range labels {
		if table.CategoryOf(l) == tags.TaskCategory {
			out = append(out, l)
		}
	}
	return out
}

package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/huangsam/repodex/core/tags"
	"github.com/huangsam/repodex/schema"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ghProject(fullName string, score float64, contributors ...schema.Contributor) schema.Project {
	e := schema.Entity{
		Source: schema.GitHubSource, ID: fullName, Name: fullName, FullName: fullName,
		Stars: 100, Topics: []string{"ml"}, Contributors: contributors,
	}
	return schema.Project{Entity: e, Key: schema.JoinKey(e), Tags: []string{"vision", "detection"}, Scores: schema.Scores{Score: score}}
}

func TestBuild(t *testing.T) {
	alice := schema.Contributor{Login: "alice", Contributions: 10, AvatarURL: "https://avatars/alice"}
	bob := schema.Contributor{Login: "bob", Contributions: 2}

	hf := schema.Project{Entity: schema.Entity{Source: schema.HuggingFaceSource, ID: "org/model", Contributors: []schema.Contributor{alice}}}
	lonely := ghProject("org/lonely", 10)
	fromSignals := ghProject("org/signals", 0)
	fromSignals.Signals = &schema.HealthBundle{TopContributors: []schema.Contributor{{Login: "carol", Contributions: 4}}}

	g := Build([]schema.Project{
		ghProject("org/a", 50, alice, bob, schema.Contributor{Login: ""}),
		ghProject("org/b", 100, alice),
		hf,
		lonely,
		fromSignals,
	}, tags.DefaultTable())

	assert.Equal(t, 3, g.ProjectCount)
	assert.Equal(t, 3, g.PersonCount)
	assert.Equal(t, 6, g.NodeCount)
	assert.Equal(t, 4, g.LinkCount)
	assert.Len(t, g.Nodes, g.NodeCount)
	assert.Len(t, g.Links, g.LinkCount)

	nodes := map[string]Node{}
	for _, n := range g.Nodes {
		nodes[n.ID] = n
	}

	a := nodes["proj:org/a"]
	assert.Equal(t, ProjectKind, a.Kind)
	assert.Equal(t, []string{"detection"}, a.UseCases)
	assert.Equal(t, []string{"ml"}, a.Topics)
	assert.Equal(t, 100, a.Stars)

	al := nodes["person:alice"]
	assert.Equal(t, 2, al.ProjectCount)
	assert.Equal(t, 150.0, al.TotalScore)
	assert.Equal(t, 20, al.TotalContributions)
	assert.Equal(t, "https://avatars/alice", al.AvatarURL)
	assert.Equal(t, "https://github.com/alice", al.URL)

	_, ok := nodes["person:carol"]
	assert.True(t, ok, "activity sample stands in for missing entity contributors")

	for _, l := range g.Links {
		if l.Source == "person:alice" && l.Target == "proj:org/a" {
			assert.InDelta(t, 15.0, l.Weight, 1e-9)
			assert.Equal(t, 10, l.Contributions)
		}
		if l.Source == "person:alice" && l.Target == "proj:org/b" {
			assert.InDelta(t, 20.0, l.Weight, 1e-9)
		}
	}
}

func TestNodeJSON(t *testing.T) {
	zero := ghProject("org/zero", 0, schema.Contributor{Login: "dave"})
	zero.Stars = 0
	zero.Topics = nil
	g := Build([]schema.Project{zero}, tags.Table{})
	require.Len(t, g.Nodes, 2)

	data, err := json.Marshal(g)
	require.NoError(t, err)
	var decoded struct {
		Nodes []map[string]any `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, n := range decoded.Nodes {
		switch n["kind"] {
		case ProjectKind:
			assert.Equal(t, 0.0, n["score"])
			assert.Equal(t, 0.0, n["stars"])
			assert.Equal(t, []any{}, n["topics"])
			assert.Equal(t, []any{}, n["use_cases"])
		case PersonKind:
			assert.NotContains(t, n, "score")
			assert.NotContains(t, n, "use_cases")
		}
	}

	var roundTrip Graph
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	require.Len(t, roundTrip.Nodes, 2)
	assert.Equal(t, g.Nodes[0].ID, roundTrip.Nodes[0].ID)
}

func TestBuildEmpty(t *testing.T) {
	g := Build(nil, tags.DefaultTable())
	assert.Zero(t, g.NodeCount)
	assert.NotNil(t, g.Nodes)
	assert.NotNil(t, g.Links)
}

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	args := m.Called(ctx, query, params)
	return neo4j.EagerResult{}, args.Error(0)
}

func (m *mockRunner) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	g := Build([]schema.Project{ghProject("org/a", 50, schema.Contributor{Login: "alice", Contributions: 3})}, tags.DefaultTable())

	t.Run("upserts nodes then links", func(t *testing.T) {
		runner := &mockRunner{}
		runner.On("ExecuteQuery", ctx, indexProjectQuery, mock.Anything).Return(errors.New("unsupported syntax"))
		runner.On("ExecuteQuery", ctx, indexPersonQuery, mock.Anything).Return(nil)
		runner.On("ExecuteQuery", ctx, mergeProjects, mock.MatchedBy(func(p map[string]any) bool {
			rows, _ := p["rows"].([]any)
			return len(rows) == 1
		})).Return(nil)
		runner.On("ExecuteQuery", ctx, mergePeople, mock.Anything).Return(nil)
		runner.On("ExecuteQuery", ctx, mergeLinks, mock.Anything).Return(nil)

		require.NoError(t, Publish(ctx, runner, g))
		runner.AssertExpectations(t)
	})

	t.Run("merge failure is returned", func(t *testing.T) {
		runner := &mockRunner{}
		runner.On("ExecuteQuery", ctx, mock.Anything, mock.Anything).Return(errors.New("down"))

		err := Publish(ctx, runner, g)
		assert.ErrorContains(t, err, "failed to publish projects")
	})

	t.Run("empty graph only creates indices", func(t *testing.T) {
		runner := &mockRunner{}
		runner.On("ExecuteQuery", ctx, mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, Publish(ctx, runner, Graph{}))
		runner.AssertNumberOfCalls(t, "ExecuteQuery", 2)
	})
}

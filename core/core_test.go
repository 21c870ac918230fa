package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repodex/core/agg"
	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/internal/graph"
	"github.com/huangsam/repodex/internal/iocache"
	"github.com/huangsam/repodex/internal/outwriter"
	"github.com/huangsam/repodex/internal/source"
	"github.com/huangsam/repodex/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// perfectActivity maximizes every health term as of testNow.
func perfectActivity() map[string]any {
	logins := make([]string, 20)
	for i := range logins {
		logins[i] = string(rune('a' + i))
	}
	allTime := make([]schema.Contributor, 16)
	for i := range allTime {
		allTime[i] = schema.Contributor{Login: logins[i], Contributions: 50}
	}
	return map[string]any{
		"commits":       schema.CommitActivity{PushedAt: testNow, Commits30d: 100, Commits90d: 300},
		"release":       schema.ReleaseInfo{Tag: "v2.0.0", PublishedAt: testNow.Add(-2 * day)},
		"contributors":  schema.ContributorActivity{Logins30d: logins, Logins90d: logins, AllTime: allTime},
		"pull_requests": schema.PullRequestActivity{Merged60d: 40, MergeLatenciesDays: []float64{1, 2}},
		"issues":        schema.IssueActivity{Opened60d: 10, Closed60d: 12, CloseLatenciesDays: []float64{3}},
	}
}

type fixture struct {
	cfg      *contract.Config
	mgr      *iocache.CacheStoreManager
	activity *source.FileActivitySource
}

func newFixture(t *testing.T, entities []schema.Entity) fixture {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "entities.json")
	writeJSON(t, input, entities)

	activityPath := filepath.Join(dir, "activity.json")
	writeJSON(t, activityPath, map[string]any{"org/detector": perfectActivity()})
	activity, err := source.LoadActivity(activityPath)
	require.NoError(t, err)

	overrides := filepath.Join(dir, "overrides.yaml")
	require.NoError(t, os.WriteFile(overrides, []byte("github:org/detector: [featured]\nbogus:key: [x]\n"), 0o644))

	cfg := &contract.Config{
		InputPath:     input,
		OverridesPath: overrides,
		OutDir:        filepath.Join(dir, "out"),
		OutputFile:    filepath.Join(dir, "top.txt"),
		Output:        schema.TextOut,
		Precision:     1,
		MinTagShard:   1,
		Now:           testNow,
	}
	mgr := iocache.NewCacheStoreManager(iocache.NewMemoryStore(), iocache.NewMemoryStore(), nil)
	return fixture{cfg: cfg, mgr: mgr, activity: activity}
}

func sampleEntities() []schema.Entity {
	return []schema.Entity{
		{
			Source: schema.GitHubSource, ID: "101", Name: "detector", FullName: "org/detector",
			Description: "Real-time object detection with PyTorch", License: "MIT",
			Stars: 12000, Forks: 800, Topics: []string{"yolo"}, UpdatedAt: testNow.Add(-day),
		},
		{
			Source: schema.HuggingFaceSource, ID: "org/whisper-small", Name: "whisper-small",
			Description: "speech recognition model", Downloads: 5000, Likes: 40, License: "apache-2.0",
		},
		{Source: schema.GitHubSource, ID: "", Name: "no-id"},
		{Source: "gitlab", ID: "x", Name: "unknown"},
		{Source: schema.GitHubSource, ID: "101", Name: "duplicate", FullName: "org/other"},
		{Source: schema.GitHubSource, ID: "102", Name: "tiny", FullName: "org/tiny", Stars: 3},
	}
}

func TestRunBuildEndToEnd(t *testing.T) {
	f := newFixture(t, sampleEntities())
	f.cfg.MinStars = 10
	f.cfg.Graph = true

	projects, summary, err := RunBuild(context.Background(), f.cfg, f.mgr, BuildDeps{Activity: f.activity})
	require.NoError(t, err)

	assert.Equal(t, 6, summary.TotalInput)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.SkippedInvalid)
	assert.Equal(t, 1, summary.SkippedDuplicate)
	assert.Equal(t, 1, summary.Filtered)
	assert.Equal(t, 1, summary.OverridesDropped)
	assert.Equal(t, 1, summary.Recomputed)
	assert.Zero(t, summary.CacheHits)
	assert.Zero(t, summary.SignalsMissing)
	assert.Equal(t, 2, summary.NewSinceLastRun)
	assert.NotEmpty(t, summary.RunID)
	assert.Empty(t, summary.SectionsSkipped)

	require.Len(t, projects, 2)
	detector := projects[0]
	assert.Equal(t, "github:org/detector", detector.Key)
	assert.Equal(t, 100.0, detector.Health)
	assert.Equal(t, 99.0, detector.Popularity)
	require.NotNil(t, detector.Signals)
	assert.Equal(t, schema.AliveHealth, detector.Signals.HealthLabel)
	assert.Contains(t, detector.Tags, "detection")
	assert.Contains(t, detector.Tags, "featured")
	assert.Contains(t, detector.Tags, "permissive")
	assert.Equal(t, schema.FlatMomentum, detector.Momentum.Label)
	assert.Zero(t, detector.Momentum.DeltaStars)

	whisper := projects[1]
	assert.Nil(t, whisper.Signals)
	assert.Contains(t, whisper.Tags, "speech-recognition")

	for _, name := range []string{outwriter.ProjectsFile, outwriter.NewSinceFile, outwriter.GraphFile} {
		assert.FileExists(t, filepath.Join(f.cfg.OutDir, name))
	}
	manifest, err := outwriter.ReadJSONFile[schema.Manifest](filepath.Join(f.cfg.OutDir, outwriter.IndexDir, agg.ManifestFile))
	require.NoError(t, err)
	assert.Equal(t, 2, manifest.Total)
	assert.Equal(t, summary.RunID, manifest.RunID)
	assert.Equal(t, summary.Shards, len(manifest.Shards))

	g, err := outwriter.ReadJSONFile[graph.Graph](filepath.Join(f.cfg.OutDir, outwriter.GraphFile))
	require.NoError(t, err)
	assert.Equal(t, 1, g.ProjectCount)
	assert.Equal(t, 16, g.PersonCount)
}

func TestRunBuildDerivesDaysSinceUpdate(t *testing.T) {
	f := newFixture(t, []schema.Entity{
		{
			Source: schema.HuggingFaceSource, ID: "org/fresh", Name: "fresh",
			Downloads: 100, UpdatedAt: testNow.Add(-5 * day),
		},
		{Source: schema.HuggingFaceSource, ID: "org/undated", Name: "undated", Downloads: 100},
	})

	projects, _, err := RunBuild(context.Background(), f.cfg, nil, BuildDeps{})
	require.NoError(t, err)
	require.Len(t, projects, 2)

	byKey := map[string]schema.Project{}
	for _, p := range projects {
		byKey[p.Key] = p
	}
	fresh := byKey["huggingface:org/fresh"]
	require.NotNil(t, fresh.DaysSinceUpdate)
	assert.Equal(t, 5, *fresh.DaysSinceUpdate)
	assert.Equal(t, 80.0, fresh.Health)

	undated := byKey["huggingface:org/undated"]
	assert.Nil(t, undated.DaysSinceUpdate)
	assert.Equal(t, 50.0, undated.Health)

	items, err := outwriter.NewIndexReader(f.cfg.OutDir).Search(outwriter.SearchQuery{Text: "fresh"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].DaysSinceUpdate)
}

func TestRunBuildSecondRun(t *testing.T) {
	f := newFixture(t, sampleEntities()[:2])
	ctx := context.Background()
	deps := BuildDeps{Activity: f.activity}

	_, first, err := RunBuild(ctx, f.cfg, f.mgr, deps)
	require.NoError(t, err)
	assert.Equal(t, 2, first.NewSinceLastRun)

	// Eleven hours later the detector gained stars and a new model appeared
	entities := sampleEntities()[:2]
	entities[0].Stars = 12600
	entities = append(entities, schema.Entity{Source: schema.HuggingFaceSource, ID: "org/new-model", Name: "new-model", Downloads: 10})
	writeJSON(t, f.cfg.InputPath, entities)
	f.cfg.Now = testNow.Add(11 * time.Hour)

	projects, second, err := RunBuild(ctx, f.cfg, f.mgr, deps)
	require.NoError(t, err)
	assert.Equal(t, 1, second.CacheHits)
	assert.Zero(t, second.Recomputed)
	assert.Equal(t, 1, second.NewSinceLastRun)

	diff, err := outwriter.ReadJSONFile[schema.NewSince](filepath.Join(f.cfg.OutDir, outwriter.NewSinceFile))
	require.NoError(t, err)
	assert.Equal(t, []string{"org/new-model"}, diff.IDs)

	for _, p := range projects {
		if p.Key == "github:org/detector" {
			assert.Equal(t, 600, p.Momentum.DeltaStars)
			assert.Equal(t, 1.0, p.Momentum.WeeksElapsed)
			assert.Equal(t, schema.RisingMomentum, p.Momentum.Label)
		}
	}

	// Thirteen hours after the first run the cached bundle is stale again
	f.cfg.Now = testNow.Add(13 * time.Hour)
	_, third, err := RunBuild(ctx, f.cfg, f.mgr, deps)
	require.NoError(t, err)
	assert.Zero(t, third.CacheHits)
	assert.Equal(t, 1, third.Recomputed)
}

func TestRunBuildOptionalSections(t *testing.T) {
	f := newFixture(t, sampleEntities()[:2])
	f.cfg.Embed = true
	f.cfg.EmbedModel = "test-model"
	f.cfg.Parquet = true

	embedder := &mockEmbedder{}
	embedder.On("Embed", mock.Anything, mock.MatchedBy(func(texts []string) bool { return len(texts) == 2 })).
		Return([][]float32{{1, 0}, {0, 1}}, nil)

	_, summary, err := RunBuild(context.Background(), f.cfg, nil, BuildDeps{Activity: f.activity, Embedder: embedder})
	require.NoError(t, err)
	assert.Empty(t, summary.SectionsSkipped)
	assert.FileExists(t, filepath.Join(f.cfg.OutDir, outwriter.IndexParquet))

	e, err := outwriter.ReadJSONFile[outwriter.Embeddings](filepath.Join(f.cfg.OutDir, outwriter.EmbeddingsFile))
	require.NoError(t, err)
	assert.Equal(t, 2, e.Dimensions)
	assert.Equal(t, "github:org/detector", e.Keys[0])

	t.Run("failing embedder skips the section", func(t *testing.T) {
		failing := &mockEmbedder{}
		failing.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))
		_, summary, err := RunBuild(context.Background(), f.cfg, nil, BuildDeps{Embedder: failing})
		require.NoError(t, err)
		assert.Equal(t, []string{EmbeddingsSection}, summary.SectionsSkipped)
	})

	t.Run("missing embedder skips the section", func(t *testing.T) {
		_, summary, err := RunBuild(context.Background(), f.cfg, nil, BuildDeps{})
		require.NoError(t, err)
		assert.Equal(t, []string{EmbeddingsSection}, summary.SectionsSkipped)
	})
}

func TestRunBuildRecordsRun(t *testing.T) {
	f := newFixture(t, sampleEntities()[:2])

	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", mock.Anything, mock.Anything).Return("run-42", nil)
	runs.On("RecordProjectScores", "run-42", mock.Anything).Return(nil)
	runs.On("EndRun", "run-42", mock.Anything, 2).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetHealthStore").Return(nil)
	mgr.On("GetSnapshotStore").Return(nil)
	mgr.On("GetRunStore").Return(runs)

	_, summary, err := RunBuild(context.Background(), f.cfg, mgr, BuildDeps{})
	require.NoError(t, err)
	assert.Equal(t, "run-42", summary.RunID)
	runs.AssertNumberOfCalls(t, "RecordProjectScores", 2)
	runs.AssertExpectations(t)
	mgr.AssertExpectations(t)
}

func TestRunBuildFatalInputs(t *testing.T) {
	f := newFixture(t, nil)

	f.cfg.InputPath = filepath.Join(t.TempDir(), "missing.json")
	_, _, err := RunBuild(context.Background(), f.cfg, nil, BuildDeps{})
	assert.ErrorContains(t, err, "failed to load entities")

	f = newFixture(t, sampleEntities()[:1])
	require.NoError(t, os.WriteFile(f.cfg.OverridesPath, []byte("- not\n- a mapping\n"), 0o644))
	_, _, err = RunBuild(context.Background(), f.cfg, nil, BuildDeps{})
	assert.ErrorContains(t, err, "failed to load overrides")

	f = newFixture(t, sampleEntities()[:1])
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = RunBuild(ctx, f.cfg, nil, BuildDeps{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteBuildPrintsTopProjects(t *testing.T) {
	f := newFixture(t, sampleEntities()[:2])
	f.cfg.ResultLimit = 1

	summary, err := ExecuteBuild(context.Background(), f.cfg, f.mgr, BuildDeps{Activity: f.activity})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)

	data, err := os.ReadFile(f.cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "org/detector")
	assert.NotContains(t, string(data), "whisper-small")
}

type mockEmbedder struct {
	mock.Mock
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	vectors, _ := args.Get(0).([][]float32)
	return vectors, args.Error(1)
}

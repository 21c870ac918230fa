package outwriter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/repodex/core/agg"
	"github.com/huangsam/repodex/core/tags"
	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleProjects() []schema.Project {
	a := schema.Entity{Source: schema.GitHubSource, ID: "1", Name: "repo", FullName: "org/repo", Stars: 12000, Forks: 800}
	b := schema.Entity{Source: schema.HuggingFaceSource, ID: "org/model", Name: "model", Downloads: 5000}
	return []schema.Project{
		{
			Entity:  a,
			Key:     schema.JoinKey(a),
			Tags:    []string{"pytorch", "vision"},
			Signals: &schema.HealthBundle{HealthScore: 0.8, HealthLabel: schema.AliveHealth},
			Scores:  schema.Scores{Popularity: 99, Health: 80, People: 70, Score: 83},
			Momentum: schema.Momentum{
				Label: schema.FlatMomentum, LegacyLabel: schema.FlatLegacy,
			},
		},
		{
			Entity: b,
			Key:    schema.JoinKey(b),
			Tags:   []string{"text"},
			Scores: schema.Scores{Popularity: 35, Health: 50, People: 30.8, Score: 38.6},
		},
	}
}

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{"precision 1", 1, 3.14159, "3.1"},
		{"precision 2", 2, 3.14159, "3.14"},
		{"negative value", 2, -42.567, "-42.57"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, intFmt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "%d", intFmt)
		})
	}
}

func TestWriteAndReadJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.json")
	require.NoError(t, WriteJSONFile(path, map[string]int{"a": 1}))

	got, err := ReadJSONFile[map[string]int](path)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should remain")

	_, err = ReadJSONFile[map[string]int](filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteProjects(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteProjects(dir, sampleProjects(), testTime))

	list, err := ReadProjects(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, testTime, list.GeneratedAt)
	assert.Equal(t, "github:org/repo", list.Projects[0].Key)
	require.NotNil(t, list.Projects[0].Signals)
	assert.Equal(t, schema.AliveHealth, list.Projects[0].Signals.HealthLabel)

	require.NoError(t, WriteProjects(dir, nil, testTime))
	data, err := os.ReadFile(filepath.Join(dir, ProjectsFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"projects": []`)
}

func TestWriteIndex(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, IndexDir, "shards", "tag-gone.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0o644))

	bundle := agg.NewBuilder("run-1", testTime, 1, tags.Table{}).Build(sampleProjects())
	require.NoError(t, WriteIndex(dir, bundle))

	assert.NoFileExists(t, stale)
	for _, f := range []string{agg.ManifestFile, agg.FacetsFile, agg.ItemsFile} {
		assert.FileExists(t, filepath.Join(dir, IndexDir, f))
	}
	for _, ref := range bundle.Manifest.Shards {
		assert.FileExists(t, filepath.Join(dir, IndexDir, ref.File))
	}
	for _, item := range bundle.Items {
		assert.FileExists(t, filepath.Join(dir, IndexDir, item.Detail))
	}

	manifest, err := ReadJSONFile[schema.Manifest](filepath.Join(dir, IndexDir, agg.ManifestFile))
	require.NoError(t, err)
	assert.Equal(t, bundle.Manifest.Total, manifest.Total)
	assert.Len(t, manifest.Shards, len(bundle.Shards))
}

func TestWriteNewSince(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteNewSince(dir, schema.NewSince{}))
	got, err := ReadJSONFile[schema.NewSince](filepath.Join(dir, NewSinceFile))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Count)
	assert.Equal(t, []string{}, got.IDs)
}

func TestPrintProjects(t *testing.T) {
	ranked := schema.EnrichProjects(sampleProjects())

	t.Run("csv", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "top.csv")
		cfg := &contract.Config{Output: schema.CSVOut, OutputFile: out, Precision: 1}
		require.NoError(t, PrintProjects(ranked, cfg, time.Second))

		f, err := os.Open(out)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		records, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "rank", records[0][0])
		assert.Equal(t, []string{"1", "github:org/repo", "github", "org/repo", "83.0"}, records[1][:5])
		assert.Equal(t, "pytorch|vision", records[1][len(records[1])-1])
		assert.Equal(t, "", records[2][8], "huggingface has no health label")
	})

	t.Run("json", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "top.json")
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: out, Precision: 1}
		require.NoError(t, PrintProjects(ranked, cfg, time.Second))

		got, err := ReadJSONFile[[]schema.RankedProject](out)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 2, got[1].Rank)
	})

	t.Run("table", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "top.txt")
		cfg := &contract.Config{Output: schema.TextOut, OutputFile: out, Precision: 1, Width: 160}
		require.NoError(t, PrintProjects(ranked, cfg, time.Second))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "org/repo")
		assert.Contains(t, string(data), "Showing top 2 projects")
	})
}

func TestPrintBuildSummary(t *testing.T) {
	summary := schema.BuildSummary{
		RunID:           "run-1",
		TotalInput:      5,
		Processed:       3,
		SkippedInvalid:  1,
		Filtered:        1,
		SectionsSkipped: []string{"embeddings"},
		Duration:        1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	require.NoError(t, PrintBuildSummary(&buf, summary, &contract.Config{Output: schema.TextOut}))
	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "Sections skipped")
	assert.Contains(t, out, "embeddings")
	assert.Contains(t, out, "1.5s")

	buf.Reset()
	require.NoError(t, PrintBuildSummary(&buf, summary, &contract.Config{Output: schema.JSONOut}))
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"processed": 3`)
}

func TestGetMaxTableNameWidth(t *testing.T) {
	assert.Equal(t, 20, GetMaxTableNameWidth(&contract.Config{Width: 80}))
	assert.Equal(t, 35, GetMaxTableNameWidth(&contract.Config{Width: 130}))
	assert.Equal(t, 60, GetMaxTableNameWidth(&contract.Config{Width: 400}))
}

func TestIndexReader(t *testing.T) {
	dir := t.TempDir()
	bundle := agg.NewBuilder("run-1", testTime, 1, tags.Table{}).Build(sampleProjects())
	require.NoError(t, WriteIndex(dir, bundle))
	r := NewIndexReader(dir)

	manifest, err := r.Manifest()
	require.NoError(t, err)
	assert.Equal(t, "run-1", manifest.RunID)

	facets, err := r.Facets()
	require.NoError(t, err)
	assert.Equal(t, 1, facets[schema.SourceFacet]["huggingface"])

	shard, err := r.Shard("source-github")
	require.NoError(t, err)
	assert.Equal(t, 1, shard.Count)

	detail, err := r.Detail(bundle.Items[0].Slug)
	require.NoError(t, err)
	assert.Equal(t, bundle.Items[0].Key, detail.Key)

	for _, bad := range []string{"../manifest", "Source-GitHub", "", "tag-missing"} {
		_, err := r.Shard(bad)
		assert.ErrorIs(t, err, ErrArtifactNotFound, bad)
	}
	_, err = r.Detail("../../etc/passwd")
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	tests := []struct {
		name     string
		query    SearchQuery
		expected []string
	}{
		{"everything", SearchQuery{}, []string{"github:org/repo", "huggingface:org/model"}},
		{"by tag", SearchQuery{Tag: "vision"}, []string{"github:org/repo"}},
		{"by source", SearchQuery{Source: schema.HuggingFaceSource}, []string{"huggingface:org/model"}},
		{"by health", SearchQuery{HealthLabel: schema.AliveHealth}, []string{"github:org/repo"}},
		{"by text", SearchQuery{Text: "MODEL"}, []string{"huggingface:org/model"}},
		{"limit", SearchQuery{Limit: 1}, []string{"github:org/repo"}},
		{"no match", SearchQuery{Tag: "audio"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := r.Search(tt.query)
			require.NoError(t, err)
			var keys []string
			for _, it := range items {
				keys = append(keys, it.Key)
			}
			assert.Equal(t, tt.expected, keys)
		})
	}

	_, err = NewIndexReader(t.TempDir()).Manifest()
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

package outwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/repodex/core/agg"
	"github.com/huangsam/repodex/schema"
)

// Artifact file and directory names under the output directory.
const (
	ProjectsFile   = "projects.json"
	IndexDir       = "index"
	NewSinceFile   = "new_since_last_run.json"
	IndexParquet   = "index.parquet"
	GraphFile      = "graph.json"
	EmbeddingsFile = "embeddings.json"
)

// ProjectList is the legacy flat list of every project of a run.
type ProjectList struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Count       int              `json:"count"`
	Projects    []schema.Project `json:"projects"`
}

// WriteProjects writes the legacy projects.json.
func WriteProjects(outDir string, projects []schema.Project, generatedAt time.Time) error {
	if projects == nil {
		projects = []schema.Project{}
	}
	list := ProjectList{GeneratedAt: generatedAt.UTC(), Count: len(projects), Projects: projects}
	return WriteJSONFile(filepath.Join(outDir, ProjectsFile), list)
}

// ReadProjects reads a projects.json written by a previous build.
func ReadProjects(outDir string) (ProjectList, error) {
	return ReadJSONFile[ProjectList](filepath.Join(outDir, ProjectsFile))
}

// WriteIndex replaces outDir/index with the manifest, facets, items, shards and details of bundle.
// The directory is removed first so shards and details of vanished projects do not linger.
func WriteIndex(outDir string, bundle schema.IndexBundle) error {
	dir := filepath.Join(outDir, IndexDir)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear %s: %w", dir, err)
	}

	if err := WriteJSONFile(filepath.Join(dir, agg.FacetsFile), bundle.Facets); err != nil {
		return err
	}
	items := bundle.Items
	if items == nil {
		items = []schema.IndexItem{}
	}
	if err := WriteJSONFile(filepath.Join(dir, agg.ItemsFile), items); err != nil {
		return err
	}
	for _, s := range bundle.Shards {
		if err := WriteJSONFile(filepath.Join(dir, agg.ShardFile(s.Type, s.Name)), s); err != nil {
			return err
		}
	}
	for _, d := range bundle.Details {
		if err := WriteJSONFile(filepath.Join(dir, agg.DetailFile(d.Slug)), d); err != nil {
			return err
		}
	}
	// The manifest goes last so a reader that finds it also finds everything it lists
	return WriteJSONFile(filepath.Join(dir, agg.ManifestFile), bundle.Manifest)
}

// WriteNewSince writes the run diff.
func WriteNewSince(outDir string, diff schema.NewSince) error {
	if diff.IDs == nil {
		diff.IDs = []string{}
	}
	return WriteJSONFile(filepath.Join(outDir, NewSinceFile), diff)
}

// Embeddings is the optional vector artifact, one vector per project in item order.
type Embeddings struct {
	Model      string      `json:"model"`
	Dimensions int         `json:"dimensions"`
	Keys       []string    `json:"keys"`
	Vectors    [][]float32 `json:"vectors"`
}

// WriteEmbeddings writes embeddings.json.
func WriteEmbeddings(outDir string, e Embeddings) error {
	return WriteJSONFile(filepath.Join(outDir, EmbeddingsFile), e)
}

package outwriter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/huangsam/repodex/core/agg"
	"github.com/huangsam/repodex/schema"
)

// ErrArtifactNotFound is returned when a requested shard or detail record does not exist.
var ErrArtifactNotFound = errors.New("artifact not found")

// artifactName matches shard names like "tag-vision" and detail slugs; nothing else reaches the filesystem.
var artifactName = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// IndexReader serves the index of a built output directory. It reads files on every call,
// so a rebuild is visible without restarting a server.
type IndexReader struct {
	dir string
}

// NewIndexReader returns a reader over outDir/index.
func NewIndexReader(outDir string) *IndexReader {
	return &IndexReader{dir: filepath.Join(outDir, IndexDir)}
}

// Dir returns the index directory.
func (r *IndexReader) Dir() string { return r.dir }

func (r *IndexReader) read(rel string, v any) error {
	data, err := os.ReadFile(filepath.Join(r.dir, rel))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrArtifactNotFound, rel)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", rel, err)
	}
	return nil
}

// Manifest reads manifest.json.
func (r *IndexReader) Manifest() (schema.Manifest, error) {
	var m schema.Manifest
	return m, r.read(agg.ManifestFile, &m)
}

// Facets reads facets.json.
func (r *IndexReader) Facets() (schema.Facets, error) {
	var f schema.Facets
	return f, r.read(agg.FacetsFile, &f)
}

// Items reads items.json.
func (r *IndexReader) Items() ([]schema.IndexItem, error) {
	var items []schema.IndexItem
	return items, r.read(agg.ItemsFile, &items)
}

// Shard reads a shard by its file name without extension, such as "source-github" or "lens-breakout".
func (r *IndexReader) Shard(name string) (schema.Shard, error) {
	var s schema.Shard
	name = strings.TrimSuffix(name, ".json")
	if !artifactName.MatchString(name) {
		return s, fmt.Errorf("%w: invalid shard name %q", ErrArtifactNotFound, name)
	}
	return s, r.read(agg.ShardsDir+"/"+name+".json", &s)
}

// Detail reads the detail record of a slug.
func (r *IndexReader) Detail(slug string) (schema.Detail, error) {
	var d schema.Detail
	slug = strings.TrimSuffix(slug, ".json")
	if !artifactName.MatchString(slug) {
		return d, fmt.Errorf("%w: invalid slug %q", ErrArtifactNotFound, slug)
	}
	return d, r.read(agg.DetailFile(slug), &d)
}

// SearchQuery filters index items. Empty fields match everything.
type SearchQuery struct {
	Text        string
	Tag         string
	Source      schema.Source
	HealthLabel schema.HealthLabel
	Limit       int
}

// Search returns the items matching every filter, in index order (score desc, key asc).
func (r *IndexReader) Search(q SearchQuery) ([]schema.IndexItem, error) {
	items, err := r.Items()
	if err != nil {
		return nil, err
	}
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := []schema.IndexItem{}
	for _, it := range items {
		if q.Tag != "" && !slices.Contains(it.Tags, q.Tag) {
			continue
		}
		if q.Source != "" && it.Source != q.Source {
			continue
		}
		if q.HealthLabel != "" && it.HealthLabel != q.HealthLabel {
			continue
		}
		if text != "" && !matchesText(it, text) {
			continue
		}
		out = append(out, it)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func matchesText(it schema.IndexItem, text string) bool {
	for _, field := range []string{it.Name, it.FullName, it.Description} {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}

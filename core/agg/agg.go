// Package agg builds the faceted, sharded index of a run from scored projects.
package agg

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/repodex/core/algo"
	"github.com/huangsam/repodex/core/tags"
	"github.com/huangsam/repodex/schema"
)

// MaxDescriptionRunes caps the description carried by an index item.
const MaxDescriptionRunes = 240

// Index file names relative to the index directory.
const (
	ManifestFile = "manifest.json"
	FacetsFile   = "facets.json"
	ItemsFile    = "items.json"
	ShardsDir    = "shards"
	DetailsDir   = "details"
)

// Builder turns the scored projects of a run into an index bundle.
type Builder struct {
	RunID       string
	GeneratedAt time.Time
	MinTagShard int
	Lenses      []Lens
	table       tags.Table
}

// NewBuilder returns a builder with the default lenses. The tag table resolves
// the modality phrase of each item; an empty table falls back to the built-in one.
func NewBuilder(runID string, generatedAt time.Time, minTagShard int, table tags.Table) *Builder {
	if minTagShard < 1 {
		minTagShard = schema.MinTagShardSize
	}
	if len(table.Rules) == 0 {
		table = tags.DefaultTable()
	}
	return &Builder{
		RunID:       runID,
		GeneratedAt: generatedAt.UTC(),
		MinTagShard: minTagShard,
		Lenses:      DefaultLenses(),
		table:       table,
	}
}

// Build computes facets, items, details, shards and the manifest. The output only
// depends on the input set, so rebuilding the same projects yields the same bundle.
func (b *Builder) Build(projects []schema.Project) schema.IndexBundle {
	sorted := slices.Clone(projects)
	slices.SortStableFunc(sorted, func(x, y schema.Project) int { return cmp.Compare(x.Key, y.Key) })
	slugs := assignSlugs(sorted)

	items := make([]schema.IndexItem, 0, len(sorted))
	details := make([]schema.Detail, 0, len(sorted))
	for _, p := range sorted {
		slug := slugs[p.Key]
		item := b.newItem(p, slug)
		items = append(items, item)
		details = append(details, schema.Detail{Project: p, Slug: slug, Why: item.Why})
	}
	algo.RankItems(items)

	popularity := make([]float64, len(items))
	for i, it := range items {
		popularity[i] = it.PopularityScore
	}
	median := algo.Round(algo.MedianOr(popularity, 0), 1)

	shards := b.buildShards(items, median)
	facets := BuildFacets(items)

	manifest := schema.Manifest{
		Version:          schema.ManifestVersion,
		RunID:            b.RunID,
		GeneratedAt:      b.GeneratedAt,
		Total:            len(items),
		Sources:          facets[schema.SourceFacet],
		MedianPopularity: median,
		MinTagShard:      b.MinTagShard,
		FacetsFile:       FacetsFile,
		ItemsFile:        ItemsFile,
		Shards:           make([]schema.ShardRef, 0, len(shards)),
	}
	for _, s := range shards {
		manifest.Shards = append(manifest.Shards, schema.ShardRef{
			Type:  s.Type,
			Name:  s.Name,
			File:  ShardFile(s.Type, s.Name),
			Count: s.Count,
		})
	}

	return schema.IndexBundle{Manifest: manifest, Facets: facets, Items: items, Shards: shards, Details: details}
}

// newItem projects one project into its index item.
func (b *Builder) newItem(p schema.Project, slug string) schema.IndexItem {
	item := schema.IndexItem{
		ID:               p.ID,
		Key:              p.Key,
		Slug:             slug,
		Source:           p.Source,
		Name:             p.Name,
		FullName:         p.FullName,
		URL:              p.URL,
		Description:      schema.TruncateRunes(p.Description, MaxDescriptionRunes),
		Tags:             slices.Sorted(slices.Values(p.Tags)),
		Stars:            p.Stars,
		Forks:            p.Forks,
		Downloads:        p.Downloads,
		Likes:            p.Likes,
		PopularityScore:  p.Popularity,
		HealthScore:      p.Health,
		PeopleScore:      p.People,
		Score:            p.Score,
		MomentumLabel:    p.Momentum.Label,
		LegacyMomentum:   p.Momentum.LegacyLabel,
		NormalizedGrowth: p.Momentum.NormalizedGrowth,
		Detail:           DetailFile(slug),
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if p.DaysSinceUpdate != nil {
		item.DaysSinceUpdate = *p.DaysSinceUpdate
	}
	if p.Signals != nil {
		item.HealthLabel = p.Signals.HealthLabel
		item.Contributors90d = p.Signals.Contributors90d
	}
	item.Why = Why(item, b.table)
	return item
}

// buildShards partitions items by source, by popular tag and by lens, sorted by (type, name).
func (b *Builder) buildShards(items []schema.IndexItem, medianPopularity float64) []schema.Shard {
	bySource := make(map[string][]schema.IndexItem)
	byTag := make(map[string][]schema.IndexItem)
	for _, it := range items {
		bySource[string(it.Source)] = append(bySource[string(it.Source)], it)
		for _, t := range it.Tags {
			byTag[t] = append(byTag[t], it)
		}
	}

	var shards []schema.Shard
	for name, members := range bySource {
		shards = append(shards, newShard(schema.SourceShard, schema.Slugify(name), members))
	}
	tagNames := make([]string, 0, len(byTag))
	for tag, members := range byTag {
		if len(members) >= b.MinTagShard {
			tagNames = append(tagNames, tag)
		}
	}
	slices.Sort(tagNames)
	usedTags := make(map[string]struct{}, len(tagNames))
	for _, tag := range tagNames {
		name := uniqueSlug(schema.Slugify(tag), usedTags)
		shards = append(shards, newShard(schema.TagShard, name, byTag[tag]))
	}
	for _, lens := range b.Lenses {
		var members []schema.IndexItem
		for _, it := range items {
			if lens.Match(it, medianPopularity) {
				members = append(members, it)
			}
		}
		shards = append(shards, newShard(schema.LensShard, lens.Name, members))
	}

	slices.SortFunc(shards, func(x, y schema.Shard) int {
		if c := cmp.Compare(x.Type, y.Type); c != 0 {
			return c
		}
		return cmp.Compare(x.Name, y.Name)
	})
	return shards
}

// newShard copies members, which are already ranked, into a shard.
func newShard(kind schema.ShardType, name string, members []schema.IndexItem) schema.Shard {
	ranked := slices.Clone(members)
	if ranked == nil {
		ranked = []schema.IndexItem{}
	}
	algo.RankItems(ranked)
	return schema.Shard{Type: kind, Name: name, Count: len(ranked), Items: ranked}
}

// BuildFacets counts items per tag, source and health label.
func BuildFacets(items []schema.IndexItem) schema.Facets {
	facets := schema.Facets{
		schema.TagsFacet:        {},
		schema.SourceFacet:      {},
		schema.HealthLabelFacet: {},
	}
	for _, it := range items {
		facets[schema.SourceFacet][string(it.Source)]++
		for _, t := range it.Tags {
			facets[schema.TagsFacet][t]++
		}
		if it.HealthLabel != "" {
			facets[schema.HealthLabelFacet][string(it.HealthLabel)]++
		}
	}
	return facets
}

// ShardFile returns the path of a shard relative to the index directory.
func ShardFile(kind schema.ShardType, name string) string {
	return fmt.Sprintf("%s/%s-%s.json", ShardsDir, kind, name)
}

// DetailFile returns the path of a detail record relative to the index directory.
func DetailFile(slug string) string {
	return DetailsDir + "/" + slug + ".json"
}

// assignSlugs maps each join key to a unique slug. Projects must be sorted by key
// so that collisions resolve the same way every run.
func assignSlugs(projects []schema.Project) map[string]string {
	slugs := make(map[string]string, len(projects))
	used := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		slugs[p.Key] = uniqueSlug(schema.Slugify(p.Key), used)
	}
	return slugs
}

// uniqueSlug returns base, or base-2, base-3 and so on, whichever is not yet
// in used, and marks it as taken.
func uniqueSlug(base string, used map[string]struct{}) string {
	slug := base
	for n := 2; ; n++ {
		if _, taken := used[slug]; !taken {
			break
		}
		slug = base + "-" + strconv.Itoa(n)
	}
	used[slug] = struct{}{}
	return slug
}

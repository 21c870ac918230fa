package schema

import "time"

// IndexItem is the lightweight projection of a project used for faceted browsing.
type IndexItem struct {
	ID               string              `json:"id"`
	Key              string              `json:"key"`
	Slug             string              `json:"slug"`
	Source           Source              `json:"source"`
	Name             string              `json:"name"`
	FullName         string              `json:"full_name,omitempty"`
	URL              string              `json:"url,omitempty"`
	Description      string              `json:"description"`
	Tags             []string            `json:"tags"`
	Stars            int                 `json:"stars"`
	Forks            int                 `json:"forks"`
	Downloads        int                 `json:"downloads"`
	Likes            int                 `json:"likes"`
	PopularityScore  float64             `json:"popularity_score"`
	HealthScore      float64             `json:"health_score"`
	PeopleScore      float64             `json:"people_score"`
	Score            float64             `json:"score"`
	HealthLabel      HealthLabel         `json:"health_label"`
	MomentumLabel    MomentumLabel       `json:"momentum_label"`
	LegacyMomentum   LegacyMomentumLabel `json:"momentum_label_legacy"`
	NormalizedGrowth float64             `json:"normalized_growth"`
	DaysSinceUpdate  int                 `json:"days_since_update"`
	Contributors90d  int                 `json:"contributors_90d"`
	Why              string              `json:"why"`
	Detail           string              `json:"detail"`
}

// Facets maps a facet dimension (tags, source, health_label) to value counts.
type Facets map[string]map[string]int

// Facet dimensions.
const (
	TagsFacet        = "tags"
	SourceFacet      = "source"
	HealthLabelFacet = "health_label"
)

// Shard is one retrievable partition of the index.
type Shard struct {
	Type  ShardType   `json:"type"`
	Name  string      `json:"name"`
	Count int         `json:"count"`
	Items []IndexItem `json:"items"`
}

// ShardRef describes a shard file in the manifest.
type ShardRef struct {
	Type  ShardType `json:"type"`
	Name  string    `json:"name"`
	File  string    `json:"file"`
	Count int       `json:"count"`
}

// Manifest enumerates every shard of one build.
type Manifest struct {
	Version          int            `json:"version"`
	RunID            string         `json:"run_id"`
	GeneratedAt      time.Time      `json:"generated_at"`
	Total            int            `json:"total"`
	Sources          map[string]int `json:"sources"`
	MedianPopularity float64        `json:"median_popularity"`
	MinTagShard      int            `json:"min_tag_shard"`
	FacetsFile       string         `json:"facets_file"`
	ItemsFile        string         `json:"items_file"`
	Shards           []ShardRef     `json:"shards"`
}

// Detail is the full per-project record written under details/.
type Detail struct {
	Project
	Slug string `json:"slug"`
	Why  string `json:"why"`
}

// IndexBundle is everything the facet and shard builder produces for one run.
type IndexBundle struct {
	Manifest Manifest
	Facets   Facets
	Items    []IndexItem
	Shards   []Shard
	Details  []Detail
}

// NewSince is the set difference of entity ids between two runs.
type NewSince struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

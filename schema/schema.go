// Package schema has the models and constants shared by all parts of repodex.
package schema

import (
	"sort"
	"time"
)

// Entity is one catalog record (a GitHub repository or a Hugging Face model)
// as handed over by the fetch collaborators.
type Entity struct {
	Source          Source        `json:"source"`
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	FullName        string        `json:"full_name,omitempty"`
	Description     string        `json:"description"`
	URL             string        `json:"url,omitempty"`
	License         string        `json:"license,omitempty"`
	Stars           int           `json:"stars"`
	Forks           int           `json:"forks"`
	Downloads       int           `json:"downloads"`
	Likes           int           `json:"likes"`
	Topics          []string      `json:"topics"`
	UpdatedAt       time.Time     `json:"updated_at"`
	DaysSinceUpdate *int          `json:"days_since_update,omitempty"`
	Contributors    []Contributor `json:"contributors,omitempty"`
}

// Contributor is one login with its contribution count.
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	URL           string `json:"url,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
}

// Metrics is the raw numeric signal set compared across runs.
type Metrics struct {
	Stars     int `json:"stars"`
	Forks     int `json:"forks"`
	Downloads int `json:"downloads"`
	Likes     int `json:"likes"`
}

// Scores is the score triple plus the legacy aggregate. All values are in [0,100].
type Scores struct {
	Popularity float64 `json:"popularity_score"`
	Health     float64 `json:"health_score"`
	// People is a bus-factor estimate for GitHub and a downloads proxy capped
	// at 50 for Hugging Face. The two are not comparable 1:1.
	People     float64 `json:"people_score"`
	Score      float64 `json:"score"`
}

// Project is an entity plus everything derived for it during one run.
type Project struct {
	Entity
	Key      string        `json:"key"`
	Tags     []string      `json:"tags"`
	Signals  *HealthBundle `json:"health,omitempty"`
	Momentum Momentum      `json:"momentum"`
	Scores
}

// TagSet is a deduplicated set of labels.
type TagSet map[string]struct{}

// Add inserts labels into the set, ignoring blanks.
func (t TagSet) Add(labels ...string) {
	for _, l := range labels {
		if l != "" {
			t[l] = struct{}{}
		}
	}
}

// Has reports whether the label is present.
func (t TagSet) Has(label string) bool {
	_, ok := t[label]
	return ok
}

// Sorted returns the labels in lexical order.
func (t TagSet) Sorted() []string {
	out := make([]string, 0, len(t))
	for l := range t {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// MetricsOf extracts the comparable metrics of an entity.
func MetricsOf(e Entity) Metrics {
	return Metrics{Stars: e.Stars, Forks: e.Forks, Downloads: e.Downloads, Likes: e.Likes}
}

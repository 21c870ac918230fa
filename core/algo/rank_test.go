package algo

import (
	"testing"

	"github.com/huangsam/repodex/schema"
	"github.com/stretchr/testify/assert"
)

func project(key string, score float64) schema.Project {
	return schema.Project{Key: key, Scores: schema.Scores{Score: score}}
}

func TestRankProjects(t *testing.T) {
	tests := []struct {
		name  string
		in    []schema.Project
		limit int
		want  []string
	}{
		{"empty", nil, 5, nil},
		{"by score", []schema.Project{project("a", 10), project("b", 30), project("c", 20)}, 5, []string{"b", "c", "a"}},
		{"ties by key", []schema.Project{project("z", 50), project("m", 50), project("a", 10)}, 5, []string{"m", "z", "a"}},
		{"limited", []schema.Project{project("a", 1), project("b", 2), project("c", 3)}, 2, []string{"c", "b"}},
		{"no limit", []schema.Project{project("a", 1), project("b", 2)}, 0, []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range RankProjects(tt.in, tt.limit) {
				got = append(got, p.Key)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRankItems(t *testing.T) {
	items := []schema.IndexItem{{Key: "b", Score: 5}, {Key: "a", Score: 5}, {Key: "c", Score: 9}}
	RankItems(items)
	assert.Equal(t, "c", items[0].Key)
	assert.Equal(t, "a", items[1].Key)
	assert.Equal(t, "b", items[2].Key)
}

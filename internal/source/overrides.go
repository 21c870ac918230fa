package source

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/repodex/schema"
	"gopkg.in/yaml.v3"
)

// Overrides maps a join key to manual tag labels.
type Overrides map[string][]string

// LoadOverrides reads a YAML mapping of join key to a list of labels, for example:
//
//	github:org/repo: [robotics, edge]
//	huggingface:org/model: vision
//
// Entries with an unknown source prefix or a value that is not a label or a
// list of labels are dropped and counted. An empty path yields no overrides.
func LoadOverrides(path string) (Overrides, int, error) {
	if path == "" {
		return Overrides{}, 0, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("reading overrides: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes override YAML. Only a document that is not a mapping is an error.
func ParseOverrides(data []byte) (Overrides, int, error) {
	out := Overrides{}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("parsing overrides: %w", err)
	}
	if len(doc.Content) == 0 {
		return out, 0, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, 0, errors.New("parsing overrides: top level must be a mapping of key to labels")
	}

	dropped := 0
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := strings.TrimSpace(root.Content[i].Value)
		labels, ok := decodeLabels(root.Content[i+1])
		if !ok || !validKey(key) {
			dropped++
			continue
		}
		out[key] = append(out[key], labels...)
	}
	return out, dropped, nil
}

func decodeLabels(node *yaml.Node) ([]string, bool) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() != "!!str" || strings.TrimSpace(node.Value) == "" {
			return nil, false
		}
		return []string{node.Value}, true
	case yaml.SequenceNode:
		labels := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
				return nil, false
			}
			labels = append(labels, item.Value)
		}
		return labels, len(labels) > 0
	default:
		return nil, false
	}
}

// validKey checks the source:name shape of a join key.
func validKey(key string) bool {
	source, name, ok := strings.Cut(key, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return false
	}
	_, known := schema.ValidSources[schema.Source(source)]
	return known
}

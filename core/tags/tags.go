// Package tags extracts topical labels from free text, keywords and license hints.
package tags

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/huangsam/repodex/schema"
	"gopkg.in/yaml.v3"
)

//go:embed default_tags.yaml
var defaultTableYAML []byte

// Rule categories.
const (
	ModalityCategory     = "modality"
	TaskCategory         = "task"
	EcosystemCategory    = "ecosystem"
	ControlCategory      = "control"
	PipelineCategory     = "pipeline"
	ArchitectureCategory = "architecture"
	LatencyCategory      = "latency"
)

var validCategories = []string{
	ModalityCategory, TaskCategory, EcosystemCategory, ControlCategory,
	PipelineCategory, ArchitectureCategory, LatencyCategory,
}

// Rule adds Label when any of its keywords occurs in the haystack.
type Rule struct {
	Label    string   `yaml:"label"`
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// Table is an ordered list of rules.
type Table struct {
	Rules []Rule `yaml:"rules"`
}

// License keyword lists. Restricted is checked first since several restricted
// identifiers contain permissive ones (cc-by-nc contains cc-by).
var (
	restrictedLicenses = []string{
		"gpl", "cc-by-nc", "cc-by-nd", "openrail", "llama", "gemma",
		"research", "non-commercial", "noncommercial", "sspl", "busl",
	}
	permissiveLicenses = []string{
		"mit", "apache", "bsd", "isc", "unlicense", "cc0", "mpl", "zlib",
		"cc-by", "wtfpl", "0bsd", "boost", "bsl-1.0", "artistic",
	}
)

// DefaultTable returns the built-in rule table.
func DefaultTable() Table {
	t, err := ParseTable(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in tag table: %v", err))
	}
	return t
}

// LoadTable reads a YAML rule table from disk.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("reading tag table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes and validates a YAML rule table.
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parsing tag table: %w", err)
	}
	if len(t.Rules) == 0 {
		return Table{}, fmt.Errorf("tag table has no rules")
	}
	seen := make(map[string]bool, len(t.Rules))
	for i, r := range t.Rules {
		r.Label = strings.ToLower(strings.TrimSpace(r.Label))
		switch {
		case r.Label == "":
			return Table{}, fmt.Errorf("rule %d has no label", i)
		case seen[r.Label]:
			return Table{}, fmt.Errorf("rule %d duplicates label %q", i, r.Label)
		case isLicenseLabel(r.Label):
			return Table{}, fmt.Errorf("rule %d uses reserved license label %q", i, r.Label)
		case !slices.Contains(validCategories, r.Category):
			return Table{}, fmt.Errorf("rule %q has unknown category %q", r.Label, r.Category)
		case len(r.Keywords) == 0:
			return Table{}, fmt.Errorf("rule %q has no keywords", r.Label)
		}
		for j, kw := range r.Keywords {
			r.Keywords[j] = strings.ToLower(kw)
		}
		seen[r.Label] = true
		t.Rules[i] = r
	}
	return t, nil
}

// CategoryOf returns the category of a label, or "" when the table does not produce it.
func (t Table) CategoryOf(label string) string {
	for _, r := range t.Rules {
		if r.Label == label {
			return r.Category
		}
	}
	return ""
}

// FirstInCategory returns the first label of the category, in table order, present in tags.
func (t Table) FirstInCategory(tags []string, category string) string {
	for _, r := range t.Rules {
		if r.Category == category && slices.Contains(tags, r.Label) {
			return r.Label
		}
	}
	return ""
}

// Extractor applies a rule table. It is safe for concurrent use.
type Extractor struct {
	table Table
}

// NewExtractor returns an extractor over the given table.
func NewExtractor(table Table) *Extractor {
	return &Extractor{table: table}
}

// Table returns the rule table of the extractor.
func (x *Extractor) Table() Table {
	return x.table
}

// Extract returns the labels whose keywords occur in text or keywords, plus
// exactly one license bucket derived from licenseHint. It never fails.
func (x *Extractor) Extract(text string, keywords []string, licenseHint string) schema.TagSet {
	haystack := strings.ToLower(text + " " + strings.Join(keywords, " "))
	tags := schema.TagSet{}
	for _, r := range x.table.Rules {
		if containsAny(haystack, r.Keywords) {
			tags.Add(r.Label)
		}
	}
	tags.Add(LicenseBucket(licenseHint))
	return tags
}

// LicenseBucket classifies a license identifier as permissive, restricted or unclear.
func LicenseBucket(hint string) string {
	h := strings.ToLower(strings.TrimSpace(hint))
	switch {
	case h == "" || h == "other" || h == "unknown" || h == "noassertion":
		return schema.UnclearLicense
	case containsAny(h, restrictedLicenses):
		return schema.RestrictedLicense
	case containsAny(h, permissiveLicenses):
		return schema.PermissiveLicense
	default:
		return schema.UnclearLicense
	}
}

// MergeOverrides unions manual labels into tags. Blank labels are ignored and
// labels are normalized to lowercase. License bucket labels are not overridable.
func MergeOverrides(tags schema.TagSet, labels []string) {
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if isLicenseLabel(l) {
			continue
		}
		tags.Add(l)
	}
}

func isLicenseLabel(label string) bool {
	switch label {
	case schema.PermissiveLicense, schema.RestrictedLicense, schema.UnclearLicense:
		return true
	}
	return false
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

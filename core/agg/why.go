package agg

import (
	"strings"

	"github.com/huangsam/repodex/core/tags"
	"github.com/huangsam/repodex/schema"
)

// Why phrase constants.
const (
	whySeparator = " · "
	whyFallback  = "Catalogued project"
	whyMaxParts  = 4
)

// Why explains in a short line why an item is worth a look. Phrases come in a fixed
// priority: momentum, health, maintainer breadth, primary modality.
func Why(item schema.IndexItem, table tags.Table) string {
	parts := make([]string, 0, whyMaxParts)

	switch item.MomentumLabel {
	case schema.BreakoutMomentum:
		parts = append(parts, "Breakout growth since last run")
	case schema.RisingMomentum:
		parts = append(parts, "Rising interest")
	}

	switch item.HealthLabel {
	case schema.AliveHealth:
		parts = append(parts, "Actively maintained")
	case schema.SteadyHealth:
		parts = append(parts, "Steady maintenance")
	case schema.DecayingHealth:
		parts = append(parts, "Maintenance slowing down")
	}

	switch c := item.Contributors90d; {
	case c >= 10:
		parts = append(parts, "Broad contributor base")
	case c >= 3:
		parts = append(parts, "Small active team")
	case c == 1:
		parts = append(parts, "Single maintainer")
	}

	if modality := table.FirstInCategory(item.Tags, tags.ModalityCategory); modality != "" {
		parts = append(parts, strings.ToUpper(modality[:1])+modality[1:]+" focus")
	}

	if len(parts) == 0 {
		return whyFallback
	}
	return strings.Join(parts[:min(len(parts), whyMaxParts)], whySeparator)
}

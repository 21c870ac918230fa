package agg

import "github.com/huangsam/repodex/schema"

// Lens is a named, curated view over the index items of one run.
type Lens struct {
	Name  string
	Match func(item schema.IndexItem, medianPopularity float64) bool
}

// Lens thresholds on the 0..100 score scale.
const (
	HiddenGemMinHealth       = 60.0
	ProductionReadyMinHealth = 70.0
	ProductionReadyMinPeople = 50.0
)

// DefaultLenses returns the built-in lenses in a fixed order.
func DefaultLenses() []Lens {
	return []Lens{
		{Name: "hidden-gems", Match: isHiddenGem},
		{Name: "production-ready", Match: isProductionReady},
		{Name: "breakout", Match: func(it schema.IndexItem, _ float64) bool {
			return it.MomentumLabel == schema.BreakoutMomentum
		}},
		{Name: "rising", Match: func(it schema.IndexItem, _ float64) bool {
			return it.MomentumLabel == schema.RisingMomentum || it.MomentumLabel == schema.BreakoutMomentum
		}},
	}
}

// isHiddenGem selects well-kept projects that are less popular than the run median.
func isHiddenGem(it schema.IndexItem, medianPopularity float64) bool {
	return it.HealthLabel == schema.AliveHealth &&
		it.PopularityScore < medianPopularity &&
		it.HealthScore >= HiddenGemMinHealth
}

func isProductionReady(it schema.IndexItem, _ float64) bool {
	maintained := it.HealthLabel == schema.AliveHealth || it.HealthLabel == schema.SteadyHealth
	return maintained && it.HealthScore >= ProductionReadyMinHealth && it.PeopleScore >= ProductionReadyMinPeople
}

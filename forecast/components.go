package forecast

import (
	"sort"

	"github.com/aouyang1/revenue-forecaster/feature"
)

const (
	ComponentTrend    = "trend"
	ComponentHolidays = "holidays"
)

// Components holds the additive contribution of each part of the model keyed by name. The
// trend includes the intercept. Seasonalities are keyed by their configured name.
type Components map[string][]float64

// Names returns the component names with the trend first followed by the rest sorted
func (c Components) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		if name == ComponentTrend {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if _, exists := c[ComponentTrend]; exists {
		names = append([]string{ComponentTrend}, names...)
	}
	return names
}

// componentName maps a feature label to the component its contribution is summed into
func componentName(label feature.Feature) string {
	switch label.Type() {
	case feature.FeatureTypeSeasonality:
		if name, exists := label.Get("name"); exists {
			return name
		}
	case feature.FeatureTypeEvent:
		return ComponentHolidays
	}
	return ComponentTrend
}

package forecaster

import (
	"time"

	"github.com/aouyang1/revenue-forecaster/forecast"
)

// Results holds one row per requested time point. History rows carry the fitted values and
// future rows the predictions. The components add up to the forecast.
type Results struct {
	T          []time.Time         `json:"time"`
	Forecast   []float64           `json:"forecast"`
	Upper      []float64           `json:"upper"`
	Lower      []float64           `json:"lower"`
	Components forecast.Components `json:"components"`
}

// Len returns the number of rows in the results
func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(r.T)
}

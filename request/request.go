// Package request builds the fixed shape input handed to the forecast engine.
package request

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/revenue-forecaster/series"
)

// Horizon is the number of future periods forecast past the last observation
const Horizon = 30

var ErrIndexMismatch = errors.New("future index does not start with the history timestamps")

// FutureIndexer builds history timestamps followed by future timestamps at the frequency the
// engine inferred from its training data
type FutureIndexer interface {
	MakeFutureIndex(periods int) ([]time.Time, error)
}

// ForecastRequest is the history to fit along with how far ahead to forecast
type ForecastRequest struct {
	History series.Series
	Horizon int
}

// Build copies the series into a request with the default horizon
func Build(s series.Series) ForecastRequest {
	return ForecastRequest{
		History: s.Copy(),
		Horizon: Horizon,
	}
}

// Dataset returns the two fields the engine fits on, the timestamps and the values
func (r ForecastRequest) Dataset() ([]time.Time, []float64) {
	return r.History.Times(), r.History.Floats()
}

// ExtendedIndex asks the engine for the history timestamps followed by Horizon future
// timestamps and checks the history is carried over unchanged
func (r ForecastRequest) ExtendedIndex(b FutureIndexer) ([]time.Time, error) {
	t, err := b.MakeFutureIndex(r.Horizon)
	if err != nil {
		return nil, err
	}
	if len(t) != len(r.History)+r.Horizon {
		return nil, fmt.Errorf("got %d timestamps for %d history rows and horizon %d, %w",
			len(t), len(r.History), r.Horizon, ErrIndexMismatch)
	}
	for i, p := range r.History {
		if !t[i].Equal(p.Time) {
			return nil, fmt.Errorf("row %d, %w", i, ErrIndexMismatch)
		}
	}
	return t, nil
}

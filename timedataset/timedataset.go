// Package timedataset holds the univariate time/value pairs handed to the forecast engine along
// with helpers to reason about their spacing and to simulate series for tests.
package timedataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
)

// TimeDataset represents a time series storing a slice of time points and values.
// Both must be of the same length. Repeated time points are allowed so long as time
// never moves backwards.
type TimeDataset struct {
	T []time.Time
	Y []float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	for i := 1; i < len(t); i++ {
		if t[i].Before(t[i-1]) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	td := &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}

	return td, nil
}

// DistinctTimes returns the number of unique time points in the dataset. Assumes the
// dataset is sorted which NewUnivariateDataset enforces.
func (td *TimeDataset) DistinctTimes() int {
	if td == nil || len(td.T) == 0 {
		return 0
	}
	cnt := 1
	for i := 1; i < len(td.T); i++ {
		if !td.T[i].Equal(td.T[i-1]) {
			cnt++
		}
	}
	return cnt
}

// Package series holds a cleaned, time ordered revenue series.
package series

import (
	"time"

	"github.com/shopspring/decimal"
)

// Point is a single revenue observation. Value keeps the precision of the source text.
type Point struct {
	Time  time.Time       `json:"date"`
	Value decimal.Decimal `json:"revenue"`
}

// Series is an ordered list of points, non-decreasing by time
type Series []Point

// Len returns the number of points
func (s Series) Len() int {
	return len(s)
}

// Copy returns a copy of the series
func (s Series) Copy() Series {
	if s == nil {
		return nil
	}
	cp := make(Series, len(s))
	copy(cp, s)
	return cp
}

// Times returns the time of every point
func (s Series) Times() []time.Time {
	t := make([]time.Time, len(s))
	for i, p := range s {
		t[i] = p.Time
	}
	return t
}

// Floats returns every value as a float64
func (s Series) Floats() []float64 {
	y := make([]float64, len(s))
	for i, p := range s {
		y[i] = p.Value.InexactFloat64()
	}
	return y
}

// Sorted reports whether the series is non-decreasing by time
func (s Series) Sorted() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Time.Before(s[i-1].Time) {
			return false
		}
	}
	return true
}

// Tail returns a copy of the last n points, or the whole series when it is shorter
func (s Series) Tail(n int) Series {
	if n <= 0 {
		return Series{}
	}
	if n > len(s) {
		n = len(s)
	}
	return s[len(s)-n:].Copy()
}

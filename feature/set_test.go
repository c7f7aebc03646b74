package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSetSet(t *testing.T) {
	testData := map[string]struct {
		init     *Set
		f        Feature
		data     []float64
		expected *Set
	}{
		"initial set": {
			init: NewSet(),
			f:    NewEvent("blargh"),
			data: []float64{1, 2, 3, 4},
			expected: &Set{
				m: 4,
				set: map[string][]float64{
					"event_blargh": {1, 2, 3, 4},
				},
				labels: []Feature{NewEvent("blargh")},
			},
		},
		"set with more data": {
			init: &Set{
				m: 4,
				set: map[string][]float64{
					"event_blargh": {1, 2, 3, 4},
				},
				labels: []Feature{NewEvent("blargh")},
			},
			f:    NewEvent("more"),
			data: []float64{1, 2, 3, 4, 5, 6},
			expected: &Set{
				m: 6,
				set: map[string][]float64{
					"event_blargh": {1, 2, 3, 4, 0, 0},
					"event_more":   {1, 2, 3, 4, 5, 6},
				},
				labels: []Feature{
					NewEvent("blargh"),
					NewEvent("more"),
				},
			},
		},
		"set with less data": {
			init: &Set{
				m: 4,
				set: map[string][]float64{
					"event_blargh": {1, 2, 3, 4},
				},
				labels: []Feature{NewEvent("blargh")},
			},
			f:    NewEvent("less"),
			data: []float64{1, 2},
			expected: &Set{
				m: 4,
				set: map[string][]float64{
					"event_blargh": {1, 2, 3, 4},
					"event_less":   {1, 2, 0, 0},
				},
				labels: []Feature{
					NewEvent("blargh"),
					NewEvent("less"),
				},
			},
		},
		"replace existing feature": {
			init: &Set{
				m: 4,
				set: map[string][]float64{
					"event_blargh": {1, 2, 3, 4},
				},
				labels: []Feature{NewEvent("blargh")},
			},
			f:    NewEvent("blargh"),
			data: []float64{4, 3, 2, 1},
			expected: &Set{
				m: 4,
				set: map[string][]float64{
					"event_blargh": {4, 3, 2, 1},
				},
				labels: []Feature{NewEvent("blargh")},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			s := td.init.Set(td.f, td.data)
			assert.Equal(t, td.expected, s)
		})
	}
}

func TestSetCopiesInput(t *testing.T) {
	data := []float64{1, 2, 3}
	s := NewSet().Set(NewEvent("a"), data)
	data[0] = 100

	vals, exists := s.Get(NewEvent("a"))
	require.True(t, exists)
	assert.Equal(t, []float64{1, 2, 3}, vals)
}

func TestSetDel(t *testing.T) {
	s := NewSet().
		Set(NewEvent("a"), []float64{1, 2}).
		Set(NewEvent("b"), []float64{3, 4}).
		Set(NewEvent("c"), []float64{5, 6})

	s.Del(NewEvent("b")).Del(NewEvent("unknown"))
	assert.Equal(t, 2, s.Len())

	_, exists := s.Get(NewEvent("b"))
	assert.False(t, exists)
	assert.Equal(t, []Feature{NewEvent("a"), NewEvent("c")}, s.Labels())
}

func TestSetUpdate(t *testing.T) {
	testData := map[string]struct {
		init     *Set
		next     *Set
		expected []Feature
		m        int
	}{
		"nil update": {
			init:     NewSet().Set(NewEvent("a"), []float64{1, 2}),
			next:     nil,
			expected: []Feature{NewEvent("a")},
			m:        2,
		},
		"disjoint": {
			init:     NewSet().Set(NewEvent("a"), []float64{1, 2}),
			next:     NewSet().Set(NewGrowth("linear"), []float64{1, 2, 3}),
			expected: []Feature{NewEvent("a"), NewGrowth("linear")},
			m:        3,
		},
		"overlapping": {
			init:     NewSet().Set(NewEvent("a"), []float64{1, 2}),
			next:     NewSet().Set(NewEvent("a"), []float64{5, 6}).Set(NewEvent("b"), []float64{7, 8}),
			expected: []Feature{NewEvent("a"), NewEvent("b")},
			m:        2,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			s := td.init.Update(td.next)
			assert.Equal(t, td.expected, s.Labels())
			assert.Equal(t, td.m, s.Observations())
		})
	}
}

func TestSetLabelsSorted(t *testing.T) {
	s := NewSet().
		Set(NewSeasonality("epoch_weekly", FourierCompSin, 1), []float64{1}).
		Set(Linear(), []float64{1}).
		Set(NewChangepoint("auto_00", ChangepointCompSlope), []float64{1})

	labels := s.FeatureLabels()
	require.Equal(t, 3, labels.Len())

	idx, exists := labels.Index(NewChangepoint("auto_00", ChangepointCompSlope))
	assert.True(t, exists)
	assert.Equal(t, 0, idx)

	idx, exists = labels.Index(Linear())
	assert.True(t, exists)
	assert.Equal(t, 1, idx)

	idx, exists = labels.Index(NewEvent("missing"))
	assert.False(t, exists)
	assert.Equal(t, -1, idx)
}

func TestFilterByType(t *testing.T) {
	s := NewSet().
		Set(NewSeasonality("epoch_weekly", FourierCompSin, 1), []float64{1, 2}).
		Set(Linear(), []float64{3, 4}).
		Set(NewEvent("xmas"), []float64{0, 1})

	res := s.FilterByType(FeatureTypeGrowth, FeatureTypeEvent)
	assert.Equal(t, []Feature{NewEvent("xmas"), Linear()}, res.Labels())

	var nilSet *Set
	assert.Equal(t, 0, nilSet.FilterByType(FeatureTypeGrowth).Len())
}

func TestMatrix(t *testing.T) {
	testData := map[string]struct {
		init      *Set
		intercept bool
		expected  *mat.Dense
	}{
		"empty": {
			init:      NewSet(),
			intercept: true,
			expected:  nil,
		},
		"without intercept": {
			init: NewSet().
				Set(NewEvent("b"), []float64{3, 4}).
				Set(NewEvent("a"), []float64{1, 2}),
			intercept: false,
			expected: mat.NewDense(2, 2, []float64{
				1, 3,
				2, 4,
			}),
		},
		"with intercept": {
			init: NewSet().
				Set(NewEvent("b"), []float64{3, 4}).
				Set(NewEvent("a"), []float64{1, 2}),
			intercept: true,
			expected: mat.NewDense(2, 3, []float64{
				1, 1, 3,
				1, 2, 4,
			}),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.init.Matrix(td.intercept)
			if td.expected == nil {
				assert.Nil(t, res)
				return
			}
			assert.True(t, mat.Equal(td.expected, res))
		})
	}
}

func TestRemoveZeroOnlyFeatures(t *testing.T) {
	s := NewSet().Set(
		NewTime("valid"),
		[]float64{0, 1, 0},
	).Set(
		NewTime("only_zeros_1"),
		[]float64{0, 0, 0},
	).Set(
		NewTime("only_zeros_2"),
		[]float64{0, 0},
	)

	s.RemoveZeroOnlyFeatures()
	assert.Equal(t, 1, s.Len())

	vals, exists := s.Get(NewTime("valid"))
	assert.True(t, exists)
	assert.Equal(t, []float64{0, 1, 0}, vals)

	_, exists = s.Get(NewTime("only_zeros_1"))
	assert.False(t, exists)
	_, exists = s.Get(NewTime("only_zeros_2"))
	assert.False(t, exists)
}

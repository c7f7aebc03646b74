package feature

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Set holds the values of each feature keyed by the string representation of the feature.
// Every feature in the set has the same number of observations, m. Shorter features are
// padded with zeros when added.
type Set struct {
	m      int
	set    map[string][]float64
	labels []Feature
}

func NewSet() *Set {
	return &Set{
		set: make(map[string][]float64),
	}
}

// Len returns the number of features tracked
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.labels)
}

// Observations returns the number of observations of each feature
func (s *Set) Observations() int {
	if s == nil {
		return 0
	}
	return s.m
}

// Set stores the data for a feature replacing any existing values for the same feature
func (s *Set) Set(f Feature, data []float64) *Set {
	if s.set == nil {
		s.set = make(map[string][]float64)
	}

	if len(data) > s.m {
		for label, vals := range s.set {
			padded := make([]float64, len(data))
			copy(padded, vals)
			s.set[label] = padded
		}
		s.m = len(data)
	}

	vals := make([]float64, s.m)
	copy(vals, data)

	key := f.String()
	if _, exists := s.set[key]; !exists {
		s.labels = append(s.labels, f)
	}
	s.set[key] = vals
	return s
}

// Get returns the values of a feature and whether it exists in the set
func (s *Set) Get(f Feature) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	vals, exists := s.set[f.String()]
	return vals, exists
}

// Del removes a feature from the set
func (s *Set) Del(f Feature) *Set {
	key := f.String()
	if _, exists := s.set[key]; !exists {
		return s
	}
	delete(s.set, key)
	for i, label := range s.labels {
		if label.String() == key {
			s.labels = append(s.labels[:i], s.labels[i+1:]...)
			break
		}
	}
	return s
}

// Update merges all features of the other set into this set
func (s *Set) Update(other *Set) *Set {
	if other == nil {
		return s
	}
	for _, label := range other.labels {
		s.Set(label, other.set[label.String()])
	}
	return s
}

// Labels returns the sorted slice of all tracked features in the set
func (s *Set) Labels() []Feature {
	if s == nil {
		return nil
	}
	labels := make([]Feature, len(s.labels))
	copy(labels, s.labels)
	sort.Slice(
		labels,
		func(i, j int) bool {
			return labels[i].String() < labels[j].String()
		},
	)
	return labels
}

// FeatureLabels returns the sorted labels along with their column index
func (s *Set) FeatureLabels() *Labels {
	return NewLabels(s.Labels())
}

// FilterByType returns a new set containing only the features of the given types
func (s *Set) FilterByType(types ...FeatureType) *Set {
	res := NewSet()
	if s == nil {
		return res
	}
	for _, label := range s.labels {
		for _, ft := range types {
			if label.Type() == ft {
				res.Set(label, s.set[label.String()])
				break
			}
		}
	}
	return res
}

// RemoveZeroOnlyFeatures drops features that never take a non-zero value. These carry no
// information for a fit and only weaken the conditioning of the design matrix.
func (s *Set) RemoveZeroOnlyFeatures() *Set {
	for _, label := range s.Labels() {
		vals := s.set[label.String()]
		zeroOnly := true
		for _, v := range vals {
			if v != 0 {
				zeroOnly = false
				break
			}
		}
		if zeroOnly {
			s.Del(label)
		}
	}
	return s
}

// Matrix returns a matrix representation of the set to be used with matrix methods.
// The matrix has m rows representing the number of observations and n columns representing
// the number of features in sorted label order, preceded by a column of ones if intercept
// is set.
func (s *Set) Matrix(intercept bool) *mat.Dense {
	if s == nil || s.m == 0 {
		return nil
	}

	labels := s.Labels()
	n := len(labels)
	if intercept {
		n += 1
	}
	if n == 0 {
		return nil
	}

	obs := make([]float64, s.m*n)

	featNum := 0
	if intercept {
		for i := 0; i < s.m; i++ {
			obs[n*i] = 1.0
		}
		featNum += 1
	}

	for _, label := range labels {
		vals := s.set[label.String()]
		for i := 0; i < len(vals); i++ {
			obs[n*i+featNum] = vals[i]
		}
		featNum += 1
	}
	return mat.NewDense(s.m, n, obs)
}

package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScores(t *testing.T) {
	testData := map[string]struct {
		predicted []float64
		actual    []float64
		expected  *Scores
		err       error
	}{
		"perfect": {
			predicted: []float64{1, 2, 3},
			actual:    []float64{1, 2, 3},
			expected:  &Scores{MSE: 0, MAPE: 0, R2: 1},
		},
		"offset": {
			predicted: []float64{2, 3, 5},
			actual:    []float64{1, 2, 4},
			expected:  &Scores{MSE: 1, MAPE: (1.0 + 0.5 + 0.25) / 3, R2: 15.0 / 42.0},
		},
		"skips nan and zero actuals": {
			predicted: []float64{1, 2, math.NaN()},
			actual:    []float64{0, 4, 1},
			expected:  &Scores{MSE: 2.5, MAPE: 0.5, R2: 0.375},
		},
		"length mismatch": {
			predicted: []float64{1},
			actual:    []float64{1, 2},
			err:       ErrResLenMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := NewScores(td.predicted, td.actual)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.expected.MSE, res.MSE, 1e-9)
			assert.InDelta(t, td.expected.MAPE, res.MAPE, 1e-9)
			assert.InDelta(t, td.expected.R2, res.R2, 1e-9)
		})
	}
}

package linearmodel

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aouyang1/revenue-forecaster/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testModel(t *testing.T, model Model, x, y mat.Matrix, intercept float64, coef []float64, tol float64) {
	err := model.Fit(x, y)
	require.Nil(t, err)

	assert.InDelta(t, intercept, model.Intercept(), tol, "intercept")

	c := model.Coef()
	assert.InDeltaSlice(t, coef, c, tol, "coefficients")

	r2, err := model.Score(x, y)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, tol, "score")
}

func generateBenchData(minutes, nFeat int) (mat.Matrix, mat.Matrix) {
	nowFunc := func() time.Time {
		return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	}
	t := timedataset.GenerateT(minutes, time.Minute, nowFunc)
	out := make(timedataset.Series, minutes)

	period := 86400.0
	out.Add(timedataset.GenerateConstY(minutes, 98.3)).
		Add(timedataset.GenerateWaveY(t, 10.5, period, 1.0, 2*60*60)).
		Add(timedataset.GenerateWaveY(t, 10.5, period, 3.0, 2.0*60*60+period/2.0/2.0/3.0)).
		Add(timedataset.GenerateNoise(t, rand.New(rand.NewPCG(3, 5)), 1.0))

	data := make([]float64, 0, minutes*nFeat*2)
	for _, tPnt := range t {
		epoch := float64(tPnt.Unix())
		for order := 1; order <= nFeat; order++ {
			rad := 2.0 * math.Pi * float64(order) / period * epoch
			data = append(data, math.Sin(rad), math.Cos(rad))
		}
	}

	x := mat.NewDense(minutes, nFeat*2, data)
	y := mat.NewDense(len(out), 1, out)
	return x, y
}

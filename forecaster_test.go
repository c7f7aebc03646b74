package forecaster

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aouyang1/revenue-forecaster/forecast"
	"github.com/aouyang1/revenue-forecaster/timedataset"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func dailyTimes(start time.Time, n int) []time.Time {
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, start.AddDate(0, 0, i))
	}
	return t
}

func generateRevenueSeries(n int) ([]time.Time, []float64) {
	t := dailyTimes(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), n)
	y := make(timedataset.Series, n)
	y.Add(timedataset.GenerateConstY(n, 1000)).
		Add(timedataset.GenerateWaveY(t, 80, 7*86400, 1, 0)).
		Add(timedataset.GenerateChange(t, t[n/2], 0, 3)).
		Add(timedataset.GenerateNoise(t, rand.New(rand.NewPCG(7, 11)), 10))
	return t, y
}

func TestForecasterFitPredict(t *testing.T) {
	tSeries, y := generateRevenueSeries(120)

	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.Fit(tSeries, y))

	res, err := f.Predict(tSeries)
	require.Nil(t, err)
	require.Equal(t, len(tSeries), res.Len())
	assert.Equal(t, tSeries, res.T)

	m, err := f.Model()
	require.Nil(t, err)
	assert.Greater(t, m.ResidualStd, 0.0)
	assert.Less(t, m.ResidualStd, 20.0)

	for i := range res.T {
		assert.LessOrEqual(t, res.Lower[i], res.Forecast[i])
		assert.LessOrEqual(t, res.Forecast[i], res.Upper[i])
	}

	assert.Equal(t, []string{forecast.ComponentTrend, "weekly"}, res.Components.Names())
	sum := make([]float64, res.Len())
	for _, name := range res.Components.Names() {
		floats.Add(sum, res.Components[name])
	}
	assert.InDeltaSlice(t, res.Forecast, sum, 1e-6)

	// every training point is inside the same width interval
	width := res.Upper[0] - res.Forecast[0]
	for i := range res.T {
		assert.InDelta(t, width, res.Upper[i]-res.Forecast[i], 1e-9)
	}
}

func TestForecasterIntervalWidensIntoFuture(t *testing.T) {
	tSeries, y := generateRevenueSeries(60)

	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.Fit(tSeries, y))

	last := tSeries[len(tSeries)-1]
	future := []time.Time{
		last,
		last.AddDate(0, 0, 10),
		last.AddDate(0, 0, 59),
	}
	res, err := f.Predict(future)
	require.Nil(t, err)

	w0 := res.Upper[0] - res.Forecast[0]
	w1 := res.Upper[1] - res.Forecast[1]
	w2 := res.Upper[2] - res.Forecast[2]
	assert.Less(t, w0, w1)
	assert.Less(t, w1, w2)

	// 59 days past a 59 day training window doubles the variance
	assert.InDelta(t, w0*1.4142135, w2, 1e-3)
}

func TestMakeFutureIndex(t *testing.T) {
	testData := map[string]struct {
		t        []time.Time
		periods  int
		expected time.Time
	}{
		"10 daily rows": {
			t:        dailyTimes(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10),
			periods:  30,
			expected: time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC),
		},
		"1000 daily rows": {
			t:        dailyTimes(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 1000),
			periods:  30,
			expected: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1029),
		},
		"10 monthly rows": {
			t:        timedataset.GenerateMonthly(10, time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)),
			periods:  30,
			expected: time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		},
		"no periods": {
			t:        dailyTimes(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10),
			expected: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			y := make([]float64, len(td.t))
			for i := range y {
				y[i] = 10 + float64(i)
			}

			f, err := New(nil)
			require.Nil(t, err)
			require.Nil(t, f.Fit(td.t, y))

			res, err := f.MakeFutureIndex(td.periods)
			require.Nil(t, err)
			require.Len(t, res, len(td.t)+td.periods)
			assert.Equal(t, td.t, res[:len(td.t)])
			assert.Equal(t, td.expected, res[len(res)-1])
		})
	}
}

func TestForecasterErrors(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		t   []time.Time
		y   []float64
		err error
	}{
		"constant": {
			t:   dailyTimes(start, 5),
			y:   []float64{2, 2, 2, 2, 2},
			err: forecast.ErrDegenerateSeries,
		},
		"single distinct time": {
			t:   []time.Time{start, start},
			y:   []float64{1, 2},
			err: forecast.ErrInsufficientTrainingData,
		},
		"decreasing time": {
			t:   []time.Time{start.AddDate(0, 0, 1), start},
			y:   []float64{1, 2},
			err: timedataset.ErrNonMontonic,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := New(nil)
			require.Nil(t, err)

			err = f.Fit(td.t, td.y)
			assert.ErrorIs(t, err, td.err)

			var engineErr *EngineError
			require.True(t, errors.As(err, &engineErr))
			assert.Equal(t, "fit", engineErr.Op)
		})
	}
}

func TestUnfitForecaster(t *testing.T) {
	f, err := New(nil)
	require.Nil(t, err)

	_, err = f.MakeFutureIndex(30)
	assert.ErrorIs(t, err, ErrEmptyTimeDataset)

	_, err = f.Predict([]time.Time{time.Now()})
	assert.ErrorIs(t, err, forecast.ErrUntrainedForecast)
	var engineErr *EngineError
	assert.True(t, errors.As(err, &engineErr))
}

func TestNewInvalidIntervalWidth(t *testing.T) {
	testData := map[string]struct {
		width float64
	}{
		"zero":     {width: 0},
		"one":      {width: 1},
		"negative": {width: -0.5},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := NewDefaultOptions()
			opt.IntervalWidth = td.width
			_, err := New(opt)
			assert.ErrorIs(t, err, ErrInvalidIntervalWidth)
		})
	}
}

func TestForecasterFromModel(t *testing.T) {
	tSeries, y := generateRevenueSeries(90)

	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.Fit(tSeries, y))

	future := dailyTimes(tSeries[len(tSeries)-1], 30)
	expected, err := f.Predict(future)
	require.Nil(t, err)

	eq, err := f.SeriesModelEq()
	require.Nil(t, err)
	assert.Contains(t, eq, "y ~ ")

	m, err := f.Model()
	require.Nil(t, err)
	out, err := json.Marshal(m)
	require.Nil(t, err)

	var loaded Model
	require.Nil(t, json.Unmarshal(out, &loaded))

	f, err = NewFromModel(loaded)
	require.Nil(t, err)
	res, err := f.Predict(future)
	require.Nil(t, err)

	assert.InDeltaSlice(t, expected.Forecast, res.Forecast, 1e-6)
	assert.InDeltaSlice(t, expected.Upper, res.Upper, 1e-6)
	assert.InDeltaSlice(t, expected.Lower, res.Lower, 1e-6)

	loadedEq, err := f.SeriesModelEq()
	require.Nil(t, err)
	assert.Equal(t, eq, loadedEq)

	_, err = NewFromModel(Model{})
	assert.ErrorIs(t, err, ErrNoOptionsInModel)
}

// Package forecaster fits an additive trend, seasonality and holiday model to a univariate time
// series and produces forecasts with an uncertainty interval over any set of time points.
package forecaster

import (
	"fmt"
	"math"
	"time"

	"github.com/aouyang1/revenue-forecaster/forecast"
	"github.com/aouyang1/revenue-forecaster/timedataset"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Forecaster fits a forecast model and can be used to generate forecasts
type Forecaster struct {
	opt *Options

	seriesForecast *forecast.Forecast

	fitTrainingData *timedataset.TimeDataset
	residualStd     float64
}

// New creates a new instance of a Forecaster using the provided options. If no options are provided
// a default is used.
func New(opt *Options) (*Forecaster, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	seriesForecast, err := forecast.New(opt.SeriesOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecast series, %w", err)
	}

	f := &Forecaster{
		opt:            opt,
		seriesForecast: seriesForecast,
	}
	return f, nil
}

// NewFromModel creates a new instance of Forecaster from a pre-existing model. This should be generated from
// a previous forecaster call to Model().
func NewFromModel(model Model) (*Forecaster, error) {
	if model.Options == nil {
		return nil, ErrNoOptionsInModel
	}
	if err := model.Options.Validate(); err != nil {
		return nil, err
	}
	opt := *model.Options
	opt.SeriesOptions = model.Series.Options

	seriesForecast, err := forecast.NewFromModel(model.Series)
	if err != nil {
		return nil, fmt.Errorf("unable to load from series model, %w", err)
	}
	f := &Forecaster{
		opt:            &opt,
		seriesForecast: seriesForecast,
		residualStd:    model.ResidualStd,
	}
	return f, nil
}

// Fit uses the input time dataset and fits the forecast model. Failures of the underlying
// engine are returned as an *EngineError.
func (f *Forecaster) Fit(t []time.Time, y []float64) error {
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return engineErr("fit", fmt.Errorf("unable to create training dataset, %w", err))
	}

	if err := f.seriesForecast.Fit(td.T, td.Y); err != nil {
		return engineErr("fit", fmt.Errorf("unable to forecast series, %w", err))
	}
	f.fitTrainingData = td

	f.residualStd = 0
	if residual := f.seriesForecast.Residuals(); len(residual) > 1 {
		f.residualStd = stat.StdDev(residual, nil)
	}
	return nil
}

// Predict takes in any set of time samples and generates a forecast, upper, lower values per time
// point along with the additive components. The interval is the residual standard deviation
// scaled by the normal quantile of the interval width and widens for points past the end of
// the training window.
func (f *Forecaster) Predict(t []time.Time) (*Results, error) {
	seriesRes, seriesComp, err := f.seriesForecast.Predict(t)
	if err != nil {
		return nil, engineErr("predict", fmt.Errorf("unable to predict series forecasts, %w", err))
	}

	z := distuv.UnitNormal.Quantile(0.5 + f.opt.IntervalWidth/2.0)
	trainStart, trainEnd := f.seriesForecast.TrainWindow()
	span := trainEnd.Sub(trainStart).Seconds()

	upper := make([]float64, len(seriesRes))
	lower := make([]float64, len(seriesRes))
	for i, tPnt := range t {
		width := z * f.residualStd
		if past := tPnt.Sub(trainEnd).Seconds(); past > 0 && span > 0 {
			width *= math.Sqrt(1.0 + past/span)
		}
		upper[i] = seriesRes[i] + width
		lower[i] = seriesRes[i] - width
	}

	tCopy := make([]time.Time, len(t))
	copy(tCopy, t)

	r := &Results{
		T:          tCopy,
		Forecast:   seriesRes,
		Upper:      upper,
		Lower:      lower,
		Components: seriesComp,
	}
	return r, nil
}

// MakeFutureIndex returns the training time points followed by the given number of future
// periods spaced at the frequency inferred from the training data
func (f *Forecaster) MakeFutureIndex(periods int) ([]time.Time, error) {
	if f.fitTrainingData == nil {
		return nil, engineErr("future index", ErrEmptyTimeDataset)
	}
	t, err := timedataset.TimeSlice(f.fitTrainingData.T).Extend(periods)
	if err != nil {
		return nil, engineErr("future index", fmt.Errorf("unable to extend training time, %w", err))
	}
	return t, nil
}

// Model generates a serializeable representation of the fit options, series model, and
// uncertainty. This can be used to initialize a new Forecaster for immediate predictions
// skipping the training step.
func (f *Forecaster) Model() (Model, error) {
	seriesModel, err := f.seriesForecast.Model()
	if err != nil {
		return Model{}, fmt.Errorf("unable to fetch series model, %w", err)
	}
	opt := *f.opt
	opt.SeriesOptions = seriesModel.Options
	m := Model{
		Options:     &opt,
		Series:      seriesModel,
		ResidualStd: f.residualStd,
	}
	return m, nil
}

// SeriesModelEq returns a string representation of the fit series model represented as
// y ~ b + m1x1 + m2x2 ...
func (f *Forecaster) SeriesModelEq() (string, error) {
	return f.seriesForecast.ModelEq()
}

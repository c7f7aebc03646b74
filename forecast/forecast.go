// Package forecast fits a single additive linear model of a univariate time series made of
// a piecewise linear trend, Fourier seasonalities and holiday effects.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aouyang1/revenue-forecaster/feature"
	"github.com/aouyang1/revenue-forecaster/forecast/options"
	"github.com/aouyang1/revenue-forecaster/linearmodel"
	"github.com/aouyang1/revenue-forecaster/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUninitializedForecast    = errors.New("uninitialized forecast")
	ErrInsufficientTrainingData = errors.New("insufficient training data, need at least two distinct time points")
	ErrDegenerateSeries         = errors.New("every training value is identical")
	ErrNonFinite                = errors.New("training data contains a non-finite value")
	ErrNoModelCoefficients      = errors.New("no model coefficients from fit")
	ErrUntrainedForecast        = errors.New("forecast has not been trained yet")
	ErrNoOptionsInModel         = errors.New("no options set in model")
)

// minPenalty keeps the normal equations positive definite when features are collinear
const minPenalty = 1e-9

// Forecast represents a single forecast model of a time series. The target is scaled by its
// largest absolute value before a ridge regression is run, and the weights are stored in
// the original units.
type Forecast struct {
	opt    *options.Options // options as provided
	fitOpt *options.Options // options resolved against the training window
	scores *Scores

	// model coefficients
	fLabels *feature.Labels

	trainStartTime time.Time
	trainEndTime   time.Time
	residual       []float64

	coef      []float64
	intercept float64
	trained   bool
}

// New creates a new forecast instance with the given options. If none are provided, a default
// is used
func New(opt *options.Options) (*Forecast, error) {
	if opt == nil {
		opt = options.NewDefaultOptions()
	}

	return &Forecast{opt: opt.Copy()}, nil
}

// NewFromModel creates a new forecast instance given a forecast Model to initialize. This
// instance can be used for inference immediately and does not need to be trained again.
func NewFromModel(model Model) (*Forecast, error) {
	if model.Options == nil {
		return nil, ErrNoOptionsInModel
	}

	labels, err := model.Weights.FeatureLabels()
	if err != nil {
		return nil, err
	}

	f := &Forecast{
		opt:            model.Options.Copy(),
		fitOpt:         model.Options.Copy(),
		fLabels:        feature.NewLabels(labels),
		trainStartTime: model.TrainStartTime,
		trainEndTime:   model.TrainEndTime,
		intercept:      model.Weights.Intercept,
		coef:           model.Weights.Coefficients(),
		scores:         model.Scores,
		trained:        true,
	}
	return f, nil
}

// Fit takes the input training data and fits the trend, seasonal and holiday weights
func (f *Forecast) Fit(t []time.Time, y []float64) error {
	if f == nil {
		return ErrUninitializedForecast
	}

	trainingData, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return err
	}
	for i, val := range trainingData.Y {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("value at index %d, %w", i, ErrNonFinite)
		}
	}
	if trainingData.DistinctTimes() < 2 {
		return ErrInsufficientTrainingData
	}
	if floats.Max(trainingData.Y) == floats.Min(trainingData.Y) {
		return ErrDegenerateSeries
	}

	fitOpt := f.opt.Copy()
	fitOpt.Resolve(trainingData.T)

	trainStartTime := trainingData.T[0]
	trainEndTime := trainingData.T[len(trainingData.T)-1]

	x, err := fitOpt.GenerateFeatures(trainingData.T, trainStartTime, trainEndTime)
	if err != nil {
		return fmt.Errorf("unable to generate features, %w", err)
	}
	x.RemoveZeroOnlyFeatures()
	labels := x.Labels()

	yScale := math.Max(math.Abs(floats.Max(trainingData.Y)), math.Abs(floats.Min(trainingData.Y)))
	scaled := make([]float64, len(trainingData.Y))
	floats.ScaleTo(scaled, 1.0/yScale, trainingData.Y)

	penalties := fitOpt.Penalties(labels)
	floats.AddConst(minPenalty, penalties)

	m := len(scaled)
	model, err := linearmodel.NewRidgeRegression(&linearmodel.RidgeOptions{
		Lambda:       float64(m),
		Penalties:    penalties,
		FitIntercept: true,
	})
	if err != nil {
		return err
	}
	if err := model.Fit(x.Matrix(false), mat.NewDense(m, 1, scaled)); err != nil {
		return fmt.Errorf("unable to fit model, %w", err)
	}

	coef := model.Coef()
	floats.Scale(yScale, coef)

	f.fitOpt = fitOpt
	f.fLabels = feature.NewLabels(labels)
	f.trainStartTime = trainStartTime
	f.trainEndTime = trainEndTime
	f.intercept = model.Intercept() * yScale
	f.coef = coef
	f.trained = true

	predicted, _, err := f.Predict(trainingData.T)
	if err != nil {
		return err
	}

	scores, err := NewScores(predicted, trainingData.Y)
	if err != nil {
		return err
	}
	f.scores = scores

	residual := make([]float64, len(trainingData.Y))
	floats.SubTo(residual, trainingData.Y, predicted)
	f.residual = residual

	return nil
}

// Predict takes a slice of times in any order and produces the predicted value for those
// times along with the additive components given a pre-trained model. The components sum
// to the prediction.
func (f *Forecast) Predict(t []time.Time) ([]float64, Components, error) {
	if f == nil {
		return nil, nil, ErrUninitializedForecast
	}

	if !f.trained {
		return nil, nil, ErrUntrainedForecast
	}

	x, err := f.fitOpt.GenerateFeatures(t, f.trainStartTime, f.trainEndTime)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to generate features, %w", err)
	}

	res := make([]float64, len(t))
	floats.AddConst(f.intercept, res)

	comp := make(Components)
	trend := make([]float64, len(t))
	copy(trend, res)
	comp[ComponentTrend] = trend

	for i, label := range f.fLabels.Labels() {
		vals, exists := x.Get(label)
		if !exists {
			continue
		}
		name := componentName(label)
		compVals, exists := comp[name]
		if !exists {
			compVals = make([]float64, len(t))
			comp[name] = compVals
		}
		floats.AddScaled(res, f.coef[i], vals)
		floats.AddScaled(compVals, f.coef[i], vals)
	}
	return res, comp, nil
}

// Coefficients returns a forecast model map of coefficients keyed by the string
// representation of each feature label
func (f *Forecast) Coefficients() (map[string]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}

	labels := f.fLabels.Labels()
	if len(labels) == 0 || len(f.coef) == 0 {
		return nil, ErrNoModelCoefficients
	}
	coef := make(map[string]float64)
	for i := 0; i < len(f.coef); i++ {
		coef[labels[i].String()] = f.coef[i]
	}
	return coef, nil
}

// Intercept returns the intercept of the forecast model
func (f *Forecast) Intercept() float64 {
	if f == nil {
		return 0
	}
	return f.intercept
}

// TrainWindow returns the first and last time of the training data
func (f *Forecast) TrainWindow() (time.Time, time.Time) {
	if f == nil {
		return time.Time{}, time.Time{}
	}
	return f.trainStartTime, f.trainEndTime
}

// Model returns the serializeable format of the forecast model composing of the
// resolved forecast options, intercept, coefficients with their feature labels, and the
// model fit scores
func (f *Forecast) Model() (Model, error) {
	if f == nil {
		return Model{}, ErrUninitializedForecast
	}
	if !f.trained {
		return Model{}, ErrUntrainedForecast
	}

	fws := make([]FeatureWeight, 0, len(f.coef))
	labels := f.fLabels.Labels()
	for i, c := range f.coef {
		fws = append(fws, NewFeatureWeight(labels[i], c))
	}
	w := Weights{
		Intercept: f.intercept,
		Coef:      fws,
	}
	m := Model{
		TrainStartTime: f.trainStartTime,
		TrainEndTime:   f.trainEndTime,
		Options:        f.fitOpt.Copy(),
		Weights:        w,
		Scores:         f.scores,
	}
	return m, nil
}

// ModelEq returns a string representation of the model linear equation in the format of
// y ~ b + m1x1 + m2x2 + ...
func (f *Forecast) ModelEq() (string, error) {
	if f == nil {
		return "", ErrUninitializedForecast
	}

	eq := "y ~ "

	coef, err := f.Coefficients()
	if err != nil {
		return "", err
	}

	eq += fmt.Sprintf("%.2f", f.Intercept())
	labels := f.fLabels.Labels()
	for i := 0; i < len(f.coef); i++ {
		w := coef[labels[i].String()]
		if w == 0 {
			continue
		}
		eq += fmt.Sprintf("+%.2f*%s", w, labels[i])
	}
	return eq, nil
}

// Residuals returns a slice of values representing the difference between the
// training data and the fit data
func (f *Forecast) Residuals() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.residual))
	copy(res, f.residual)
	return res
}

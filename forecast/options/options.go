// Package options contains all forecast options for a linear fit of a univariate time series
package options

import (
	"fmt"
	"io"
	"time"

	"github.com/aouyang1/revenue-forecaster/feature"
	"github.com/aouyang1/revenue-forecaster/forecast/util"
)

const (
	LabelTimeEpoch = "epoch"
)

// Options configures a forecast by specifying the growth, changepoints, seasonality and
// holidays to fit along with the regularization applied to each group of features.
type Options struct {
	Growth string `json:"growth"`

	ChangepointOptions ChangepointOptions `json:"changepoint_options"`
	SeasonalityOptions SeasonalityOptions `json:"seasonality_options"`
	HolidayOptions     HolidayOptions     `json:"holiday_options"`

	Regularization Regularization `json:"regularization"`
}

// NewDefaultOptions returns a set of default forecast options
func NewDefaultOptions() *Options {
	return &Options{
		Growth:             feature.GrowthLinear,
		ChangepointOptions: NewDefaultChangepointOptions(),
		SeasonalityOptions: NewDefaultSeasonalityOptions(),
		Regularization:     NewDefaultRegularization(),
	}
}

// Copy returns a deep copy of the options so a fit can resolve automatic settings without
// mutating the caller's options
func (o *Options) Copy() *Options {
	if o == nil {
		return nil
	}
	next := *o
	next.ChangepointOptions.Changepoints = append([]Changepoint(nil), o.ChangepointOptions.Changepoints...)
	next.SeasonalityOptions.SeasonalityConfigs = append([]SeasonalityConfig(nil), o.SeasonalityOptions.SeasonalityConfigs...)
	return &next
}

// Resolve fixes any automatic settings against the training window. Changepoints are
// placed and seasonalities are chosen so that the resulting options always produce the
// same features at prediction time.
func (o *Options) Resolve(t []time.Time) {
	if o.ChangepointOptions.Auto {
		o.ChangepointOptions.GenerateAutoChangepoints(t)
		o.ChangepointOptions.Auto = false
	}
	if o.SeasonalityOptions.Auto {
		o.SeasonalityOptions.SeasonalityConfigs = o.SeasonalityOptions.Resolve(t)
		o.SeasonalityOptions.Auto = false
	}
}

// GenerateTimeFeatures generates the epoch time feature along with the growth feature
// scaled against the training window
func (o *Options) GenerateTimeFeatures(t []time.Time, trainStartTime, trainEndTime time.Time) *feature.Set {
	if o == nil {
		o = NewDefaultOptions()
	}

	tFeat := feature.NewSet()

	feat := feature.NewTime(LabelTimeEpoch)
	epoch := feat.Generate(t)
	tFeat.Set(feat, epoch)

	switch o.Growth {
	case feature.GrowthLinear:
		linearFeat := feature.Linear()
		tFeat.Set(linearFeat, linearFeat.Generate(epoch, trainStartTime, trainEndTime))
	}
	return tFeat
}

// GenerateFeatures builds every regressor of the model for the given time points. The
// time features are excluded from the result.
func (o *Options) GenerateFeatures(t []time.Time, trainStartTime, trainEndTime time.Time) (*feature.Set, error) {
	if o == nil {
		o = NewDefaultOptions()
	}

	tFeat := o.GenerateTimeFeatures(t, trainStartTime, trainEndTime)
	epoch, exists := tFeat.Get(feature.NewTime(LabelTimeEpoch))
	if !exists {
		return nil, ErrUnknownTimeFeature
	}

	x := tFeat.FilterByType(feature.FeatureTypeGrowth)
	x.Update(o.ChangepointOptions.GenerateFeatures(epoch, trainStartTime, trainEndTime))

	seasFeat, err := o.SeasonalityOptions.GenerateFeatures(epoch)
	if err != nil {
		return nil, err
	}
	x.Update(seasFeat)

	holFeat, err := o.HolidayOptions.GenerateFeatures(t)
	if err != nil {
		return nil, err
	}
	x.Update(holFeat)
	return x, nil
}

// Penalties returns the regularization penalty of each feature in order
func (o *Options) Penalties(labels []feature.Feature) []float64 {
	penalties := make([]float64, len(labels))
	for i, label := range labels {
		penalties[i] = o.Regularization.Penalty(label.Type())
	}
	return penalties
}

func (o *Options) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(w, "%s%sGrowth: %s\n", prefix, util.IndentExpand(indent, indentGrowth), o.Growth); err != nil {
		return err
	}
	if err := o.Regularization.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	if err := o.SeasonalityOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	if err := o.ChangepointOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	return o.HolidayOptions.TablePrint(w, prefix, indent, indentGrowth)
}

// Regularization holds the ridge penalty applied per observation to each feature group.
// Larger values shrink the group towards zero. Growth is never penalized.
type Regularization struct {
	Changepoint float64 `json:"changepoint"`
	Seasonality float64 `json:"seasonality"`
	Holiday     float64 `json:"holiday"`
}

// NewDefaultRegularization returns penalties that keep the trend smooth while letting
// seasonality and holidays fit freely
func NewDefaultRegularization() Regularization {
	return Regularization{
		Changepoint: 1e-3,
		Seasonality: 1e-4,
		Holiday:     1e-5,
	}
}

// Penalty returns the penalty of a feature type
func (r Regularization) Penalty(ft feature.FeatureType) float64 {
	switch ft {
	case feature.FeatureTypeChangepoint:
		return r.Changepoint
	case feature.FeatureTypeSeasonality:
		return r.Seasonality
	case feature.FeatureTypeEvent:
		return r.Holiday
	}
	return 0.0
}

func (r Regularization) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	_, err := fmt.Fprintf(w, "%s%sRegularization: changepoint=%g seasonality=%g holiday=%g\n",
		prefix, util.IndentExpand(indent, indentGrowth),
		r.Changepoint, r.Seasonality, r.Holiday)
	return err
}

package forecaster

import (
	"errors"
	"fmt"

	"github.com/aouyang1/revenue-forecaster/forecast/options"
)

var ErrInvalidIntervalWidth = errors.New("interval width must be between 0 and 1 exclusive")

// DefaultIntervalWidth is the probability mass covered by the upper and lower bounds
const DefaultIntervalWidth = 0.8

// Options configures the series model along with the width of the uncertainty interval
type Options struct {
	SeriesOptions *options.Options `json:"series_options"`
	IntervalWidth float64          `json:"interval_width"`
}

// NewDefaultOptions returns the default series options with an 80% uncertainty interval
func NewDefaultOptions() *Options {
	return &Options{
		SeriesOptions: options.NewDefaultOptions(),
		IntervalWidth: DefaultIntervalWidth,
	}
}

// Validate checks the interval width is a usable probability
func (o *Options) Validate() error {
	if o.IntervalWidth <= 0 || o.IntervalWidth >= 1 {
		return fmt.Errorf("got %.3f, %w", o.IntervalWidth, ErrInvalidIntervalWidth)
	}
	return nil
}

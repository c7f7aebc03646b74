package forecaster

import (
	"fmt"
	"io"

	"github.com/aouyang1/revenue-forecaster/forecast"
)

// Model is the serializeable form of a fit forecaster
type Model struct {
	Options     *Options       `json:"options"`
	Series      forecast.Model `json:"series_model"`
	ResidualStd float64        `json:"residual_std"`
}

func (m Model) TablePrint(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Series:"); err != nil {
		return err
	}
	if err := m.Series.TablePrint(w, "  ", "  "); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "Uncertainty:"); err != nil {
		return err
	}
	width := DefaultIntervalWidth
	if m.Options != nil {
		width = m.Options.IntervalWidth
	}
	if _, err := fmt.Fprintf(w, "  Interval Width: %.2f\n  Residual Std: %.3f\n\n", width, m.ResidualStd); err != nil {
		return err
	}
	return nil
}

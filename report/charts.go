// Package report renders the forecast charts and the result page.
package report

import (
	"time"

	"github.com/aouyang1/revenue-forecaster"
	"github.com/aouyang1/revenue-forecaster/series"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	SeriesActual   = "Actual"
	SeriesForecast = "Forecast"
	SeriesUpper    = "Upper"
	SeriesLower    = "Lower"
)

// PreviewRows is the number of trailing rows shown under the charts
const PreviewRows = 5

// Preview returns the last n points of the cleaned series
func Preview(s series.Series, n int) series.Series {
	return s.Tail(n)
}

func axisLabels(t []time.Time) []string {
	labels := make([]string, len(t))
	for i, tPnt := range t {
		labels[i] = formatTime(tPnt)
	}
	return labels
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}

func newLine(title string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(
			opts.Initialization{
				PageTitle: title,
				Width:     "100%",
			},
		),
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(
			opts.Tooltip{
				Show:    opts.Bool(true),
				Trigger: "axis",
			},
		),
	)
	return line
}

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. Each
// series of y must have the same length as the input time slice.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := newLine(title)
	line.SetXAxis(axisLabels(t))
	for i, name := range seriesName {
		lineData := make([]opts.LineData, 0, len(y[i]))
		for _, val := range y[i] {
			lineData = append(lineData, opts.LineData{Value: val})
		}
		line.AddSeries(name, lineData)
	}
	return line
}

// ForecastChart plots the observed revenue against the forecast along with the upper and lower
// bounds. Future rows have no actual value and are left as gaps.
func ForecastChart(history series.Series, res *forecaster.Results) *charts.Line {
	line := newLine("Revenue Forecast")

	n := res.Len()
	lineDataActual := make([]opts.LineData, 0, n)
	lineDataForecast := make([]opts.LineData, 0, n)
	lineDataUpper := make([]opts.LineData, 0, n)
	lineDataLower := make([]opts.LineData, 0, n)

	for i := 0; i < n; i++ {
		if i < len(history) {
			lineDataActual = append(lineDataActual, opts.LineData{Value: history[i].Value.InexactFloat64()})
		} else {
			lineDataActual = append(lineDataActual, opts.LineData{})
		}
		lineDataForecast = append(lineDataForecast, opts.LineData{Value: res.Forecast[i]})
		lineDataUpper = append(lineDataUpper, opts.LineData{Value: res.Upper[i]})
		lineDataLower = append(lineDataLower, opts.LineData{Value: res.Lower[i]})
	}

	line.SetXAxis(axisLabels(res.T)).
		AddSeries(SeriesActual, lineDataActual).
		AddSeries(SeriesForecast, lineDataForecast).
		AddSeries(SeriesUpper, lineDataUpper).
		AddSeries(SeriesLower, lineDataLower)
	return line
}

// ComponentCharts returns one chart per component with the trend first followed by the rest
// in name order
func ComponentCharts(res *forecaster.Results) []*charts.Line {
	names := res.Components.Names()
	lines := make([]*charts.Line, 0, len(names))
	for _, name := range names {
		lines = append(lines, LineTSeries(name, []string{name}, res.T, [][]float64{res.Components[name]}))
	}
	return lines
}

// ComponentsPage stacks the component charts into a single page
func ComponentsPage(res *forecaster.Results) *components.Page {
	page := components.NewPage()
	page.PageTitle = "Forecast Components"
	for _, line := range ComponentCharts(res) {
		page.AddCharts(line)
	}
	return page
}

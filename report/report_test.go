package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aouyang1/revenue-forecaster"
	"github.com/aouyang1/revenue-forecaster/forecast"
	"github.com/aouyang1/revenue-forecaster/series"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func setup(historyLen, horizon int) (series.Series, *forecaster.Results) {
	history := make(series.Series, 0, historyLen)
	for i := 0; i < historyLen; i++ {
		history = append(history, series.Point{Time: day(i), Value: decimal.NewFromInt(int64(100 + i))})
	}

	n := historyLen + horizon
	res := &forecaster.Results{
		Components: forecast.Components{
			"weekly":                make([]float64, n),
			forecast.ComponentTrend: make([]float64, n),
		},
	}
	for i := 0; i < n; i++ {
		res.T = append(res.T, day(i))
		res.Forecast = append(res.Forecast, 100+float64(i))
		res.Upper = append(res.Upper, 105+float64(i))
		res.Lower = append(res.Lower, 95+float64(i))
		res.Components[forecast.ComponentTrend][i] = 100 + float64(i)
	}
	return history, res
}

func TestPreview(t *testing.T) {
	history, _ := setup(8, 0)
	res := Preview(history, PreviewRows)
	require.Len(t, res, 5)
	assert.Equal(t, day(3), res[0].Time)
	assert.Equal(t, day(7), res[4].Time)

	short, _ := setup(2, 0)
	assert.Len(t, Preview(short, PreviewRows), 2)
}

func TestForecastChart(t *testing.T) {
	history, res := setup(10, 3)
	line := ForecastChart(history, res)

	require.Len(t, line.MultiSeries, 4)
	names := make([]string, 0, 4)
	for _, s := range line.MultiSeries {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{SeriesActual, SeriesForecast, SeriesUpper, SeriesLower}, names)

	actual, ok := line.MultiSeries[0].Data.([]opts.LineData)
	require.True(t, ok)
	require.Len(t, actual, 13)
	assert.Equal(t, 109.0, actual[9].Value)
	assert.Nil(t, actual[10].Value)
	assert.Nil(t, actual[12].Value)

	upper, ok := line.MultiSeries[2].Data.([]opts.LineData)
	require.True(t, ok)
	assert.Equal(t, 117.0, upper[12].Value)
}

func TestComponentCharts(t *testing.T) {
	_, res := setup(5, 2)
	lines := ComponentCharts(res)
	require.Len(t, lines, 2)
	assert.Equal(t, forecast.ComponentTrend, lines[0].MultiSeries[0].Name)
	assert.Equal(t, "weekly", lines[1].MultiSeries[0].Name)

	data, ok := lines[0].MultiSeries[0].Data.([]opts.LineData)
	require.True(t, ok)
	assert.Len(t, data, 7)
}

func TestFormatTime(t *testing.T) {
	testData := map[string]struct {
		t        time.Time
		expected string
	}{
		"midnight": {
			t:        day(0),
			expected: "2024-01-01",
		},
		"intraday": {
			t:        day(0).Add(90 * time.Minute),
			expected: "2024-01-01 01:30:00",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, formatTime(td.t))
		})
	}
}

func TestRender(t *testing.T) {
	history, res := setup(20, 30)
	success, err := NewView("revenue.csv", history, res)
	require.Nil(t, err)
	success.Warnings = []string{"no API key configured"}

	testData := map[string]struct {
		v           View
		contains    []string
		notContains []string
	}{
		"upload form": {
			v:           View{},
			contains:    []string{`action="/forecast"`, `name="file"`},
			notContains: []string{"<iframe", SuccessMessage, `class="error"`},
		},
		"schema error": {
			v:           View{Error: "The file must contain 'Date' and 'Revenue' columns."},
			contains:    []string{`class="error"`, "The file must contain &#39;Date&#39; and &#39;Revenue&#39; columns."},
			notContains: []string{"<iframe", SuccessMessage},
		},
		"forecast": {
			v: success,
			contains: []string{
				SuccessMessage,
				"no API key configured",
				"<td>2024-01-16</td><td>115</td>",
				"<td>2024-01-20</td><td>119</td>",
				`srcdoc="`,
				"echarts",
			},
			notContains: []string{"<td>2024-01-15</td>", `class="error"`},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.Nil(t, Render(&buf, td.v))
			out := buf.String()
			for _, c := range td.contains {
				assert.Contains(t, out, c)
			}
			for _, c := range td.notContains {
				assert.NotContains(t, out, c)
			}
		})
	}
}

func TestNewViewEscapesCharts(t *testing.T) {
	history, res := setup(3, 1)
	v, err := NewView("revenue.xlsx", history, res)
	require.Nil(t, err)
	assert.True(t, strings.Contains(v.ForecastDoc, "<script"))

	var buf bytes.Buffer
	require.Nil(t, Render(&buf, v))
	// chart documents are escaped into the frame attribute
	assert.Equal(t, 0, strings.Count(buf.String(), "<script"))
}

func TestFormatRevenue(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected string
	}{
		"trailing zero kept": {input: "100.50", expected: "100.50"},
		"whole number":       {input: "120", expected: "120"},
		"cents":              {input: "99.25", expected: "99.25"},
		"negative":           {input: "-3.10", expected: "-3.10"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			d, err := decimal.NewFromString(td.input)
			require.Nil(t, err)
			assert.Equal(t, td.expected, formatRevenue(d))
		})
	}
}

func TestNewViewPreviewKeepsPrecision(t *testing.T) {
	history, res := setup(3, 1)
	history[2].Value = decimal.RequireFromString("100.50")

	v, err := NewView("revenue.csv", history, res)
	require.Nil(t, err)
	require.Len(t, v.Preview, 3)
	assert.Equal(t, "100.50", v.Preview[2].Revenue)
}

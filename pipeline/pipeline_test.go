package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aouyang1/revenue-forecaster"
	"github.com/aouyang1/revenue-forecaster/forecast"
	"github.com/aouyang1/revenue-forecaster/schema"
	"github.com/aouyang1/revenue-forecaster/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyCSV(n int, value func(i int) string) string {
	var sb strings.Builder
	sb.WriteString("Date,Revenue\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%s,%s\n", start.AddDate(0, 0, i).Format(time.DateOnly), value(i))
	}
	return sb.String()
}

func newRunner(factory EngineFactory) (*Runner, *Metrics) {
	metrics := NewMetrics(prometheus.NewRegistry())
	r := &Runner{
		Engine:  factory,
		Limits:  Limits{MaxBytes: 1 << 20, MaxRows: 10000},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: metrics,
	}
	return r, metrics
}

type countingEngine struct {
	fits, indexes, predicts, models int
	inner                           Engine
}

func (c *countingEngine) Fit(t []time.Time, y []float64) error {
	c.fits++
	return c.inner.Fit(t, y)
}

func (c *countingEngine) MakeFutureIndex(periods int) ([]time.Time, error) {
	c.indexes++
	return c.inner.MakeFutureIndex(periods)
}

func (c *countingEngine) Model() (forecaster.Model, error) {
	c.models++
	return c.inner.Model()
}

func (c *countingEngine) Predict(t []time.Time) (*forecaster.Results, error) {
	c.predicts++
	return c.inner.Predict(t)
}

func TestRun(t *testing.T) {
	input := dailyCSV(60, func(i int) string {
		return fmt.Sprintf("%d.50", 1000+5*i+(i%7)*20)
	})

	counter := &countingEngine{}
	r, metrics := newRunner(func() (Engine, error) {
		f, err := forecaster.New(nil)
		if err != nil {
			return nil, err
		}
		counter.inner = f
		return counter, nil
	})

	out, err := r.Run(context.Background(), "revenue.csv", strings.NewReader(input))
	require.Nil(t, err)

	require.Len(t, out.Series, 60)
	assert.Equal(t, 30, out.Request.Horizon)
	require.Equal(t, 90, out.Result.Len())
	assert.Equal(t, out.Series.Times(), out.Result.T[:60])
	assert.Equal(t, time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), out.Result.T[89])
	assert.Contains(t, out.Result.Components.Names(), forecast.ComponentTrend)

	assert.Equal(t, 1, counter.fits)
	assert.Equal(t, 1, counter.indexes)
	assert.Equal(t, 1, counter.predicts)
	assert.Equal(t, 1, counter.models)
	assert.Equal(t, 0.8, out.Model.Options.IntervalWidth)
	assert.NotEmpty(t, out.Model.Series.Weights.Coef)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 5, testutil.CollectAndCount(metrics.StageDuration))
}

func TestRunErrors(t *testing.T) {
	testData := map[string]struct {
		filename string
		input    string
		factory  EngineFactory
		err      error
		target   any
		outcome  string
	}{
		"missing revenue column": {
			filename: "revenue.csv",
			input:    "Date,Amount\n2024-01-01,100\n",
			err:      schema.ErrMissingColumn,
			target:   new(*schema.SchemaError),
			outcome:  OutcomeSchemaError,
		},
		"unsupported format": {
			filename: "revenue.txt",
			input:    "Date,Revenue\n",
			err:      table.ErrUnsupportedFormat,
			outcome:  OutcomeError,
		},
		"bad date": {
			filename: "revenue.csv",
			input:    "Date,Revenue\nyesterday,100\n",
			target:   new(*schema.CoercionError),
			outcome:  OutcomeError,
		},
		"constant series": {
			filename: "revenue.csv",
			input:    dailyCSV(10, func(int) string { return "5" }),
			err:      forecast.ErrDegenerateSeries,
			target:   new(*forecaster.EngineError),
			outcome:  OutcomeError,
		},
		"empty series": {
			filename: "revenue.csv",
			input:    "Date,Revenue\n",
			target:   new(*forecaster.EngineError),
			outcome:  OutcomeError,
		},
		"engine factory": {
			filename: "revenue.csv",
			input:    dailyCSV(10, func(i int) string { return fmt.Sprint(i) }),
			factory: func() (Engine, error) {
				return nil, forecaster.ErrInvalidIntervalWidth
			},
			err:     forecaster.ErrInvalidIntervalWidth,
			outcome: OutcomeError,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			factory := td.factory
			if factory == nil {
				factory = NewForecasterFactory(nil)
			}
			r, metrics := newRunner(factory)

			out, err := r.Run(context.Background(), td.filename, strings.NewReader(td.input))
			assert.Nil(t, out)
			require.NotNil(t, err)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
			}
			if td.target != nil {
				assert.True(t, errors.As(err, td.target))
			}
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues(td.outcome)))
		})
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, _ := newRunner(NewForecasterFactory(nil))
	_, err := r.Run(ctx, "revenue.csv", strings.NewReader(dailyCSV(10, func(i int) string { return fmt.Sprint(i) })))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunTooLarge(t *testing.T) {
	r, _ := newRunner(NewForecasterFactory(nil))
	r.Limits.MaxRows = 5

	_, err := r.Run(context.Background(), "revenue.csv", strings.NewReader(dailyCSV(10, func(i int) string { return fmt.Sprint(i) })))
	var tooLarge *table.TooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, "rows", tooLarge.What)
}

func TestRunWithoutMetrics(t *testing.T) {
	r := &Runner{Engine: NewForecasterFactory(nil)}
	out, err := r.Run(context.Background(), "revenue.csv", strings.NewReader(dailyCSV(20, func(i int) string { return fmt.Sprint(i * i) })))
	require.Nil(t, err)
	assert.Equal(t, 50, out.Result.Len())
}

func TestRunLogsFittedModel(t *testing.T) {
	input := dailyCSV(30, func(i int) string {
		return fmt.Sprintf("%d", 500+4*i)
	})

	testData := map[string]struct {
		level    slog.Level
		expected bool
	}{
		"debug prints the model": {level: slog.LevelDebug, expected: true},
		"info skips the model":   {level: slog.LevelInfo, expected: false},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			r, _ := newRunner(NewForecasterFactory(nil))
			r.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: td.level}))

			_, err := r.Run(context.Background(), "revenue.csv", strings.NewReader(input))
			require.NoError(t, err)

			logs := buf.String()
			assert.Equal(t, td.expected, strings.Contains(logs, "fitted model"))
			assert.Equal(t, td.expected, strings.Contains(logs, "Residual Std"))
		})
	}
}

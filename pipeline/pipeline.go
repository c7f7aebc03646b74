// Package pipeline runs an upload through decoding, normalization, and forecasting, attempting
// each stage exactly once.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aouyang1/revenue-forecaster"
	"github.com/aouyang1/revenue-forecaster/request"
	"github.com/aouyang1/revenue-forecaster/schema"
	"github.com/aouyang1/revenue-forecaster/series"
	"github.com/aouyang1/revenue-forecaster/table"
)

const (
	StageDecode    = "decode"
	StageNormalize = "normalize"
	StageFit       = "fit"
	StageIndex     = "future_index"
	StagePredict   = "predict"
)

const (
	OutcomeSuccess     = "success"
	OutcomeSchemaError = "schema_error"
	OutcomeError       = "error"
)

// Engine is the forecast engine the pipeline drives
type Engine interface {
	Fit(t []time.Time, y []float64) error
	MakeFutureIndex(periods int) ([]time.Time, error)
	Predict(t []time.Time) (*forecaster.Results, error)
	Model() (forecaster.Model, error)
}

// EngineFactory returns a fresh engine for every run so no state is shared across requests
type EngineFactory func() (Engine, error)

// NewForecasterFactory returns a factory of forecasters configured with opt
func NewForecasterFactory(opt *forecaster.Options) EngineFactory {
	return func() (Engine, error) {
		f, err := forecaster.New(opt)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// Limits bounds the size of an upload
type Limits struct {
	MaxBytes int64
	MaxRows  int
}

// Outcome holds the cleaned series, the request sent to the engine, the fitted model and
// its result
type Outcome struct {
	Series  series.Series
	Request request.ForecastRequest
	Model   forecaster.Model
	Result  *forecaster.Results
}

// Runner runs uploads through the pipeline
type Runner struct {
	Engine  EngineFactory
	Limits  Limits
	Schema  []schema.Option
	Logger  *slog.Logger
	Metrics *Metrics
}

// Run decodes, normalizes and forecasts the upload. A missing required column returns a
// *schema.SchemaError. Every other failure is returned wrapped with the stage that failed.
func (r *Runner) Run(ctx context.Context, filename string, rd io.Reader) (*Outcome, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("filename", filename)

	out, err := r.run(ctx, logger, filename, rd)
	switch {
	case err == nil:
		r.Metrics.recordRun(OutcomeSuccess)
		logger.Info("forecast completed", "rows", len(out.Series), "points", out.Result.Len())
	case errors.Is(err, schema.ErrMissingColumn):
		r.Metrics.recordRun(OutcomeSchemaError)
		logger.Warn("upload rejected", "error", err.Error())
	default:
		r.Metrics.recordRun(OutcomeError)
		logger.Error("forecast failed", "error", err.Error())
	}
	return out, err
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, filename string, rd io.Reader) (*Outcome, error) {
	var raw *table.RawTable
	err := r.stage(ctx, logger, StageDecode, func() error {
		var err error
		raw, err = table.Decode(filename, rd,
			table.WithMaxBytes(r.Limits.MaxBytes),
			table.WithMaxRows(r.Limits.MaxRows),
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	var s series.Series
	err = r.stage(ctx, logger, StageNormalize, func() error {
		var err error
		s, err = schema.Normalize(raw, r.Schema...)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.Metrics.recordRows(len(s))

	req := request.Build(s)

	engine, err := r.Engine()
	if err != nil {
		return nil, fmt.Errorf("unable to create forecast engine, %w", err)
	}

	var model forecaster.Model
	err = r.stage(ctx, logger, StageFit, func() error {
		if err := engine.Fit(req.Dataset()); err != nil {
			return err
		}
		var err error
		model, err = engine.Model()
		return err
	})
	if err != nil {
		return nil, err
	}
	logModel(ctx, logger, model)

	var index []time.Time
	err = r.stage(ctx, logger, StageIndex, func() error {
		var err error
		index, err = req.ExtendedIndex(engine)
		return err
	})
	if err != nil {
		return nil, err
	}

	var res *forecaster.Results
	err = r.stage(ctx, logger, StagePredict, func() error {
		var err error
		res, err = engine.Predict(index)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Series:  s,
		Request: req,
		Model:   model,
		Result:  res,
	}, nil
}

func logModel(ctx context.Context, logger *slog.Logger, model forecaster.Model) {
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	var buf bytes.Buffer
	if err := model.TablePrint(&buf); err != nil {
		logger.Debug("unable to print fitted model", "error", err.Error())
		return
	}
	logger.Debug("fitted model", "model", buf.String())
}

func (r *Runner) stage(ctx context.Context, logger *slog.Logger, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s stage not started, %w", name, err)
	}

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	r.Metrics.recordStage(name, elapsed.Seconds())

	if err != nil {
		logger.Debug("stage failed", "stage", name, "duration", elapsed, "error", err.Error())
		var schemaErr *schema.SchemaError
		if errors.As(err, &schemaErr) {
			return err
		}
		return fmt.Errorf("%s stage failed, %w", name, err)
	}
	logger.Debug("stage completed", "stage", name, "duration", elapsed)
	return nil
}

// Command revforecast serves the revenue forecasting page or renders a forecast report for a
// local file.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aouyang1/revenue-forecaster/internal/config"
	"github.com/aouyang1/revenue-forecaster/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	envFiles []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "revforecast",
		Short: "Forecast revenue from an uploaded spreadsheet",
		Long: `revforecast fits a trend, seasonality and holiday model to a table of dated revenue
and forecasts the next 30 periods.

Example usage:
  revforecast serve                          # Serve the upload page
  revforecast render sales.xlsx -o out.html  # Render a report for a local file
  revforecast inspect model.json             # Print a model saved with render --model`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "env files to load (default is .env)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newRenderCmd(opts))
	cmd.AddCommand(newInspectCmd())
	return cmd
}

// setup loads the configuration and builds the logger and the pipeline shared by every command
func (o *rootOptions) setup(logOut io.Writer, reg prometheus.Registerer) (*config.Config, *slog.Logger, *pipeline.Runner, error) {
	cfg, err := config.Load(o.envFiles...)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := cfg.NewLogger(logOut)
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	runner := &pipeline.Runner{
		Engine: pipeline.NewForecasterFactory(cfg.ForecasterOptions()),
		Limits: pipeline.Limits{
			MaxBytes: cfg.MaxUploadBytes,
			MaxRows:  cfg.MaxRows,
		},
		Schema:  cfg.SchemaOptions(),
		Logger:  logger,
		Metrics: pipeline.NewMetrics(reg),
	}
	return cfg, logger, runner, nil
}

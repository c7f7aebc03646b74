package main

import (
	"fmt"
	"os"

	"github.com/aouyang1/revenue-forecaster"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <model.json>",
		Short: "Print a model written by render --model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadModel(args[0])
			if err != nil {
				return err
			}
			m, err := f.Model()
			if err != nil {
				return err
			}
			eq, err := f.SeriesModelEq()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if err := m.TablePrint(w); err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "Equation:\n  %s\n", eq)
			return err
		},
	}
}

func loadModel(path string) (*forecaster.Forecaster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read model, %w", err)
	}
	var m forecaster.Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unable to decode model, %w", err)
	}
	return forecaster.NewFromModel(m)
}

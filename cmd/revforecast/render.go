package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aouyang1/revenue-forecaster"
	"github.com/aouyang1/revenue-forecaster/report"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	output     string
	model      string
	profile    string
	profileDir string
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Forecast a local csv or xlsx file and write the report page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stopProfile, err := opts.startProfile()
			if err != nil {
				return err
			}
			defer stopProfile()

			return runRender(cmd, root, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "report.html", "file to write the report to, - for stdout")
	cmd.Flags().StringVar(&opts.model, "model", "", "also write the fitted model as json to this file")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "profile the run, one of cpu or mem")
	cmd.Flags().StringVar(&opts.profileDir, "profile-dir", ".", "directory to write the profile to")
	return cmd
}

func (o *renderOptions) startProfile() (func(), error) {
	var mode func(*profile.Profile)
	switch o.profile {
	case "":
		return func() {}, nil
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	default:
		return nil, fmt.Errorf("unknown profile %q, expected cpu or mem", o.profile)
	}
	p := profile.Start(mode, profile.ProfilePath(o.profileDir), profile.NoShutdownHook, profile.Quiet)
	return p.Stop, nil
}

func runRender(cmd *cobra.Command, root *rootOptions, path string, opts *renderOptions) error {
	cfg, logger, runner, err := root.setup(cmd.ErrOrStderr(), nil)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open input, %w", err)
	}
	defer f.Close()

	filename := filepath.Base(path)
	out, err := runner.Run(cmd.Context(), filename, f)
	if err != nil {
		return err
	}

	if opts.model != "" {
		if err := writeModel(opts.model, out.Model); err != nil {
			return err
		}
	}

	view, err := report.NewView(filename, out.Series, out.Result)
	if err != nil {
		return err
	}
	view.Warnings = cfg.Warnings()

	output := opts.output
	var w io.Writer = cmd.OutOrStdout()
	if output != "-" {
		outFile, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("unable to create output, %w", err)
		}
		defer outFile.Close()
		w = outFile
	}
	if err := report.Render(w, view); err != nil {
		return fmt.Errorf("unable to write report, %w", err)
	}
	logger.Info("report written", "output", output, "points", out.Result.Len())
	return nil
}

func writeModel(path string, m forecaster.Model) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode model, %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write model, %w", err)
	}
	return nil
}

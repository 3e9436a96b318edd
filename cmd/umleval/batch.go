package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/JaimeStill/umleval/internal/batch"
	"github.com/JaimeStill/umleval/internal/config"
)

func runBatch(ctx context.Context, a *app, args []string) error {
	var (
		dir, out        string
		models, samples string
		exclude         string
		workers         int
	)

	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&dir, "dir", "", "dataset directory (overrides batch.dataset_dir)")
	fs.StringVar(&out, "out", "", "result directory (overrides batch.output_dir)")
	fs.StringVar(&models, "models", "", "comma-separated model names (overrides batch.models)")
	fs.StringVar(&samples, "samples", "", "comma-separated sample ids (overrides batch.samples)")
	fs.StringVar(&exclude, "exclude", "", "comma-separated gitignore patterns for discovered samples")
	fs.IntVar(&workers, "workers", 0, "concurrent comparisons (overrides batch.workers)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	infra, err := a.setup(ctx, func(cfg *config.Config) error {
		override := config.BatchConfig{
			DatasetDir: dir,
			OutputDir:  out,
			Models:     config.SplitList(models),
			Samples:    config.SplitList(samples),
			Exclude:    config.SplitList(exclude),
			Workers:    workers,
		}
		cfg.Batch.Merge(&override)
		return cfg.Batch.Validate()
	})
	if err != nil {
		return err
	}
	defer a.teardown(infra)

	ctx = infra.Lifecycle.Context()
	bc := infra.Config.Batch

	matrix := batch.Matrix{Samples: bc.Samples, Models: bc.Models}
	if len(matrix.Models) == 0 {
		return fmt.Errorf("no models configured: set batch.models or pass -models")
	}

	if len(matrix.Samples) == 0 {
		discovered, err := batch.Discover(ctx, infra.Storage, bc.DatasetDir, bc.Exclude)
		if err != nil {
			return fmt.Errorf("discover samples: %w", err)
		}
		infra.Logger.Info("samples discovered", "dir", bc.DatasetDir, "count", len(discovered))
		matrix.Samples = discovered
	}

	var recorder batch.Recorder
	if infra.Results != nil {
		recorder = infra.Results
	}

	layout := batch.Layout{DatasetDir: bc.DatasetDir, OutputDir: bc.OutputDir}
	runner := batch.New(infra.Comparator, layout, bc.Workers, recorder, infra.Logger)

	summary, err := runner.Run(ctx, matrix)
	if summary != nil {
		fmt.Fprintf(a.stdout, "run %s: %d pairs, %d succeeded, %d failed\n",
			summary.RunID, summary.Total, summary.Succeeded, summary.Failed)
		for _, o := range summary.Failures() {
			fmt.Fprintf(a.stdout, "  failed %s/%s after %s: %v\n", o.Sample, o.Model, o.Duration.Round(time.Millisecond), o.Err)
		}
	}
	return err
}

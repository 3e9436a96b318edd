package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/umleval/internal/config"
	"github.com/JaimeStill/umleval/internal/diagram"
	"github.com/JaimeStill/umleval/internal/evaluation"
)

func runCompare(ctx context.Context, a *app, args []string) error {
	var (
		gt, pred, out     string
		allowFenced       bool
		matchMultiplicity bool
	)

	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&gt, "g", "", "ground truth document")
	fs.StringVar(&gt, "ground-truth", "", "ground truth document")
	fs.StringVar(&pred, "p", "", "prediction document")
	fs.StringVar(&pred, "prediction", "", "prediction document")
	fs.StringVar(&out, "o", "", "report output path")
	fs.StringVar(&out, "output", "", "report output path")
	fs.BoolVar(&allowFenced, "allow-fenced", false, "accept predictions wrapped in a markdown code fence")
	fs.BoolVar(&matchMultiplicity, "match-multiplicity", false, "include relationship multiplicities in matching")
	fs.Usage = func() {
		fmt.Fprintln(a.stderr, "usage: umleval compare -g GROUND_TRUTH -p PREDICTION -o OUTPUT")
		fmt.Fprintln(a.stderr, "       umleval compare GROUND_TRUTH PREDICTION OUTPUT")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if gt == "" && pred == "" && out == "" && fs.NArg() == 3 {
		gt, pred, out = fs.Arg(0), fs.Arg(1), fs.Arg(2)
	}
	if gt == "" || pred == "" || out == "" {
		fs.Usage()
		return fmt.Errorf("ground truth, prediction, and output paths are required")
	}

	infra, err := a.setup(ctx, func(cfg *config.Config) error {
		if allowFenced {
			cfg.Evaluation.AllowFenced = true
		}
		if matchMultiplicity {
			cfg.Evaluation.MatchMultiplicity = true
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer a.teardown(infra)

	ctx = infra.Lifecycle.Context()

	report, err := infra.Comparator.Compare(ctx, gt, pred)
	if err != nil {
		return err
	}

	if err := infra.Comparator.WriteReport(ctx, report, out); err != nil {
		return err
	}

	if infra.Results != nil {
		if err := infra.Results.Record(ctx, uuid.New(), gt, pred, report); err != nil {
			infra.Logger.Warn("result not recorded", "error", err)
		}
	}

	printReport(a.stdout, report)
	return nil
}

func printReport(w io.Writer, r *evaluation.Report) {
	line := func(name string, s evaluation.Score) {
		fmt.Fprintf(w, "%-14s tp=%-3d fp=%-3d fn=%-3d precision=%.4f recall=%.4f f1=%.4f\n",
			name, s.TP, s.FP, s.FN, s.Precision, s.Recall, s.F1)
	}

	for _, cat := range diagram.Categories {
		line(string(cat), r.PerCategory[cat])
	}
	line("overall", r.Overall)
}

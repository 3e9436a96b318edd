// Command umleval scores predicted UML class diagram descriptions against
// ground truth.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/JaimeStill/umleval/internal/config"
	"github.com/JaimeStill/umleval/internal/evaluation"
	"github.com/JaimeStill/umleval/internal/infrastructure"
)

const usage = `usage: umleval [-config DIR] <command> [flags]

commands:
  compare   score one prediction against its ground truth
  batch     score every sample x model pair of a dataset
  results   list stored comparison results
  version   print the version
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type app struct {
	configDir string
	stdout    io.Writer
	stderr    io.Writer
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"compare": runCompare,
	"batch":   runBatch,
	"results": runResults,
	"version": runVersion,
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}

	fs := flag.NewFlagSet("umleval", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&a.configDir, "config", ".", "directory holding config.toml and its overlays")
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return evaluation.ExitOK
		}
		return evaluation.ExitFailure
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return evaluation.ExitFailure
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "umleval: unknown command %q\n\n", fs.Arg(0))
		fs.Usage()
		return evaluation.ExitFailure
	}

	err := cmd(ctx, a, fs.Args()[1:])
	if errors.Is(err, flag.ErrHelp) {
		return evaluation.ExitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "umleval %s: %v\n", fs.Arg(0), err)
	}
	return evaluation.ExitCode(err)
}

// setup loads configuration and starts the infrastructure. mutate, when
// non-nil, applies command-line overrides before the infrastructure is built
// and rejects overrides that leave the configuration invalid.
func (a *app) setup(ctx context.Context, mutate func(*config.Config) error) (*infrastructure.Infrastructure, error) {
	cfg, err := config.Load(a.configDir)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	if mutate != nil {
		if err := mutate(cfg); err != nil {
			return nil, fmt.Errorf("invalid override: %w", err)
		}
	}

	infra, err := infrastructure.NewWithWriter(ctx, cfg, a.stderr)
	if err != nil {
		return nil, err
	}

	if err := infra.Start(); err != nil {
		infra.Shutdown()
		return nil, err
	}

	infra.Logger.Debug("umleval started", "version", cfg.Version, "env", cfg.Env())
	return infra, nil
}

func (a *app) teardown(infra *infrastructure.Infrastructure) {
	if err := infra.Shutdown(); err != nil {
		infra.Logger.Error("shutdown failed", "error", err)
	}
}

func runVersion(ctx context.Context, a *app, args []string) error {
	cfg, err := config.Load(a.configDir)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	fmt.Fprintf(a.stdout, "umleval %s\n", cfg.Version)
	return nil
}

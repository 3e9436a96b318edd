package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/umleval/internal/evaluation"
)

// Recorder persists the report of a successful comparison.
type Recorder interface {
	Record(ctx context.Context, runID uuid.UUID, sample, model string, report *evaluation.Report) error
}

// Outcome is the result of one pair. Err is nil on success.
type Outcome struct {
	Pair
	Output   string
	F1       float64
	Duration time.Duration
	Err      error
}

// Summary describes a completed run. Outcomes follow Matrix.Pairs order.
type Summary struct {
	RunID     uuid.UUID
	Total     int
	Succeeded int
	Failed    int
	Outcomes  []Outcome
}

// Failures returns the outcomes that did not succeed.
func (s *Summary) Failures() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Runner executes a matrix of comparisons on a bounded pool of workers.
type Runner struct {
	cmp      *evaluation.Comparator
	layout   Layout
	workers  int
	recorder Recorder
	logger   *slog.Logger
}

// New creates a Runner. A workers value below one uses runtime.NumCPU.
// recorder may be nil when results are not persisted.
func New(cmp *evaluation.Comparator, layout Layout, workers int, recorder Recorder, logger *slog.Logger) *Runner {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		cmp:      cmp,
		layout:   layout,
		workers:  workers,
		recorder: recorder,
		logger:   logger.With("system", "batch"),
	}
}

// Run evaluates every pair of m. A failing pair is recorded in the summary
// and never stops the others. Once ctx is cancelled no new pairs start and
// the remaining ones are reported with the context error.
//
// The returned error wraps ErrPairsFailed when any pair failed; the summary
// is returned in either case.
func (r *Runner) Run(ctx context.Context, m Matrix) (*Summary, error) {
	pairs := m.Pairs()
	if len(pairs) == 0 {
		return nil, ErrEmptyMatrix
	}

	summary := &Summary{
		RunID:    uuid.New(),
		Total:    len(pairs),
		Outcomes: make([]Outcome, len(pairs)),
	}

	logger := r.logger.With("run_id", summary.RunID)
	logger.Info("batch started", "pairs", len(pairs), "workers", r.workers)

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, p := range pairs {
		if err := ctx.Err(); err != nil {
			summary.Outcomes[i] = Outcome{Pair: p, Output: r.layout.Result(p), Err: err}
			continue
		}

		g.Go(func() error {
			summary.Outcomes[i] = r.runPair(ctx, summary.RunID, p)
			return nil
		})
	}

	g.Wait()

	for _, o := range summary.Outcomes {
		if o.Err != nil {
			summary.Failed++
			logger.Error("pair failed",
				"sample", o.Sample,
				"model", o.Model,
				"duration", o.Duration,
				"error", o.Err,
			)
			continue
		}
		summary.Succeeded++
		logger.Debug("pair complete",
			"sample", o.Sample,
			"model", o.Model,
			"f1", o.F1,
			"duration", o.Duration,
		)
	}

	logger.Info("batch finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%w: %d of %d", ErrPairsFailed, summary.Failed, summary.Total)
	}
	return summary, nil
}

func (r *Runner) runPair(ctx context.Context, runID uuid.UUID, p Pair) (out Outcome) {
	start := time.Now()
	out = Outcome{Pair: p, Output: r.layout.Result(p)}

	defer func() {
		out.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	report, err := r.cmp.Compare(ctx, r.layout.GroundTruth(p.Sample), r.layout.Prediction(p))
	if err != nil {
		out.Err = err
		return out
	}

	if err := r.cmp.WriteReport(ctx, report, out.Output); err != nil {
		out.Err = err
		return out
	}

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, runID, p.Sample, p.Model, report); err != nil {
			out.Err = fmt.Errorf("record result: %w", err)
			return out
		}
	}

	out.F1 = report.Overall.F1
	return out
}

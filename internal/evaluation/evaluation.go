// Package evaluation compares a predicted UML class diagram description with
// its ground truth and reports per-category and overall precision, recall,
// and F1.
package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/JaimeStill/umleval/internal/diagram"
	"github.com/JaimeStill/umleval/pkg/formatting"
	"github.com/JaimeStill/umleval/pkg/storage"
)

// Options control document loading and keying.
type Options struct {
	// MatchMultiplicity includes relationship multiplicities in element keys.
	MatchMultiplicity bool
	// AllowFenced accepts predictions wrapped in a markdown code fence.
	AllowFenced bool
	// MaxInputSize bounds each input document in bytes. Zero disables the limit.
	MaxInputSize int64
}

// Comparator loads documents from a store, scores them, and writes reports
// back. It holds no per-comparison state and is safe for concurrent use.
type Comparator struct {
	store  storage.System
	opts   Options
	logger *slog.Logger
}

// New creates a Comparator reading and writing through store.
func New(store storage.System, opts Options, logger *slog.Logger) *Comparator {
	return &Comparator{
		store:  store,
		opts:   opts,
		logger: logger.With("system", "evaluation"),
	}
}

// Compare loads both documents and scores the prediction against the ground
// truth. It fails with ErrInputNotFound or ErrMalformedInput without
// producing a partial report.
func (c *Comparator) Compare(ctx context.Context, groundTruthPath, predictionPath string) (*Report, error) {
	truth, err := c.load(ctx, groundTruthPath, false)
	if err != nil {
		return nil, err
	}

	pred, err := c.load(ctx, predictionPath, c.opts.AllowFenced)
	if err != nil {
		return nil, err
	}

	report := Evaluate(truth, pred)

	c.logger.Debug("comparison complete",
		"ground_truth", groundTruthPath,
		"prediction", predictionPath,
		"f1", report.Overall.F1,
	)
	return report, nil
}

// WriteReport serializes report as indented JSON to outputPath, replacing any
// existing document. On failure nothing is left at outputPath.
func (c *Comparator) WriteReport(ctx context.Context, report *Report, outputPath string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s: encode report: %w", ErrOutputWrite, outputPath, err)
	}
	data = append(data, '\n')

	if err := c.store.Write(ctx, outputPath, data, "application/json"); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, outputPath, err)
	}

	c.logger.Debug("report written", "path", outputPath)
	return nil
}

func (c *Comparator) load(ctx context.Context, path string, fenced bool) (diagram.Description, error) {
	data, err := c.read(ctx, path)
	if err != nil {
		return diagram.Description{}, err
	}

	if fenced && formatting.IsFenced(string(data)) {
		data = []byte(formatting.Unfence(string(data)))
	}

	doc, err := diagram.Decode(data)
	if err != nil {
		return diagram.Description{}, fmt.Errorf("%w: %s: %w", ErrMalformedInput, path, err)
	}

	return diagram.Describe(doc, diagram.Options{
		MatchMultiplicity: c.opts.MatchMultiplicity,
	}), nil
}

func (c *Comparator) read(ctx context.Context, path string) ([]byte, error) {
	r, err := c.store.Open(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrEmptyKey) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, fmt.Errorf("%w: %s: %w", ErrInputNotFound, path, err)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer r.Close()

	var src io.Reader = r
	if c.opts.MaxInputSize > 0 {
		src = io.LimitReader(r, c.opts.MaxInputSize+1)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if c.opts.MaxInputSize > 0 && int64(buf.Len()) > c.opts.MaxInputSize {
		return nil, fmt.Errorf(
			"%w: %s: exceeds maximum input size of %s",
			ErrMalformedInput, path, formatting.FormatBytes(c.opts.MaxInputSize),
		)
	}

	return buf.Bytes(), nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/umleval/internal/results"
	"github.com/JaimeStill/umleval/pkg/pagination"
	"github.com/JaimeStill/umleval/pkg/query"
)

var errResultsDisabled = errors.New("results persistence is disabled; set results.enabled or UMLEVAL_RESULTS_ENABLED")

func runResults(ctx context.Context, a *app, args []string) error {
	var (
		runID, id string
		sort      string
		page      pagination.PageRequest
		filters   results.Filters
	)

	fs := flag.NewFlagSet("results", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&id, "id", "", "print the single record with this id")
	fs.StringVar(&runID, "run", "", "batch run id")
	fs.StringVar(&filters.Model, "model", "", "model name")
	fs.StringVar(&filters.SampleID, "sample", "", "sample id")
	fs.IntVar(&page.Page, "page", 1, "page number")
	fs.IntVar(&page.PageSize, "page-size", 0, "records per page (default from results.pagination)")
	fs.StringVar(&sort, "sort", "", "sort fields, e.g. SampleID,-F1")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var recordID uuid.UUID
	if id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("invalid record id %q: %w", id, err)
		}
		recordID = parsed
	}

	if runID != "" {
		parsed, err := uuid.Parse(runID)
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", runID, err)
		}
		filters.RunID = parsed
	}

	page.Sort = query.ParseSortFields(sort)

	infra, err := a.setup(ctx, nil)
	if err != nil {
		return err
	}
	defer a.teardown(infra)

	if infra.Results == nil {
		return errResultsDisabled
	}

	enc := json.NewEncoder(a.stdout)

	if id != "" {
		rec, err := infra.Results.Find(infra.Lifecycle.Context(), recordID)
		if err != nil {
			return fmt.Errorf("record %s: %w", id, err)
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		return nil
	}

	result, err := infra.Results.List(infra.Lifecycle.Context(), page, filters)
	if err != nil {
		return err
	}

	infra.Logger.Info("results listed",
		"page", result.Page,
		"total_pages", result.TotalPages,
		"total", result.Total,
	)

	for _, r := range result.Data {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return nil
}

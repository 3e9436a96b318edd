package results_test

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/umleval/internal/diagram"
	"github.com/JaimeStill/umleval/internal/evaluation"
	"github.com/JaimeStill/umleval/internal/results"
	"github.com/JaimeStill/umleval/pkg/database"
	"github.com/JaimeStill/umleval/pkg/lifecycle"
	"github.com/JaimeStill/umleval/pkg/pagination"
	"github.com/JaimeStill/umleval/pkg/query"
)

func setup(t *testing.T) results.System {
	t.Helper()

	cfg := &database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "results.db"),
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	db, err := database.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}

	lc := lifecycle.New(context.Background())
	t.Cleanup(func() { lc.Shutdown(5 * time.Second) })

	if err := db.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	src, err := results.Migrations(database.DriverSQLite)
	if err != nil {
		t.Fatalf("Migrations() error = %v", err)
	}
	up, err := fs.ReadFile(src, "000001_evaluation_results.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := db.Connection().Exec(string(up)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	return results.New(db.Connection(), db.Driver(), slog.Default(), pagination.Config{
		DefaultPageSize: 100,
		MaxPageSize:     100,
	})
}

func report(tp, fp, fn int) *evaluation.Report {
	score := evaluation.NewScore(tp, fp, fn)
	per := make(map[diagram.Category]evaluation.Score, len(diagram.Categories))
	for _, cat := range diagram.Categories {
		per[cat] = score
	}
	return &evaluation.Report{
		PerCategory: per,
		Overall:     evaluation.NewScore(tp*4, fp*4, fn*4),
		Aggregation: evaluation.AggregationMicro,
	}
}

func TestSaveAndFind(t *testing.T) {
	store := setup(t)
	ctx := context.Background()
	runID := uuid.New()

	saved, err := store.Save(ctx, results.NewRecord(runID, "3", "gpt", report(2, 1, 1)))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID == uuid.Nil {
		t.Error("Save() did not assign an id")
	}
	if saved.EvaluatedAt.IsZero() {
		t.Error("Save() did not stamp evaluated_at")
	}

	got, err := store.Find(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if got.RunID != runID || got.SampleID != "3" || got.Model != "gpt" {
		t.Errorf("Find() identity = %s/%s/%s", got.RunID, got.SampleID, got.Model)
	}
	if got.Overall != saved.Overall {
		t.Errorf("Find() overall = %+v, want %+v", got.Overall, saved.Overall)
	}
	if got.PerCategory[diagram.Methods] != evaluation.NewScore(2, 1, 1) {
		t.Errorf("Find() methods = %+v", got.PerCategory[diagram.Methods])
	}
	if got.Aggregation != evaluation.AggregationMicro {
		t.Errorf("Find() aggregation = %q", got.Aggregation)
	}
	if !got.EvaluatedAt.Equal(saved.EvaluatedAt) {
		t.Errorf("Find() evaluated_at = %v, want %v", got.EvaluatedAt, saved.EvaluatedAt)
	}
}

func TestFindNotFound(t *testing.T) {
	store := setup(t)

	if _, err := store.Find(context.Background(), uuid.New()); !errors.Is(err, results.ErrNotFound) {
		t.Errorf("Find() error = %v, want ErrNotFound", err)
	}
}

func TestSaveDuplicate(t *testing.T) {
	store := setup(t)
	ctx := context.Background()
	runID := uuid.New()

	if err := store.Record(ctx, runID, "1", "gpt", report(1, 0, 0)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	err := store.Record(ctx, runID, "1", "gpt", report(1, 0, 0))
	if !errors.Is(err, results.ErrDuplicate) {
		t.Errorf("second Record() error = %v, want ErrDuplicate", err)
	}

	if err := store.Record(ctx, uuid.New(), "1", "gpt", report(1, 0, 0)); err != nil {
		t.Errorf("Record() in a new run error = %v", err)
	}
}

func TestSaveInvalid(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rec  results.Record
	}{
		{"missing run", results.NewRecord(uuid.Nil, "1", "gpt", report(1, 0, 0))},
		{"missing sample", results.NewRecord(uuid.New(), "", "gpt", report(1, 0, 0))},
		{"missing model", results.NewRecord(uuid.New(), "1", "", report(1, 0, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Save(ctx, tt.rec); !errors.Is(err, results.ErrInvalidRecord) {
				t.Errorf("Save() error = %v, want ErrInvalidRecord", err)
			}
		})
	}
}

func TestList(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	runA, runB := uuid.New(), uuid.New()
	seed := []struct {
		run    uuid.UUID
		sample string
		model  string
	}{
		{runA, "2", "gpt"},
		{runA, "1", "gpt"},
		{runA, "1", "gemini"},
		{runB, "1", "gpt"},
	}
	for _, s := range seed {
		if err := store.Record(ctx, s.run, s.sample, s.model, report(1, 1, 0)); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		name    string
		filters results.Filters
		want    []string
	}{
		{"all", results.Filters{}, []string{"1/gemini", "1/gpt", "1/gpt", "2/gpt"}},
		{"by run", results.Filters{RunID: runA}, []string{"1/gemini", "1/gpt", "2/gpt"}},
		{"by model", results.Filters{Model: "gemini"}, []string{"1/gemini"}},
		{"by run and sample", results.Filters{RunID: runB, SampleID: "1"}, []string{"1/gpt"}},
		{"no match", results.Filters{Model: "llava"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := store.List(ctx, pagination.PageRequest{}, tt.filters)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			got := result.Data
			if got == nil {
				t.Fatal("List() returned nil slice")
			}
			if result.Total != len(tt.want) {
				t.Errorf("Total = %d, want %d", result.Total, len(tt.want))
			}
			if len(got) != len(tt.want) {
				t.Fatalf("List() returned %d records, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if key := r.SampleID + "/" + r.Model; key != tt.want[i] {
					t.Errorf("List()[%d] = %s, want %s", i, key, tt.want[i])
				}
			}
		})
	}
}

func TestListPaging(t *testing.T) {
	store := setup(t)
	ctx := context.Background()
	runID := uuid.New()

	for i, sample := range []string{"a", "b", "c", "d", "e"} {
		if err := store.Record(ctx, runID, sample, "gpt", report(i, 1, 1)); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	page, err := store.List(ctx, pagination.PageRequest{Page: 2, PageSize: 2}, results.Filters{RunID: runID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if page.Total != 5 || page.TotalPages != 3 {
		t.Errorf("total = %d pages = %d, want 5/3", page.Total, page.TotalPages)
	}
	if len(page.Data) != 2 || page.Data[0].SampleID != "c" || page.Data[1].SampleID != "d" {
		t.Errorf("page 2 = %v", page.Data)
	}

	last, err := store.List(ctx, pagination.PageRequest{Page: 3, PageSize: 2}, results.Filters{RunID: runID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(last.Data) != 1 || last.Data[0].SampleID != "e" {
		t.Errorf("page 3 = %v, want [e]", last.Data)
	}

	sorted, err := store.List(ctx, pagination.PageRequest{
		PageSize: 1,
		Sort:     query.ParseSortFields("-F1"),
	}, results.Filters{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sorted.Data) != 1 || sorted.Data[0].SampleID != "e" {
		t.Errorf("best f1 = %v, want sample e", sorted.Data)
	}
}

func TestMigrations(t *testing.T) {
	for _, driver := range []string{database.DriverPostgres, database.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			src, err := results.Migrations(driver)
			if err != nil {
				t.Fatalf("Migrations() error = %v", err)
			}
			for _, name := range []string{
				"000001_evaluation_results.up.sql",
				"000001_evaluation_results.down.sql",
			} {
				if _, err := fs.Stat(src, name); err != nil {
					t.Errorf("missing %s: %v", name, err)
				}
			}
		})
	}

	if _, err := results.Migrations("oracle"); !errors.Is(err, database.ErrUnknownDriver) {
		t.Errorf("Migrations(oracle) error = %v, want ErrUnknownDriver", err)
	}
}

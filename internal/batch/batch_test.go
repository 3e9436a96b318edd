package batch_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/umleval/internal/batch"
	"github.com/JaimeStill/umleval/internal/evaluation"
	"github.com/JaimeStill/umleval/pkg/storage"
)

const document = `{
  "classes": ["Library", "Book"],
  "attributes": [{"class": "Book", "name": "title", "type": "String"}],
  "methods": [{"class": "Library", "signature": "lend(b: Book): boolean"}],
  "relationships": [{"source": "Library", "target": "Book", "kind": "composition"}]
}`

func newStore(t *testing.T) (string, storage.System) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.New(&storage.Config{Provider: storage.ProviderLocal, Root: dir}, slog.Default())
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	return dir, store
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

type memoryRecorder struct {
	mu      sync.Mutex
	runIDs  map[uuid.UUID]int
	records []string
	fail    string
}

func (m *memoryRecorder) Record(ctx context.Context, runID uuid.UUID, sample, model string, report *evaluation.Report) error {
	if sample+"/"+model == m.fail {
		return errors.New("store unavailable")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runIDs == nil {
		m.runIDs = make(map[uuid.UUID]int)
	}
	m.runIDs[runID]++
	m.records = append(m.records, sample+"/"+model)
	return nil
}

func TestMatrixPairs(t *testing.T) {
	m := batch.Matrix{Samples: []string{"1", "2"}, Models: []string{"gpt", "gemini"}}

	got := m.Pairs()
	want := []batch.Pair{
		{Sample: "1", Model: "gpt"},
		{Sample: "1", Model: "gemini"},
		{Sample: "2", Model: "gpt"},
		{Sample: "2", Model: "gemini"},
	}

	if !slices.Equal(got, want) {
		t.Errorf("Pairs() = %v, want %v", got, want)
	}

	if n := len(batch.Matrix{Samples: []string{"1"}}.Pairs()); n != 0 {
		t.Errorf("Pairs() without models = %d pairs, want 0", n)
	}
}

func TestLayout(t *testing.T) {
	p := batch.Pair{Sample: "7", Model: "claude"}

	tests := []struct {
		name   string
		layout batch.Layout
		gt     string
		pred   string
		result string
	}{
		{
			name:   "shared directory",
			layout: batch.Layout{DatasetDir: "data"},
			gt:     "data/7-GroundTruth.json",
			pred:   "data/7-Pred-claude.json",
			result: "data/7-Result-claude.json",
		},
		{
			name:   "separate output",
			layout: batch.Layout{DatasetDir: "data", OutputDir: "out"},
			gt:     "data/7-GroundTruth.json",
			pred:   "data/7-Pred-claude.json",
			result: "out/7-Result-claude.json",
		},
		{
			name:   "working directory",
			layout: batch.Layout{},
			gt:     "7-GroundTruth.json",
			pred:   "7-Pred-claude.json",
			result: "7-Result-claude.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.layout.GroundTruth(p.Sample); got != tt.gt {
				t.Errorf("GroundTruth() = %q, want %q", got, tt.gt)
			}
			if got := tt.layout.Prediction(p); got != tt.pred {
				t.Errorf("Prediction() = %q, want %q", got, tt.pred)
			}
			if got := tt.layout.Result(p); got != tt.result {
				t.Errorf("Result() = %q, want %q", got, tt.result)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	root, store := newStore(t)
	for _, name := range []string{
		"10-GroundTruth.json",
		"2-GroundTruth.json",
		"1-GroundTruth.json",
		"draft-GroundTruth.json",
		"1-Pred-gpt.json",
		"notes.txt",
		"-GroundTruth.json",
	} {
		writeFile(t, filepath.Join(root, "data"), name, "{}")
	}

	tests := []struct {
		name    string
		exclude []string
		want    []string
	}{
		{"all", nil, []string{"1", "2", "10", "draft"}},
		{"exclude drafts", []string{"draft-*"}, []string{"1", "2", "10"}},
		{"exclude and negate", []string{"*-GroundTruth.json", "!1*"}, []string{"1", "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := batch.Discover(context.Background(), store, "data", tt.exclude)
			if err != nil {
				t.Fatalf("Discover() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Discover() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscoverMissingDirectory(t *testing.T) {
	_, store := newStore(t)

	_, err := batch.Discover(context.Background(), store, "absent", nil)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Discover() error = %v, want storage.ErrNotFound", err)
	}
}

func seedDataset(t *testing.T, root string, samples, models []string, skip map[string]bool) {
	t.Helper()
	for _, s := range samples {
		writeFile(t, root, s+"-GroundTruth.json", document)
		for _, m := range models {
			if skip[s+"/"+m] {
				continue
			}
			writeFile(t, root, s+"-Pred-"+m+".json", document)
		}
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	root, store := newStore(t)
	samples := []string{"1", "2", "3"}
	models := []string{"gpt", "gemini"}
	seedDataset(t, root, samples, models, map[string]bool{"2/gemini": true})

	cmp := evaluation.New(store, evaluation.Options{}, slog.Default())
	runner := batch.New(cmp, batch.Layout{}, 2, nil, slog.Default())

	summary, err := runner.Run(context.Background(), batch.Matrix{Samples: samples, Models: models})
	if !errors.Is(err, batch.ErrPairsFailed) {
		t.Fatalf("Run() error = %v, want ErrPairsFailed", err)
	}

	if summary.Total != 6 || summary.Succeeded != 5 || summary.Failed != 1 {
		t.Errorf("summary = total %d succeeded %d failed %d, want 6/5/1",
			summary.Total, summary.Succeeded, summary.Failed)
	}

	failures := summary.Failures()
	if len(failures) != 1 || failures[0].Sample != "2" || failures[0].Model != "gemini" {
		t.Fatalf("Failures() = %+v, want only 2/gemini", failures)
	}
	if !errors.Is(failures[0].Err, evaluation.ErrInputNotFound) {
		t.Errorf("failure error = %v, want ErrInputNotFound", failures[0].Err)
	}

	if _, err := os.Stat(filepath.Join(root, "2-Result-gemini.json")); !os.IsNotExist(err) {
		t.Errorf("failed pair should not produce a result, stat error = %v", err)
	}

	for _, o := range summary.Outcomes {
		if o.Err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, o.Output)); err != nil {
			t.Errorf("missing result for %s/%s: %v", o.Sample, o.Model, err)
		}
		if o.F1 != 1 {
			t.Errorf("%s/%s f1 = %v, want 1", o.Sample, o.Model, o.F1)
		}
	}
}

func TestRunSeparateOutputDirectory(t *testing.T) {
	root, store := newStore(t)
	seedDataset(t, filepath.Join(root, "data"), []string{"1"}, []string{"gpt"}, nil)
	if err := os.Mkdir(filepath.Join(root, "out"), 0o755); err != nil {
		t.Fatal(err)
	}

	cmp := evaluation.New(store, evaluation.Options{}, slog.Default())
	layout := batch.Layout{DatasetDir: "data", OutputDir: "out"}
	runner := batch.New(cmp, layout, 1, nil, slog.Default())

	if _, err := runner.Run(context.Background(), batch.Matrix{Samples: []string{"1"}, Models: []string{"gpt"}}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "out", "1-Result-gpt.json")); err != nil {
		t.Errorf("result not written to output directory: %v", err)
	}
}

func TestRunRecordsResults(t *testing.T) {
	root, store := newStore(t)
	samples := []string{"1", "2"}
	models := []string{"gpt"}
	seedDataset(t, root, samples, models, nil)

	rec := &memoryRecorder{fail: "2/gpt"}
	cmp := evaluation.New(store, evaluation.Options{}, slog.Default())
	runner := batch.New(cmp, batch.Layout{}, 0, rec, slog.Default())

	summary, err := runner.Run(context.Background(), batch.Matrix{Samples: samples, Models: models})
	if !errors.Is(err, batch.ErrPairsFailed) {
		t.Fatalf("Run() error = %v, want ErrPairsFailed", err)
	}

	if !slices.Equal(rec.records, []string{"1/gpt"}) {
		t.Errorf("recorded = %v, want [1/gpt]", rec.records)
	}
	if rec.runIDs[summary.RunID] != 1 {
		t.Errorf("records for run %s = %d, want 1", summary.RunID, rec.runIDs[summary.RunID])
	}
	if summary.Failed != 1 {
		t.Errorf("failed = %d, want 1 for the unrecorded pair", summary.Failed)
	}
}

func TestRunCancelled(t *testing.T) {
	root, store := newStore(t)
	samples := []string{"1", "2"}
	models := []string{"gpt", "gemini"}
	seedDataset(t, root, samples, models, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmp := evaluation.New(store, evaluation.Options{}, slog.Default())
	runner := batch.New(cmp, batch.Layout{}, 1, nil, slog.Default())

	summary, err := runner.Run(ctx, batch.Matrix{Samples: samples, Models: models})
	if !errors.Is(err, batch.ErrPairsFailed) {
		t.Fatalf("Run() error = %v, want ErrPairsFailed", err)
	}
	if summary.Failed != 4 {
		t.Errorf("failed = %d, want 4", summary.Failed)
	}
	for _, o := range summary.Outcomes {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("%s/%s error = %v, want context.Canceled", o.Sample, o.Model, o.Err)
		}
	}
}

func TestRunEmptyMatrix(t *testing.T) {
	_, store := newStore(t)
	cmp := evaluation.New(store, evaluation.Options{}, slog.Default())
	runner := batch.New(cmp, batch.Layout{}, 1, nil, slog.Default())

	if _, err := runner.Run(context.Background(), batch.Matrix{}); !errors.Is(err, batch.ErrEmptyMatrix) {
		t.Errorf("Run() error = %v, want ErrEmptyMatrix", err)
	}
}

func TestRunLogsPairDurations(t *testing.T) {
	root, store := newStore(t)
	seedDataset(t, root, []string{"1", "2"}, []string{"gpt"}, map[string]bool{"2/gpt": true})

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cmp := evaluation.New(store, evaluation.Options{}, logger)
	runner := batch.New(cmp, batch.Layout{}, 1, nil, logger)

	summary, err := runner.Run(context.Background(), batch.Matrix{Samples: []string{"1", "2"}, Models: []string{"gpt"}})
	if !errors.Is(err, batch.ErrPairsFailed) {
		t.Fatalf("Run() error = %v, want ErrPairsFailed", err)
	}

	for _, o := range summary.Outcomes {
		if o.Duration <= 0 {
			t.Errorf("%s/%s duration = %v, want positive", o.Sample, o.Model, o.Duration)
		}
	}

	for _, line := range strings.Split(logs.String(), "\n") {
		if !strings.Contains(line, "pair complete") && !strings.Contains(line, "pair failed") {
			continue
		}
		if !strings.Contains(line, "duration=") {
			t.Errorf("pair log without duration: %s", line)
		}
	}
	if !strings.Contains(logs.String(), "pair complete") || !strings.Contains(logs.String(), "pair failed") {
		t.Errorf("missing per-pair logs:\n%s", logs.String())
	}
}

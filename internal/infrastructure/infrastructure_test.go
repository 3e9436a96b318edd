package infrastructure_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/umleval/internal/config"
	"github.com/JaimeStill/umleval/internal/infrastructure"
)

func TestNewWithoutResults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	infra, err := infrastructure.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Storage == nil || infra.Comparator == nil || infra.Logger == nil {
		t.Fatal("core systems not initialized")
	}
	if infra.Database != nil || infra.Results != nil {
		t.Error("results systems should be nil when disabled")
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := infra.Shutdown(); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewWithResults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("UMLEVAL_RESULTS_ENABLED", "true")
	t.Setenv("UMLEVAL_DB_PATH", filepath.Join(dir, "results.db"))
	t.Setenv("UMLEVAL_LOG_LEVEL", "debug")

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var logs bytes.Buffer
	infra, err := infrastructure.NewWithWriter(context.Background(), cfg, &logs)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if infra.Database == nil || infra.Results == nil {
		t.Fatal("results systems should be initialized when enabled")
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := infra.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	out := logs.String()
	if !strings.Contains(out, "database connection established") {
		t.Errorf("missing connect log, got:\n%s", out)
	}
	if !strings.Contains(out, "database connection closed") {
		t.Errorf("missing close log, got:\n%s", out)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.Storage.Provider = "ftp"

	if _, err := infrastructure.New(context.Background(), cfg); err == nil {
		t.Error("New() error = nil, want unknown provider failure")
	}
}

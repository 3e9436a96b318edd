// Package infrastructure assembles the dependencies shared by every umleval
// command: lifecycle coordination, logging, document storage, and the
// optional results database.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/umleval/internal/config"
	"github.com/JaimeStill/umleval/internal/evaluation"
	"github.com/JaimeStill/umleval/internal/results"
	"github.com/JaimeStill/umleval/pkg/database"
	"github.com/JaimeStill/umleval/pkg/lifecycle"
	"github.com/JaimeStill/umleval/pkg/storage"
)

// Infrastructure holds the systems a command needs. Database and Results
// are nil unless results persistence is enabled.
type Infrastructure struct {
	Config     *config.Config
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Storage    storage.System
	Comparator *evaluation.Comparator
	Database   database.System
	Results    results.System
}

// New creates an Infrastructure from cfg, logging to stderr. It opens but
// does not connect to the database; call Start before use.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	return NewWithWriter(ctx, cfg, os.Stderr)
}

// NewWithWriter is New with log output sent to w.
func NewWithWriter(ctx context.Context, cfg *config.Config, w io.Writer) (*Infrastructure, error) {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	infra := &Infrastructure{
		Config:     cfg,
		Lifecycle:  lifecycle.New(ctx),
		Logger:     logger,
		Storage:    store,
		Comparator: evaluation.New(store, cfg.Evaluation.Options(), logger),
	}

	if cfg.Results.Enabled {
		db, err := database.New(&cfg.Results.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
		infra.Results = results.New(db.Connection(), db.Driver(), logger, cfg.Results.Pagination)
	}

	return infra, nil
}

// Start connects the systems that need a round trip before use.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	return nil
}

// Shutdown ends the run and waits for cleanup hooks within the configured
// shutdown timeout.
func (i *Infrastructure) Shutdown() error {
	return i.Lifecycle.Shutdown(i.Config.ShutdownTimeoutDuration())
}

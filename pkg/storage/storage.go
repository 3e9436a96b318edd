// Package storage reads and writes evaluation documents (ground truth,
// predictions, and reports) on the local filesystem or in Azure Blob Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// System is a flat key/value document store.
type System interface {
	// Open returns a stream for the document at key. The caller must close it.
	// Returns ErrNotFound if the document does not exist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Write stores data at key, replacing any existing document. A failed write
	// leaves no partial document behind.
	Write(ctx context.Context, key string, data []byte, contentType string) error
	// List returns the keys of documents directly under dir, sorted.
	List(ctx context.Context, dir string) ([]string, error)
}

// New creates the store selected by cfg.Provider.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderLocal, "":
		return newLocal(cfg.Root, logger), nil
	case ProviderAzure:
		return newAzure(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
)

type local struct {
	root   string
	logger *slog.Logger
}

func newLocal(root string, logger *slog.Logger) *local {
	return &local{
		root:   root,
		logger: logger,
	}
}

func (l *local) resolve(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	if l.root == "" || filepath.IsAbs(key) {
		return filepath.Clean(key), nil
	}
	return filepath.Join(l.root, key), nil
}

func (l *local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := l.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	return f, nil
}

// Write stages data in a temporary file beside the target and renames it into
// place, so readers never observe a partially written document.
func (l *local) Write(ctx context.Context, key string, data []byte, contentType string) error {
	path, err := l.resolve(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}

	l.logger.Debug("document written", "path", path, "bytes", len(data))
	return nil
}

func (l *local) List(ctx context.Context, dir string) ([]string, error) {
	path := dir
	if path == "" {
		path = "."
	}

	resolved, err := l.resolve(path)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, resolved)
		}
		return nil, fmt.Errorf("list %s: %w", resolved, err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if dir == "" {
			keys = append(keys, e.Name())
		} else {
			keys = append(keys, filepath.Join(dir, e.Name()))
		}
	}

	slices.Sort(keys)
	return keys, nil
}

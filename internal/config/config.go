// Package config loads umleval settings from TOML files and UMLEVAL_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/umleval/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvUmlevalEnv             = "UMLEVAL_ENV"
	EnvUmlevalShutdownTimeout = "UMLEVAL_SHUTDOWN_TIMEOUT"
	EnvUmlevalLogLevel        = "UMLEVAL_LOG_LEVEL"
	EnvUmlevalVersion         = "UMLEVAL_VERSION"
)

var storageEnv = &storage.Env{
	Provider:         "UMLEVAL_STORAGE_PROVIDER",
	Root:             "UMLEVAL_STORAGE_ROOT",
	ContainerName:    "UMLEVAL_STORAGE_CONTAINER_NAME",
	ConnectionString: "UMLEVAL_STORAGE_CONNECTION_STRING",
	AccountURL:       "UMLEVAL_STORAGE_ACCOUNT_URL",
}

// Config is the root configuration for umleval.
type Config struct {
	Evaluation      EvaluationConfig `toml:"evaluation"`
	Batch           BatchConfig      `toml:"batch"`
	Storage         storage.Config   `toml:"storage"`
	Results         ResultsConfig    `toml:"results"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	LogLevel        string           `toml:"log_level"`
	Version         string           `toml:"version"`
}

// Env returns the UMLEVAL_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvUmlevalEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var l slog.Level
	l.UnmarshalText([]byte(c.LogLevel))
	return l
}

// Load reads dir/config.toml (if present), applies the dir/config.<env>.toml
// overlay selected by UMLEVAL_ENV (if present), and finalizes all values.
// Without any file, defaults and environment variables provide everything.
func Load(dir string) (*Config, error) {
	cfg := &Config{}

	base := filepath.Join(dir, BaseConfigFile)
	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(dir); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Evaluation.Merge(&overlay.Evaluation)
	c.Batch.Merge(&overlay.Batch)
	c.Storage.Merge(&overlay.Storage)
	c.Results.Merge(&overlay.Results)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Evaluation.Finalize(); err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}
	if err := c.Batch.Finalize(); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Results.Finalize(); err != nil {
		return fmt.Errorf("results: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "10s"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvUmlevalShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvUmlevalLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvUmlevalVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	env := os.Getenv(EnvUmlevalEnv)
	if env == "" {
		return ""
	}

	path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return path
}

package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// BatchConfig describes the sample x model matrix and where its documents
// live. An empty Samples list means samples are discovered from DatasetDir.
type BatchConfig struct {
	DatasetDir string   `toml:"dataset_dir"`
	OutputDir  string   `toml:"output_dir"`
	Samples    []string `toml:"samples"`
	Models     []string `toml:"models"`
	Exclude    []string `toml:"exclude"`
	Workers    int      `toml:"workers"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *BatchConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.Validate()
}

// Merge overwrites non-zero fields from overlay. Lists are replaced, not
// appended.
func (c *BatchConfig) Merge(overlay *BatchConfig) {
	if overlay.DatasetDir != "" {
		c.DatasetDir = overlay.DatasetDir
	}
	if overlay.OutputDir != "" {
		c.OutputDir = overlay.OutputDir
	}
	if len(overlay.Samples) > 0 {
		c.Samples = overlay.Samples
	}
	if len(overlay.Models) > 0 {
		c.Models = overlay.Models
	}
	if len(overlay.Exclude) > 0 {
		c.Exclude = overlay.Exclude
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}

func (c *BatchConfig) loadDefaults() {
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
}

func (c *BatchConfig) loadEnv() error {
	if v := os.Getenv("UMLEVAL_BATCH_DATASET_DIR"); v != "" {
		c.DatasetDir = v
	}
	if v := os.Getenv("UMLEVAL_BATCH_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("UMLEVAL_BATCH_SAMPLES"); v != "" {
		c.Samples = SplitList(v)
	}
	if v := os.Getenv("UMLEVAL_BATCH_MODELS"); v != "" {
		c.Models = SplitList(v)
	}
	if v := os.Getenv("UMLEVAL_BATCH_EXCLUDE"); v != "" {
		c.Exclude = SplitList(v)
	}
	if v := os.Getenv("UMLEVAL_BATCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid UMLEVAL_BATCH_WORKERS: %w", err)
		}
		c.Workers = n
	}
	return nil
}

// Validate checks worker count and that model and sample names cannot
// escape the dataset layout. Call it again after merging overrides.
func (c *BatchConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	for _, m := range c.Models {
		if strings.ContainsAny(m, `/\`) {
			return fmt.Errorf("invalid model name %q", m)
		}
	}
	for _, s := range c.Samples {
		if strings.ContainsAny(s, `/\`) {
			return fmt.Errorf("invalid sample id %q", s)
		}
	}
	return nil
}

// SplitList splits a comma-separated list, trimming entries and dropping
// empty ones.
func SplitList(s string) []string {
	var items []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

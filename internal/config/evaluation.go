package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/umleval/internal/evaluation"
	"github.com/JaimeStill/umleval/pkg/formatting"
)

// EvaluationConfig controls how documents are loaded and compared.
// Boolean switches can be enabled by an overlay but not disabled; use the
// environment variables to force them off.
type EvaluationConfig struct {
	MatchMultiplicity bool   `toml:"match_multiplicity"`
	AllowFenced       bool   `toml:"allow_fenced"`
	MaxInputSize      string `toml:"max_input_size"`
}

// MaxInputSizeBytes returns MaxInputSize in bytes.
func (c *EvaluationConfig) MaxInputSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxInputSize)
	if err != nil {
		return 10 * 1024 * 1024
	}
	return size
}

// Options returns the comparator options described by c.
func (c *EvaluationConfig) Options() evaluation.Options {
	return evaluation.Options{
		MatchMultiplicity: c.MatchMultiplicity,
		AllowFenced:       c.AllowFenced,
		MaxInputSize:      c.MaxInputSizeBytes(),
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EvaluationConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *EvaluationConfig) Merge(overlay *EvaluationConfig) {
	if overlay.MatchMultiplicity {
		c.MatchMultiplicity = true
	}
	if overlay.AllowFenced {
		c.AllowFenced = true
	}
	if overlay.MaxInputSize != "" {
		c.MaxInputSize = overlay.MaxInputSize
	}
}

func (c *EvaluationConfig) loadDefaults() {
	if c.MaxInputSize == "" {
		c.MaxInputSize = "10MB"
	}
}

func (c *EvaluationConfig) loadEnv() error {
	if v := os.Getenv("UMLEVAL_MATCH_MULTIPLICITY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid UMLEVAL_MATCH_MULTIPLICITY: %w", err)
		}
		c.MatchMultiplicity = b
	}
	if v := os.Getenv("UMLEVAL_ALLOW_FENCED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid UMLEVAL_ALLOW_FENCED: %w", err)
		}
		c.AllowFenced = b
	}
	if v := os.Getenv("UMLEVAL_MAX_INPUT_SIZE"); v != "" {
		c.MaxInputSize = v
	}
	return nil
}

func (c *EvaluationConfig) validate() error {
	size, err := formatting.ParseBytes(c.MaxInputSize)
	if err != nil {
		return fmt.Errorf("invalid max_input_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_input_size must be positive")
	}
	return nil
}

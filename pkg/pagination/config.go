// Package pagination bounds list queries to pages of a configured size.
package pagination

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// ErrInvalidConfig reports page size limits that cannot serve a request.
var ErrInvalidConfig = errors.New("invalid pagination config")

// Config holds page size limits. Zero values take the package defaults.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ConfigEnv names the environment variables read by Finalize. Empty names
// are skipped.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
}

// Finalize fills unset limits, reads env when non-nil, and rejects a
// default page larger than the maximum. Malformed env values are errors.
func (c *Config) Finalize(env *ConfigEnv) error {
	if env != nil {
		if err := readSize(env.DefaultPageSize, &c.DefaultPageSize); err != nil {
			return err
		}
		if err := readSize(env.MaxPageSize, &c.MaxPageSize); err != nil {
			return err
		}
	}

	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = DefaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = MaxPageSize
	}

	if c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("%w: default page size %d above max %d",
			ErrInvalidConfig, c.DefaultPageSize, c.MaxPageSize)
	}
	return nil
}

// Merge takes the positive limits from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultPageSize > 0 {
		c.DefaultPageSize = overlay.DefaultPageSize
	}
	if overlay.MaxPageSize > 0 {
		c.MaxPageSize = overlay.MaxPageSize
	}
}

func readSize(name string, dst *int) error {
	if name == "" {
		return nil
	}
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, name, v)
	}
	*dst = n
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/umleval/pkg/database"
	"github.com/JaimeStill/umleval/pkg/pagination"
)

var databaseEnv = &database.Env{
	Driver:          "UMLEVAL_DB_DRIVER",
	Path:            "UMLEVAL_DB_PATH",
	Host:            "UMLEVAL_DB_HOST",
	Port:            "UMLEVAL_DB_PORT",
	Name:            "UMLEVAL_DB_NAME",
	User:            "UMLEVAL_DB_USER",
	Password:        "UMLEVAL_DB_PASSWORD",
	SSLMode:         "UMLEVAL_DB_SSL_MODE",
	MaxOpenConns:    "UMLEVAL_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "UMLEVAL_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "UMLEVAL_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "UMLEVAL_DB_CONN_TIMEOUT",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "UMLEVAL_RESULTS_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "UMLEVAL_RESULTS_MAX_PAGE_SIZE",
}

// ResultsConfig enables persistence of comparison summaries.
// Database is only finalized when Enabled is set.
type ResultsConfig struct {
	Enabled    bool              `toml:"enabled"`
	Database   database.Config   `toml:"database"`
	Pagination pagination.Config `toml:"pagination"`
}

// Finalize applies environment variable overrides, finalizes pagination,
// and, when enabled, finalizes the database config.
func (c *ResultsConfig) Finalize() error {
	if v := os.Getenv("UMLEVAL_RESULTS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid UMLEVAL_RESULTS_ENABLED: %w", err)
		}
		c.Enabled = b
	}

	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}

	if !c.Enabled {
		return nil
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ResultsConfig) Merge(overlay *ResultsConfig) {
	if overlay.Enabled {
		c.Enabled = true
	}
	c.Database.Merge(&overlay.Database)
	c.Pagination.Merge(&overlay.Pagination)
}

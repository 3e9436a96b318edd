// Package database opens the results database (PostgreSQL or SQLite) and
// ties its connection pool to the run lifecycle.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/JaimeStill/umleval/pkg/lifecycle"
)

// System manages the connection pool and its lifecycle.
type System interface {
	// Connection returns the underlying connection pool.
	Connection() *sql.DB
	// Driver returns the configured driver (DriverPostgres or DriverSQLite).
	Driver() string
	// Start verifies connectivity and registers pool shutdown with lc.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	driver      string
	logger      *slog.Logger
	connTimeout time.Duration
}

// New opens the pool without connecting; Start performs the first round trip.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open(cfg.DriverName(), cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		driver:      cfg.Driver,
		logger:      logger.With("system", "database", "driver", cfg.Driver),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Driver() string {
	return d.driver
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	pingCtx, cancel := context.WithTimeout(lc.Context(), d.connTimeout)
	defer cancel()

	if err := d.conn.PingContext(pingCtx); err != nil {
		d.conn.Close()
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}

	d.logger.Info("database connection established")

	lc.OnShutdown(func() {
		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed")
	})

	return nil
}

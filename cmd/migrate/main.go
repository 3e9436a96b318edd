package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"

	"github.com/JaimeStill/umleval/internal/results"
	"github.com/JaimeStill/umleval/pkg/database"
)

const (
	envDSN     = "UMLEVAL_DB_DSN"
	defaultDSN = "sqlite3://umleval.db"
)

func main() {
	var (
		dsn     = flag.String("dsn", "", "Database connection string (sqlite3:// or postgres://)")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	if *dsn == "" {
		*dsn = os.Getenv(envDSN)
	}
	if *dsn == "" {
		*dsn = defaultDSN
	}

	driver, err := driverFor(*dsn)
	if err != nil {
		log.Fatal(err)
	}

	migrations, err := results.Migrations(driver)
	if err != nil {
		log.Fatalf("failed to load migrations: %v", err)
	}

	source, err := iofs.New(migrations, ".")
	if err != nil {
		log.Fatalf("failed to create migration source: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, *dsn)
	if err != nil {
		log.Fatalf("failed to create migrator: %v", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			return
		}
		if err != nil {
			log.Fatalf("failed to get version: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			log.Fatalf("failed to force version: %v", err)
		}
		fmt.Printf("forced to version %d\n", *force)
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run up migrations: %v", err)
		}
		fmt.Printf("%s migrations applied successfully\n", driver)
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run down migrations: %v", err)
		}
		fmt.Printf("%s migrations reverted successfully\n", driver)
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run migrations: %v", err)
		}
		fmt.Printf("applied %d migration steps\n", *steps)
	default:
		fmt.Println("usage: migrate -dsn <connection-string> [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}

// driverFor picks the migration set matching the DSN scheme.
func driverFor(dsn string) (string, error) {
	scheme, _, ok := strings.Cut(dsn, "://")
	if !ok {
		return "", fmt.Errorf("dsn %q has no scheme", dsn)
	}

	switch scheme {
	case "sqlite3", "sqlite":
		return database.DriverSQLite, nil
	case "postgres", "postgresql":
		return database.DriverPostgres, nil
	default:
		return "", fmt.Errorf("%w: scheme %q", database.ErrUnknownDriver, scheme)
	}
}

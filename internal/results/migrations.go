package results

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/JaimeStill/umleval/pkg/database"
)

//go:embed migrations
var migrations embed.FS

// Migrations returns the schema migrations for driver, one
// NNNNNN_name.{up,down}.sql pair per version.
func Migrations(driver string) (fs.FS, error) {
	switch driver {
	case database.DriverPostgres, database.DriverSQLite:
		return fs.Sub(migrations, "migrations/"+driver)
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownDriver, driver)
	}
}

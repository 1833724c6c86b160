package postgres

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies pending goose migrations from dir over a separate
// database/sql handle; the pgx pool is not reused because goose speaks
// database/sql.
func Migrate(url, dir string) error {
	db, err := goose.OpenDBWithDriver("pgx", url)
	if err != nil {
		return fmt.Errorf("Postgres - Migrate - goose.OpenDBWithDriver: %w", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("Postgres - Migrate - goose.SetDialect: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("Postgres - Migrate - goose.Up: %w", err)
	}

	return nil
}

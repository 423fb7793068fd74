package database

import (
	"database/sql"
	"fmt"
	"os"
)

const defaultSchemaPath = "docs/schema.sql"

// Migrate applies the schema idempotently (everything in it is CREATE IF
// NOT EXISTS). MEDIASCOUT_SCHEMA_PATH overrides the path for deployments
// that do not run from the repo root.
func Migrate(db *sql.DB) error {
	path := os.Getenv("MEDIASCOUT_SCHEMA_PATH")
	if path == "" {
		path = defaultSchemaPath
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema %s: %w", path, err)
	}

	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

const DefaultTable = "netcall_cache"

// Schema returns the statements creating the cache table.
func Schema(table string) []string {
	t := pq.QuoteIdentifier(table)
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + t + ` (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			expires_at TIMESTAMPTZ NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ` + pq.QuoteIdentifier(table+"_expires_at_idx") + ` ON ` + t + ` (expires_at)`,
	}
}

// ApplyMigrations executes the provided SQL statements in order within the given context.
func ApplyMigrations(ctx context.Context, db *sql.DB, statements ...string) error {
	if db == nil {
		return fmt.Errorf("postgres: db is nil")
	}
	for _, stmt := range statements {
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}

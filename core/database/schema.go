package database

import (
	"context"
	"fmt"

	"event-service/core/logger"
)

var schemas = map[Dialect][]string{
	DialectPostgres: {
		`CREATE TABLE IF NOT EXISTS events (
			id           BIGSERIAL PRIMARY KEY,
			name         VARCHAR NOT NULL,
			description  TEXT,
			start_time   TIMESTAMPTZ,
			end_time     TIMESTAMPTZ,
			location     VARCHAR,
			participants TEXT[],
			created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	// AUTOINCREMENT keeps deleted ids from being handed out again.
	DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS events (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			name         VARCHAR NOT NULL,
			description  TEXT,
			start_time   DATETIME,
			end_time     DATETIME,
			location     VARCHAR,
			participants JSON,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

// EnsureSchema creates the events table when it does not exist yet.
func (d *Database) EnsureSchema(ctx context.Context) error {
	statements, ok := schemas[d.dialect]
	if !ok {
		return fmt.Errorf("no schema for dialect %q", d.dialect)
	}
	for _, stmt := range statements {
		if _, err := d.sqlx.ExecContext(ctx, stmt); err != nil {
			logger.Error("Database:EnsureSchema", "error", err)
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	logger.Info("Database schema ready", "dialect", d.dialect)
	return nil
}

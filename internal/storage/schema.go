package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current catalog schema version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    element TEXT NOT NULL,
    edge INTEGER NOT NULL,
    atoms INTEGER NOT NULL,
    steps INTEGER NOT NULL,
    dt REAL NOT NULL,
    sample_interval INTEGER NOT NULL,
    sigma REAL NOT NULL,
    epsilon REAL NOT NULL,
    strategy TEXT NOT NULL,
    seed INTEGER DEFAULT 0,
    jitter REAL DEFAULT 0,
    frames INTEGER NOT NULL,
    threshold REAL NOT NULL,
    break_frame INTEGER,  -- NULL when no frame exceeded the threshold
    elapsed_ms INTEGER DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS run_metrics (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    value REAL NOT NULL,
    PRIMARY KEY (run_id, name)
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema creates the catalog tables on a fresh database and applies
// migrations on an existing one.
func InitSchema(ctx context.Context, db *sql.DB) error {
	currentVersion, err := getSchemaVersion(ctx, db)
	if err != nil {
		if err := createSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	}

	if currentVersion > SchemaVersion {
		return fmt.Errorf("catalog schema version %d is newer than supported version %d", currentVersion, SchemaVersion)
	}
	return nil
}

// getSchemaVersion returns an error if the schema_version table doesn't exist.
func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}

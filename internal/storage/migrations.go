package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.1.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
	{
		Version: "1.1.0",
		Up:      migrationV11Up,
		Down:    migrationV11Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Records table
CREATE TABLE IF NOT EXISTS records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dataset_id TEXT NOT NULL,
    local_id TEXT NOT NULL,
    language TEXT,
    source_path TEXT,
    content_hash BLOB NOT NULL,
    page_count INTEGER DEFAULT 0,
    last_imported_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(dataset_id, local_id)
);

CREATE INDEX IF NOT EXISTS idx_records_dataset ON records(dataset_id);

-- Pages table
CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    record_id INTEGER NOT NULL,
    page_id TEXT NOT NULL,
    page_order INTEGER NOT NULL,
    resource_id TEXT,
    language TEXT,
    image_url TEXT,
    fulltext TEXT NOT NULL,
    content_hash BLOB NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE,
    UNIQUE(record_id, page_id)
);

CREATE INDEX IF NOT EXISTS idx_pages_record ON pages(record_id, page_order);
CREATE INDEX IF NOT EXISTS idx_pages_resource ON pages(record_id, resource_id);

-- Annotations table
CREATE TABLE IF NOT EXISTS annotations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    page_id INTEGER NOT NULL,
    annotation_id TEXT NOT NULL,
    granularity TEXT NOT NULL,
    char_from INTEGER NOT NULL,
    char_to INTEGER NOT NULL,
    language TEXT,
    targets TEXT,
    ordinal INTEGER NOT NULL,
    FOREIGN KEY (page_id) REFERENCES pages(id) ON DELETE CASCADE,
    UNIQUE(page_id, annotation_id)
);

CREATE INDEX IF NOT EXISTS idx_annotations_page ON annotations(page_id, ordinal);
CREATE INDEX IF NOT EXISTS idx_annotations_id ON annotations(annotation_id);

-- Full-text search on page text
CREATE VIRTUAL TABLE IF NOT EXISTS pages_fts USING fts5(
    fulltext,
    content='pages',
    content_rowid='id',
    tokenize='unicode61 remove_diacritics 2'
);

-- Triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS pages_ai AFTER INSERT ON pages BEGIN
    INSERT INTO pages_fts(rowid, fulltext) VALUES (new.id, new.fulltext);
END;

CREATE TRIGGER IF NOT EXISTS pages_ad AFTER DELETE ON pages BEGIN
    INSERT INTO pages_fts(pages_fts, rowid, fulltext) VALUES ('delete', old.id, old.fulltext);
END;

CREATE TRIGGER IF NOT EXISTS pages_au AFTER UPDATE OF fulltext ON pages BEGIN
    INSERT INTO pages_fts(pages_fts, rowid, fulltext) VALUES ('delete', old.id, old.fulltext);
    INSERT INTO pages_fts(rowid, fulltext) VALUES (new.id, new.fulltext);
END;
`

const migrationV1Down = `
-- Drop all tables in reverse order of dependencies
DROP TRIGGER IF EXISTS pages_au;
DROP TRIGGER IF EXISTS pages_ad;
DROP TRIGGER IF EXISTS pages_ai;

DROP TABLE IF EXISTS pages_fts;
DROP TABLE IF EXISTS annotations;
DROP TABLE IF EXISTS pages;
DROP TABLE IF EXISTS records;
DROP TABLE IF EXISTS schema_version;
`

const migrationV11Up = `
-- Import run history
CREATE TABLE IF NOT EXISTS import_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    root_path TEXT NOT NULL,
    records_imported INTEGER DEFAULT 0,
    records_skipped INTEGER DEFAULT 0,
    pages_imported INTEGER DEFAULT 0,
    annotations_imported INTEGER DEFAULT 0,
    error_count INTEGER DEFAULT 0,
    duration_ms INTEGER,
    finished_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_import_runs_finished ON import_runs(finished_at);
`

const migrationV11Down = `
DROP TABLE IF EXISTS import_runs;
`

// SchemaVersion returns the most recently applied schema version, or 0.0.0
// for an empty database.
func SchemaVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)
	if errors.Is(err, sql.ErrNoRows) {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	// Applied versions are compared as semver, not by insertion time,
	// since several migrations may share one CURRENT_TIMESTAMP second.
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer func() { _ = rows.Close() }()

	current := semver.MustParse("0.0.0")
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		parsed, err := semver.NewVersion(v)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", v, err)
		}
		if parsed.GreaterThan(current) {
			current = parsed
		}
	}
	return current, rows.Err()
}

// ApplyMigrations runs all pending migrations, each in its own transaction
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	currentVersion, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}
		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		if err := runMigration(ctx, db, migration.Up,
			"INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}
		currentVersion = migrationVersion
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current.Equal(semver.MustParse("0.0.0")) {
		return errors.New("no migrations to rollback")
	}

	var migration *Migration
	for i := range AllMigrations {
		v, err := semver.NewVersion(AllMigrations[i].Version)
		if err == nil && v.Equal(current) {
			migration = &AllMigrations[i]
			break
		}
	}
	if migration == nil {
		return fmt.Errorf("migration %s not found", current)
	}

	// The first migration drops schema_version itself
	if err := runMigration(ctx, db, migration.Down, removeVersionSQL(migration), migration.Version); err != nil {
		return fmt.Errorf("failed to rollback migration %s: %w", migration.Version, err)
	}
	return nil
}

func removeVersionSQL(m *Migration) string {
	if m.Version == AllMigrations[0].Version {
		return ""
	}
	return "DELETE FROM schema_version WHERE version = ?"
}

func runMigration(ctx context.Context, db *sql.DB, script, record, version string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if record != "" {
		if _, err := tx.ExecContext(ctx, record, version); err != nil {
			return fmt.Errorf("failed to record version: %w", err)
		}
	}
	return tx.Commit()
}

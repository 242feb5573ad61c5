package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// pragmas are applied in order on every fresh connection pool.
var pragmas = []string{
	"journal_mode = WAL",
	"foreign_keys = ON",
	"busy_timeout = 5000",
}

// InitDB opens/creates the console cache database and ensures tables exist.
// The cache is disposable: deleting the file only costs the warm start.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec("PRAGMA " + p + ";"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set PRAGMA %s: %w", p, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaViewSnapshots = `
CREATE TABLE IF NOT EXISTS view_snapshots (
    view TEXT PRIMARY KEY,
    tick INTEGER NOT NULL,
    committed_at TIMESTAMP NOT NULL,
    payload TEXT NOT NULL
);
`

const schemaPollEvents = `
CREATE TABLE IF NOT EXISTS poll_events (
    id TEXT PRIMARY KEY,
    occurred_at TIMESTAMP NOT NULL,
    view TEXT NOT NULL,
    tick INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    detail TEXT
);
`

const schemaPollEventsIndex = `
CREATE INDEX IF NOT EXISTS idx_poll_events_occurred_at ON poll_events (occurred_at);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaViewSnapshots,
		schemaPollEvents,
		schemaPollEventsIndex,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}

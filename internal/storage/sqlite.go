// ABOUTME: SQLite-backed Repository: connection setup and the workouts schema.
// ABOUTME: Uses modernc.org/sqlite, so no CGO is needed.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// WAL lets the MCP server read while the CLI writes.
var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
}

// One row per item; the two indexes mirror the KV backends' index key families.
const workoutsSchema = `
CREATE TABLE IF NOT EXISTS workouts (
	user_id          TEXT NOT NULL,
	workout_id       TEXT NOT NULL,
	user_id_exercise TEXT NOT NULL,
	date             TEXT NOT NULL,
	timestamp        TEXT NOT NULL,
	timestamp_ms     INTEGER NOT NULL,
	exercise         TEXT NOT NULL,
	sets             INTEGER NOT NULL,
	reps             INTEGER NOT NULL,
	weight           TEXT NOT NULL,
	PRIMARY KEY (user_id, workout_id)
);
CREATE INDEX IF NOT EXISTS idx_workouts_date
	ON workouts(user_id, date, workout_id);
CREATE INDEX IF NOT EXISTS idx_workouts_exercise
	ON workouts(user_id_exercise, timestamp_ms DESC, workout_id DESC);
`

// DB is the SQLite Repository.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens or creates the SQLite file at path, readable only by its owner.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d := &DB{db: conn, path: path}

	if err := d.prepare(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return d, nil
}

// prepare applies pragmas, tightens file permissions, and creates the schema.
func (d *DB) prepare() error {
	for _, pragma := range sqlitePragmas {
		if _, err := d.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	// The file exists once the first pragma has run.
	if err := os.Chmod(d.path, 0600); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("set database permissions: %w", err)
	}
	if _, err := d.db.Exec(workoutsSchema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

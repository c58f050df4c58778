// Package sqlite implements the repository interfaces using SQLite as the
// storage backend. It is the STORAGE=sqlite alternative to the default
// jsonfile store, for installations whose collections have outgrown
// whole-document rewrites.
//
// WHY SQLITE (AND NOT A DATABASE SERVER)?
// SQLite is an embedded database — it lives inside your Go binary as a single
// file. No separate database server to install, configure, or manage. That
// matches this service's shape: one process, one data directory. A server
// database would buy nothing but an extra deployment dependency.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C
// compiler installed and cross-compilation becomes painful. modernc.org/sqlite
// is a pure Go translation of the SQLite C code — no C compiler needed, works
// everywhere Go works.
//
// ID COMPATIBILITY:
// The jsonfile store assigns ids as max(existing)+1. SQLite's INTEGER
// PRIMARY KEY rowid allocation does exactly the same thing (largest rowid
// plus one) as long as AUTOINCREMENT is NOT used, so a collection migrated
// from the JSON documents keeps minting the same id sequence here.
package sqlite

import (
	"database/sql"
	"fmt"

	// BLANK IMPORT:
	// `_ "modernc.org/sqlite"` is a side-effect only import. The package's
	// init() registers itself with database/sql as a driver named "sqlite";
	// after this import, sql.Open("sqlite", ...) knows how to talk to SQLite.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/tasks.db"  → file-based database (persistent)
//   - ":memory:"       → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping verifies the connection actually works. Without this, a bad
	// path or permissions issue would only surface on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is happening —
	// default SQLite locks the whole database during writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (backwards compatibility).
	// todo_items.user_id references users(id), so turn them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it
// idempotent — safe to run on every startup.
//
// NOTE: no AUTOINCREMENT on either primary key. Plain INTEGER PRIMARY KEY
// gives max(rowid)+1 allocation, which is the id scheme the JSON documents
// use (see the package comment).
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// tags is a JSON-encoded array in a TEXT column — the list is only
	// ever read and written whole, never queried by element.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS todo_items (
			id       INTEGER PRIMARY KEY,
			text     TEXT NOT NULL,
			done     INTEGER NOT NULL DEFAULT 0,
			status   TEXT NOT NULL DEFAULT 'new',
			due_date DATETIME,
			tags     TEXT NOT NULL DEFAULT '[]',
			reminder DATETIME,
			user_id  INTEGER NOT NULL REFERENCES users(id)
		);
		CREATE INDEX IF NOT EXISTS idx_todo_items_user_id ON todo_items(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating todo_items table: %w", err)
	}

	return nil
}

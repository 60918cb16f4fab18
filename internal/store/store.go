// Package store implements the persistent table layer spec.md §4.1
// describes: ordered key-value tables with lower_bound/next/prev iteration,
// point find, and scoped write batches that are atomic with respect to
// readers.
//
// The backend is modernc.org/sqlite, the only ordered, transactional,
// pure-Go embedded store anywhere in the retrieval pack (it is a direct
// dependency of SimplyLiz-CodeMCP, josephgoksu-TaskWing, and
// mehmetkoksal-w-mind-palace). Each table is one SQLite table
// `(key BLOB PRIMARY KEY, value BLOB)`; SQLite compares BLOB primary keys
// byte-lexicographically, which is exactly the ordering idkey's big-endian
// key encoding is designed to produce.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is the persistent project database: one SQLite file holding every
// table named in spec.md §3/§6 (symbols, symbolnames, usr, dependencies,
// sources, references, targets, db/general).
type DB struct {
	conn *sql.DB
	path string
}

// TableNames enumerates the eight persistent tables in the stable order
// spec.md §6 requires ("independent of insertion").
var TableNames = []string{
	"symbols",
	"symbolnames",
	"usr",
	"dependencies",
	"sources",
	"references",
	"targets",
	"general",
}

// Open creates or opens the project database at dir/index.db, applies
// performance pragmas, and ensures every table exists.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create project directory: %w", err)
	}
	path := filepath.Join(dir, "index.db")

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open project database: %w", err)
	}
	conn.SetMaxOpenConns(1) // one writer; WriteScope serializes mutation anyway

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	db := &DB{conn: conn, path: path}
	if err := db.createTables(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) createTables() error {
	for _, name := range TableNames {
		stmt := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (key BLOB PRIMARY KEY, value BLOB NOT NULL)`,
			name,
		)
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Close closes the underlying connection.
func (db *DB) Close() error { return db.conn.Close() }

// Table returns a handle to one of the named tables.
func (db *DB) Table(name string) *Table {
	return &Table{db: db, name: name}
}

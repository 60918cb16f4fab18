package store

import (
	"bytes"
	"database/sql"
	"fmt"
)

// querier is satisfied by both *sql.DB and *sql.Tx, letting the read-side
// helpers below run unmodified whether called through a Table (outside any
// WriteScope, auto-commit reads) or through a WriteScope (inside its
// transaction, seeing its own uncommitted writes).
type querier interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Table is a handle to one ordered key-value table. Methods on Table read
// against the DB's connection directly (auto-commit reads observe the
// last committed WriteScope, giving the "readers see pre- or post-scope
// state" guarantee spec.md §4.1 requires without extra locking — that
// guarantee is exactly what SQLite's own transaction isolation provides).
type Table struct {
	db   *DB
	name string
}

// Find returns the value stored at key, or ok == false if absent.
func (t *Table) Find(key []byte) (value []byte, ok bool, err error) {
	return findKey(t.db.conn, t.name, key)
}

// Set writes key -> value outside of any explicit WriteScope (auto-commit).
func (t *Table) Set(key, value []byte) error {
	ws, err := t.db.Begin()
	if err != nil {
		return err
	}
	if err := ws.Set(t.name, key, value); err != nil {
		_ = ws.Rollback()
		return err
	}
	return ws.Commit()
}

// Erase removes key outside of any explicit WriteScope.
func (t *Table) Erase(key []byte) error {
	ws, err := t.db.Begin()
	if err != nil {
		return err
	}
	if err := ws.Erase(t.name, key); err != nil {
		_ = ws.Rollback()
		return err
	}
	return ws.Commit()
}

// Entry is one row yielded by iteration.
type Entry struct {
	Key   []byte
	Value []byte
}

// LowerBound returns every row with key >= from, in ascending key order.
// Passing a nil/empty "from" starts at the first row.
func (t *Table) LowerBound(from []byte) ([]Entry, error) {
	return lowerBound(t.db.conn, t.name, from)
}

// Range returns every row with from <= key < to, in ascending key order.
// A nil "to" means unbounded.
func (t *Table) Range(from, to []byte) ([]Entry, error) {
	return rangeScan(t.db.conn, t.name, from, to)
}

// Prefix returns every row whose key starts with prefix, ascending.
func (t *Table) Prefix(prefix []byte) ([]Entry, error) {
	return prefixScan(t.db.conn, t.name, prefix)
}

// All returns every row in the table in ascending key order.
func (t *Table) All() ([]Entry, error) {
	return lowerBound(t.db.conn, t.name, nil)
}

func findKey(q querier, table string, key []byte) ([]byte, bool, error) {
	row := q.QueryRow(fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, table), key)
	var v []byte
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

func lowerBound(q querier, table string, from []byte) ([]Entry, error) {
	if len(from) == 0 {
		rows, err := q.Query(fmt.Sprintf(`SELECT key, value FROM %s ORDER BY key ASC`, table))
		if err != nil {
			return nil, err
		}
		return scanEntries(rows)
	}
	rows, err := q.Query(
		fmt.Sprintf(`SELECT key, value FROM %s WHERE key >= ? ORDER BY key ASC`, table), from)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func rangeScan(q querier, table string, from, to []byte) ([]Entry, error) {
	if to == nil {
		return lowerBound(q, table, from)
	}
	rows, err := q.Query(
		fmt.Sprintf(`SELECT key, value FROM %s WHERE key >= ? AND key < ? ORDER BY key ASC`, table),
		from, to)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func prefixScan(q querier, table string, prefix []byte) ([]Entry, error) {
	upper := upperBoundForPrefix(prefix)
	if upper == nil {
		return lowerBound(q, table, prefix)
	}
	return rangeScan(q, table, prefix, upper)
}

// upperBoundForPrefix computes the smallest key strictly greater than every
// key starting with prefix, by incrementing the last non-0xFF byte. Returns
// nil if prefix is all 0xFF bytes (no finite upper bound; caller should use
// LowerBound instead).
func upperBoundForPrefix(prefix []byte) []byte {
	upper := append([]byte(nil), prefix...)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] != 0xFF {
			upper[i]++
			return upper[:i+1]
		}
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// HasPrefix reports whether key begins with prefix (helper for callers
// filtering Prefix() results further).
func HasPrefix(key, prefix []byte) bool {
	return bytes.HasPrefix(key, prefix)
}

package store

import (
	"database/sql"
	"fmt"
)

// WriteScope batches writes across one or more tables and flushes on
// Commit/Rollback. All writes made inside a scope are atomic with respect
// to readers: a reader issuing a query concurrently (from another
// goroutine, on this single-writer connection) observes either the
// pre-scope or post-scope state, never a partial merge, because it is
// backed by one *sql.Tx. This is the mechanism behind invariant-preserving
// steps like sync's "erase dirty rows then write merged rows" (spec.md
// §4.6 step 1) and remove()'s "purge inside a single batched write scope"
// (spec.md §4.8).
type WriteScope struct {
	tx *sql.Tx
}

// Begin opens a new WriteScope.
func (db *DB) Begin() (*WriteScope, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin write scope: %w", err)
	}
	return &WriteScope{tx: tx}, nil
}

// Set writes key -> value in table within this scope.
func (ws *WriteScope) Set(table string, key, value []byte) error {
	_, err := ws.tx.Exec(
		fmt.Sprintf(`INSERT INTO %s(key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, table),
		key, value)
	return err
}

// Erase removes key from table within this scope.
func (ws *WriteScope) Erase(table string, key []byte) error {
	_, err := ws.tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, table), key)
	return err
}

// EraseRange removes every row with from <= key < to within this scope. A
// nil "to" means unbounded.
func (ws *WriteScope) EraseRange(table string, from, to []byte) error {
	if to == nil {
		_, err := ws.tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE key >= ?`, table), from)
		return err
	}
	_, err := ws.tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE key >= ? AND key < ?`, table), from, to)
	return err
}

// Find reads a value within this scope's transaction (sees this scope's own
// uncommitted writes, unlike Table.Find).
func (ws *WriteScope) Find(table string, key []byte) (value []byte, ok bool, err error) {
	return findKey(ws.tx, table, key)
}

// LowerBound reads within this scope's transaction, seeing its own
// uncommitted writes (unlike Table.LowerBound). Needed by any write-scope
// step that re-scans a range it is itself mutating, e.g. markActive
// rewriting the just-inserted Source row's siblings.
func (ws *WriteScope) LowerBound(table string, from []byte) ([]Entry, error) {
	return lowerBound(ws.tx, table, from)
}

// Range reads within this scope's transaction; see LowerBound.
func (ws *WriteScope) Range(table string, from, to []byte) ([]Entry, error) {
	return rangeScan(ws.tx, table, from, to)
}

// Prefix reads within this scope's transaction; see LowerBound.
func (ws *WriteScope) Prefix(table string, prefix []byte) ([]Entry, error) {
	return prefixScan(ws.tx, table, prefix)
}

// All reads every row in table within this scope's transaction; see
// LowerBound.
func (ws *WriteScope) All(table string) ([]Entry, error) {
	return lowerBound(ws.tx, table, nil)
}

// Commit flushes the scope, making its writes visible to readers.
func (ws *WriteScope) Commit() error { return ws.tx.Commit() }

// Rollback discards the scope's writes.
func (ws *WriteScope) Rollback() error { return ws.tx.Rollback() }

package annotation

import (
	"database/sql"

	"github.com/emholm/standoff/core/edge"
	"github.com/emholm/standoff/core/errors"
	"github.com/emholm/standoff/core/sqlite"
)

const indexSchema = `
CREATE TABLE IF NOT EXISTS stores (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS edges (
	store TEXT NOT NULL,
	edge  TEXT NOT NULL,
	elem  TEXT NOT NULL,
	start TEXT NOT NULL,
	"end" TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (store, edge)
);
CREATE INDEX IF NOT EXISTS edges_elem ON edges (store, elem);
`

// Index is a local SQLite database over annotation stores, for random
// access lookups that the line-oriented files cannot serve.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (creating if needed) an index database at path.
func OpenIndex(path string) (*Index, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, errors.NewIO("init", path, err)
	}
	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Add loads one store's entries, replacing any previous load of the
// same store. Each edge is decomposed so queries can filter on element
// name or boundary anchors without string surgery.
func (ix *Index) Add(store string, entries []Entry) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO stores (name) VALUES (?)`, store); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM edges WHERE store = ?`, store); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO edges (store, edge, elem, start, "end", value) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		_, err := stmt.Exec(store, entry.Key,
			edge.Name(entry.Key), edge.Start(entry.Key), edge.End(entry.Key), entry.Value)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Stores lists the loaded store names, sorted.
func (ix *Index) Stores() ([]string, error) {
	rows, err := ix.db.Query(`SELECT name FROM stores ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Value looks up one edge's value in a store. The second result is
// false if the edge is not present.
func (ix *Index) Value(store, edgeKey string) (string, bool, error) {
	var value string
	err := ix.db.QueryRow(
		`SELECT value FROM edges WHERE store = ? AND edge = ?`, store, edgeKey).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// ByElement returns every entry in a store whose edge carries the given
// element name, in insertion order.
func (ix *Index) ByElement(store, elem string) ([]Entry, error) {
	rows, err := ix.db.Query(
		`SELECT edge, value FROM edges WHERE store = ? AND elem = ? ORDER BY rowid`, store, elem)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

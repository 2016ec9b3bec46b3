// Package querycache memoizes solved goals on disk so a long-lived CLI
// session doesn't re-run an identical derivation twice. It sits entirely
// outside internal/solve: the solver itself always runs a goal fresh, and
// nothing in its own package tree knows this cache exists. Only a caller
// at the command-line layer decides whether a given goal is worth
// memoizing and under what key.
package querycache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Cache is a sqlite-backed Query -> Solution memo table. The key is
// whatever string the caller chooses to identify a query (the REPL uses
// the loaded program's source text plus the goal's name); the value is the
// rendered solution text a caller would otherwise have recomputed.
type Cache struct {
	db *sql.DB
}

// Open creates (if necessary) and opens a cache database at path. The
// parent directory is created if missing.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("querycache: creating %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("querycache: opening %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS solutions (
		query_key     TEXT PRIMARY KEY,
		success_kind  TEXT NOT NULL,
		refined_goal  TEXT NOT NULL,
		constraints   TEXT NOT NULL,
		cached_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("querycache: creating schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Entry is the rendered form of a previously solved goal.
type Entry struct {
	SuccessKind string
	RefinedGoal string
	Constraints string
}

// Lookup returns the memoized entry for queryKey, if any.
func (c *Cache) Lookup(queryKey string) (Entry, bool, error) {
	var e Entry
	err := c.db.QueryRow(
		`SELECT success_kind, refined_goal, constraints FROM solutions WHERE query_key = ?`,
		queryKey,
	).Scan(&e.SuccessKind, &e.RefinedGoal, &e.Constraints)
	switch {
	case err == sql.ErrNoRows:
		return Entry{}, false, nil
	case err != nil:
		return Entry{}, false, fmt.Errorf("querycache: lookup %q: %w", queryKey, err)
	}
	return e, true, nil
}

// Store memoizes entry under queryKey, replacing any prior entry for the
// same key.
func (c *Cache) Store(queryKey string, entry Entry) error {
	_, err := c.db.Exec(
		`INSERT INTO solutions (query_key, success_kind, refined_goal, constraints)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(query_key) DO UPDATE SET
		   success_kind = excluded.success_kind,
		   refined_goal = excluded.refined_goal,
		   constraints  = excluded.constraints,
		   cached_at    = CURRENT_TIMESTAMP`,
		queryKey, entry.SuccessKind, entry.RefinedGoal, entry.Constraints,
	)
	if err != nil {
		return fmt.Errorf("querycache: store %q: %w", queryKey, err)
	}
	return nil
}

// Package store persists the bot's named running totals in SQLite. The
// stored shape is deliberately opaque to the rest of the system: a total is
// one integer row, read and bumped atomically.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and initializes the schema.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS totals (
		name  TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Total returns the current value of the named total, zero if never set.
func (s *Store) Total(name string) (int64, error) {
	var value int64
	err := s.db.QueryRow(`SELECT value FROM totals WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return value, nil
}

// Add bumps the named total by delta and returns the new value. The
// read-modify-write is a single statement, so concurrent bumps cannot lose
// updates.
func (s *Store) Add(name string, delta int64) (int64, error) {
	var value int64
	err := s.db.QueryRow(
		`INSERT INTO totals (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = value + excluded.value
		 RETURNING value`,
		name, delta,
	).Scan(&value)
	if err != nil {
		return 0, err
	}
	return value, nil
}

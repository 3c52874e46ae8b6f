package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteDB is the embedded ledger.
type SQLiteDB struct {
	sqlRounds
}

// NewSQLiteDB opens (or creates) the ledger at path. ":memory:" gives a
// private in-memory ledger.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	if path == "" {
		path = "colorway.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &SQLiteDB{sqlRounds{db: db}}, nil
}

// Migrate applies the embedded SQLite migrations.
func (s *SQLiteDB) Migrate(ctx context.Context) error {
	return migrate(ctx, s.db, goose.DialectSQLite3, "migrations/sqlite")
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps sql.DB with the journal's store operations.
type DB struct {
	*sql.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite database at path, configures WAL mode and
// foreign keys, runs migrations, seeds default categories and ensures the settings row.
func Open(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Configure connection pool for SQLite (single writer model)
	sqldb.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := sqldb.Exec(p); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	db := &DB{DB: sqldb, now: time.Now}
	if err := db.migrate(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	ctx := context.Background()
	if err := db.SeedDefaults(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	if err := db.EnsureSettings(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("init settings: %w", err)
	}
	return db, nil
}

// migrate runs the schema creation statements.
func (db *DB) migrate() error {
	_, err := db.Exec(Schema)
	return err
}

// SetClock replaces the time source used for new rows.
func (db *DB) SetClock(now func() time.Time) {
	db.now = now
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// inTx runs fn inside a transaction, rolling back on error.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

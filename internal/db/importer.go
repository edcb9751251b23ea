package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// clearStatements empty the user's data. Default categories survive.
var clearStatements = []string{
	`DELETE FROM incidents`,
	`DELETE FROM people`,
	`DELETE FROM categories WHERE is_custom = 1`,
	`DELETE FROM settings WHERE id = 1`,
}

func clearLocal(ctx context.Context, x execer) error {
	for _, stmt := range clearStatements {
		if _, err := x.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

// ClearLocalData deletes incidents, people, custom categories and the settings row.
// Running it on an already empty store is a no-op.
func (db *DB) ClearLocalData(ctx context.Context) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		return clearLocal(ctx, tx)
	})
}

// Importer inserts rows with caller-supplied field values inside a Replace transaction.
type Importer struct {
	ctx context.Context
	tx  *sql.Tx
}

// Replace clears local data and runs fn against the emptied store in the same
// transaction. Any error from fn rolls everything back.
func (db *DB) Replace(ctx context.Context, fn func(*Importer) error) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if err := clearLocal(ctx, tx); err != nil {
			return err
		}
		return fn(&Importer{ctx: ctx, tx: tx})
	})
}

// InsertPerson inserts p as-is apart from its id and returns the new local id.
func (im *Importer) InsertPerson(p Person) (int64, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	res, err := im.tx.ExecContext(im.ctx, `
		INSERT INTO people (name, relationship_type, photo_uri, created_at, archived) VALUES (?, ?, ?, ?, ?)
	`, p.Name, p.RelationshipType, nullString(p.PhotoURI), toMillis(p.CreatedAt), p.Archived)
	if err != nil {
		return 0, fmt.Errorf("insert person: %w", err)
	}
	return res.LastInsertId()
}

// InsertCategory inserts c and returns its local id. A non-custom category whose name
// matches a preserved default is merged into that row instead of duplicating it.
func (im *Importer) InsertCategory(c Category) (int64, error) {
	if !c.IsCustom {
		var id int64
		err := im.tx.QueryRowContext(im.ctx, `
			SELECT id FROM categories WHERE is_custom = 0 AND name = ? ORDER BY id LIMIT 1
		`, c.Name).Scan(&id)
		switch {
		case err == nil:
			if _, err := im.tx.ExecContext(im.ctx, `
				UPDATE categories SET emoji = ?, default_points = ?, is_positive = ? WHERE id = ?
			`, c.Emoji, c.DefaultPoints, c.IsPositive, id); err != nil {
				return 0, fmt.Errorf("merge default category %q: %w", c.Name, err)
			}
			return id, nil
		case !errors.Is(err, sql.ErrNoRows):
			return 0, fmt.Errorf("lookup default category %q: %w", c.Name, err)
		}
	}
	res, err := im.tx.ExecContext(im.ctx, `
		INSERT INTO categories (name, emoji, default_points, is_positive, is_custom) VALUES (?, ?, ?, ?, ?)
	`, c.Name, c.Emoji, c.DefaultPoints, c.IsPositive, c.IsCustom)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return res.LastInsertId()
}

// InsertIncident inserts inc with its stored points unchanged.
func (im *Importer) InsertIncident(inc Incident) (int64, error) {
	return insertIncident(im.ctx, im.tx, inc)
}

// InsertSettings recreates the settings row.
func (im *Importer) InsertSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return insertSettings(im.ctx, im.tx, s)
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MyAgentHubs/logifyer/internal/score"
)

// DefaultRelationshipType is used when a person is added without one.
const DefaultRelationshipType = "friend"

// Person is someone the user keeps a journal about.
type Person struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	RelationshipType string    `json:"relationship_type"`
	PhotoURI         *string   `json:"photo_uri,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	Archived         bool      `json:"archived"`
}

const personColumns = `id, name, relationship_type, photo_uri, created_at, archived`

func scanPerson(row interface{ Scan(...any) error }) (*Person, error) {
	var p Person
	var photo sql.NullString
	var created int64
	if err := row.Scan(&p.ID, &p.Name, &p.RelationshipType, &photo, &created, &p.Archived); err != nil {
		return nil, err
	}
	p.PhotoURI = stringPtr(photo)
	p.CreatedAt = fromMillis(created)
	return &p, nil
}

// AddPerson creates a person and returns the new id.
func (db *DB) AddPerson(ctx context.Context, name, relationshipType string, photoURI *string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, invalidf("name is required")
	}
	if len(name) > 256 {
		return 0, invalidf("name exceeds 256 bytes")
	}
	relationshipType = strings.TrimSpace(relationshipType)
	if relationshipType == "" {
		relationshipType = DefaultRelationshipType
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO people (name, relationship_type, photo_uri, created_at) VALUES (?, ?, ?, ?)
	`, name, relationshipType, nullString(photoURI), toMillis(db.now()))
	if err != nil {
		return 0, fmt.Errorf("add person: %w", err)
	}
	return res.LastInsertId()
}

// GetPerson returns the person with id, or ErrNotFound.
func (db *DB) GetPerson(ctx context.Context, id int64) (*Person, error) {
	p, err := scanPerson(db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("person", id)
	}
	return p, err
}

// ListPeople returns people newest first, skipping archived ones unless asked.
func (db *DB) ListPeople(ctx context.Context, includeArchived bool) ([]Person, error) {
	query := `SELECT ` + personColumns + ` FROM people`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

// AllPeople returns every person including archived ones.
func (db *DB) AllPeople(ctx context.Context) ([]Person, error) {
	return db.ListPeople(ctx, true)
}

// SetArchived hides or restores a person without touching their incidents.
func (db *DB) SetArchived(ctx context.Context, id int64, archived bool) error {
	res, err := db.ExecContext(ctx, `UPDATE people SET archived = ? WHERE id = ?`, archived, id)
	if err != nil {
		return fmt.Errorf("archive person: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("person", id)
	}
	return nil
}

// DeletePerson removes a person; incidents and cached insights cascade.
func (db *DB) DeletePerson(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("person", id)
	}
	return nil
}

// PersonScore computes the health score of a person at now from their full history.
func (db *DB) PersonScore(ctx context.Context, personID int64, now time.Time) (int, error) {
	if _, err := db.GetPerson(ctx, personID); err != nil {
		return 0, err
	}
	settings, err := db.GetSettings(ctx)
	if err != nil {
		return 0, err
	}
	incidents, err := db.scoreInputs(ctx, personID)
	if err != nil {
		return 0, err
	}
	return score.Compute(incidents, settings.ScoreParams(), now), nil
}

func (db *DB) scoreInputs(ctx context.Context, personID int64) ([]score.Incident, error) {
	rows, err := db.QueryContext(ctx, `SELECT points, timestamp FROM incidents WHERE person_id = ?`, personID)
	if err != nil {
		return nil, fmt.Errorf("load incidents: %w", err)
	}
	defer rows.Close()

	var out []score.Incident
	for rows.Next() {
		var points int
		var ts int64
		if err := rows.Scan(&points, &ts); err != nil {
			return nil, err
		}
		out = append(out, score.Incident{Points: points, Timestamp: fromMillis(ts)})
	}
	return out, rows.Err()
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Incident is a single logged interaction. Points already include the major multiplier
// that was in effect when the incident was logged.
type Incident struct {
	ID         int64     `json:"id"`
	PersonID   int64     `json:"person_id"`
	CategoryID int64     `json:"category_id"`
	Points     int       `json:"points"`
	IsMajor    bool      `json:"is_major"`
	Note       *string   `json:"note,omitempty"`
	Timestamp  time.Time `json:"timestamp"`

	// Set by ListIncidentsByPerson only.
	CategoryName  string `json:"category_name,omitempty"`
	CategoryEmoji string `json:"category_emoji,omitempty"`
}

const incidentColumns = `id, person_id, category_id, points, is_major, note, timestamp`

func scanIncident(row interface{ Scan(...any) error }, extra ...any) (*Incident, error) {
	var inc Incident
	var note sql.NullString
	var ts int64
	dest := append([]any{&inc.ID, &inc.PersonID, &inc.CategoryID, &inc.Points, &inc.IsMajor, &note, &ts}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	inc.Note = stringPtr(note)
	inc.Timestamp = fromMillis(ts)
	return &inc, nil
}

// LogIncident records an incident against a person. A major incident stores
// basePoints multiplied by the current major multiplier; the product is permanent
// and later settings changes do not rewrite it.
func (db *DB) LogIncident(ctx context.Context, personID, categoryID int64, basePoints int, isMajor bool, note *string) (*Incident, error) {
	if basePoints == 0 {
		return nil, invalidf("points must be non-zero")
	}
	if note != nil {
		trimmed := strings.TrimSpace(*note)
		if len(trimmed) > 10*1024 {
			return nil, invalidf("note exceeds 10KB limit")
		}
		if trimmed == "" {
			note = nil
		} else {
			note = &trimmed
		}
	}
	if _, err := db.GetPerson(ctx, personID); err != nil {
		return nil, err
	}
	cat, err := db.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if (basePoints > 0) != cat.IsPositive {
		return nil, invalidf("points %d do not match the sign of category %q", basePoints, cat.Name)
	}

	settings, err := db.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	finalPoints := basePoints
	if isMajor {
		finalPoints = basePoints * settings.MajorMultiplier
	}

	inc := Incident{
		PersonID:   personID,
		CategoryID: categoryID,
		Points:     finalPoints,
		IsMajor:    isMajor,
		Note:       note,
		Timestamp:  fromMillis(toMillis(db.now())),
	}
	err = db.inTx(ctx, func(tx *sql.Tx) error {
		id, err := insertIncident(ctx, tx, inc)
		if err != nil {
			return err
		}
		inc.ID = id
		return invalidateInsights(ctx, tx, personID, "")
	})
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

func insertIncident(ctx context.Context, x execer, inc Incident) (int64, error) {
	res, err := x.ExecContext(ctx, `
		INSERT INTO incidents (person_id, category_id, points, is_major, note, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, inc.PersonID, inc.CategoryID, inc.Points, inc.IsMajor, nullString(inc.Note), toMillis(inc.Timestamp))
	if err != nil {
		return 0, fmt.Errorf("insert incident: %w", err)
	}
	return res.LastInsertId()
}

// ListIncidentsByPerson returns a person's incidents newest first with category display fields.
func (db *DB) ListIncidentsByPerson(ctx context.Context, personID int64) ([]Incident, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT i.id, i.person_id, i.category_id, i.points, i.is_major, i.note, i.timestamp,
		       c.name, c.emoji
		FROM incidents i
		JOIN categories c ON i.category_id = c.id
		WHERE i.person_id = ?
		ORDER BY i.timestamp DESC, i.id DESC
	`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Incident
	for rows.Next() {
		var name, emoji string
		inc, err := scanIncident(rows, &name, &emoji)
		if err != nil {
			return nil, err
		}
		inc.CategoryName = name
		inc.CategoryEmoji = emoji
		out = append(out, *inc)
	}
	return out, rows.Err()
}

// AllIncidents returns every incident in insertion order.
func (db *DB) AllIncidents(ctx context.Context) ([]Incident, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+incidentColumns+` FROM incidents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inc)
	}
	return out, rows.Err()
}

// deleteIncident removes one incident and the cached insights of its person.
// It reports whether the incident existed.
func deleteIncident(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	var personID int64
	err := tx.QueryRowContext(ctx, `SELECT person_id FROM incidents WHERE id = ?`, id).Scan(&personID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete incident %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM incidents WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("delete incident %d: %w", id, err)
	}
	return true, invalidateInsights(ctx, tx, personID, "")
}

// DeleteIncident removes a single incident.
func (db *DB) DeleteIncident(ctx context.Context, id int64) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		found, err := deleteIncident(ctx, tx, id)
		if err != nil {
			return err
		}
		if !found {
			return notFound("incident", id)
		}
		return nil
	})
}

// DeleteIncidents removes each of ids in one transaction and returns how many existed.
func (db *DB) DeleteIncidents(ctx context.Context, ids []int64) (int, error) {
	var deleted int
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			found, err := deleteIncident(ctx, tx, id)
			if err != nil {
				return err
			}
			if found {
				deleted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// ResetPersonScore deletes all of a person's incidents and cached insights but keeps the person.
func (db *DB) ResetPersonScore(ctx context.Context, personID int64) (int, error) {
	if _, err := db.GetPerson(ctx, personID); err != nil {
		return 0, err
	}
	var n int64
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM incidents WHERE person_id = ?`, personID)
		if err != nil {
			return fmt.Errorf("reset score: %w", err)
		}
		n, _ = res.RowsAffected()
		return invalidateInsights(ctx, tx, personID, "")
	})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ClearIncidents deletes every incident and every cached insight.
func (db *DB) ClearIncidents(ctx context.Context) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM incidents`); err != nil {
			return fmt.Errorf("clear incidents: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM ai_insight_cache`); err != nil {
			return fmt.Errorf("clear insights: %w", err)
		}
		return nil
	})
}

// CountIncidentsByPerson returns the number of incidents logged for a person.
func (db *DB) CountIncidentsByPerson(ctx context.Context, personID int64) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM incidents WHERE person_id = ?`, personID).Scan(&n)
	return n, err
}

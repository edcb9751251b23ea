package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// InsightRecord is a cached piece of generated text about a person.
type InsightRecord struct {
	ID            int64     `json:"id"`
	PersonID      int64     `json:"person_id"`
	Kind          string    `json:"insight_type"`
	Content       string    `json:"content"`
	IncidentCount int       `json:"incident_count"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// CachedInsight returns the newest unexpired insight of kind for a person, or nil.
func (db *DB) CachedInsight(ctx context.Context, personID int64, kind string, now time.Time) (*InsightRecord, error) {
	var r InsightRecord
	var created, expires int64
	err := db.QueryRowContext(ctx, `
		SELECT id, person_id, insight_type, content, incident_count, created_at, expires_at
		FROM ai_insight_cache
		WHERE person_id = ? AND insight_type = ? AND expires_at > ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, personID, kind, toMillis(now)).Scan(&r.ID, &r.PersonID, &r.Kind, &r.Content, &r.IncidentCount, &created, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached insight: %w", err)
	}
	r.CreatedAt = fromMillis(created)
	r.ExpiresAt = fromMillis(expires)
	return &r, nil
}

// SaveInsight stores a generated insight.
func (db *DB) SaveInsight(ctx context.Context, r InsightRecord) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO ai_insight_cache (person_id, insight_type, content, incident_count, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.PersonID, r.Kind, r.Content, r.IncidentCount, toMillis(r.CreatedAt), toMillis(r.ExpiresAt))
	if err != nil {
		return 0, fmt.Errorf("save insight: %w", err)
	}
	return res.LastInsertId()
}

// InvalidateInsights drops cached insights for a person; an empty kind drops all kinds.
func (db *DB) InvalidateInsights(ctx context.Context, personID int64, kind string) error {
	return invalidateInsights(ctx, db, personID, kind)
}

func invalidateInsights(ctx context.Context, x execer, personID int64, kind string) error {
	var err error
	if kind == "" {
		_, err = x.ExecContext(ctx, `DELETE FROM ai_insight_cache WHERE person_id = ?`, personID)
	} else {
		_, err = x.ExecContext(ctx, `DELETE FROM ai_insight_cache WHERE person_id = ? AND insight_type = ?`, personID, kind)
	}
	if err != nil {
		return fmt.Errorf("invalidate insights: %w", err)
	}
	return nil
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MyAgentHubs/logifyer/internal/db"
)

const (
	defaultContextSince = "7d"
	defaultContextLimit = 20
	maxContextLimit     = 100
)

// recentIncident is an incident flattened with its person and category names.
type recentIncident struct {
	ID            int64     `json:"id"`
	PersonID      int64     `json:"person_id"`
	PersonName    string    `json:"person_name"`
	CategoryName  string    `json:"category_name"`
	CategoryEmoji string    `json:"category_emoji"`
	Points        int       `json:"points"`
	IsMajor       bool      `json:"is_major"`
	Note          *string   `json:"note,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// handleContext gathers the journal overview with its sub-queries in parallel.
func (s *Server) handleContext(ctx context.Context, args json.RawMessage) (any, error) {
	var p struct {
		Since string `json:"since"`
		Limit int    `json:"limit"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if p.Since == "" {
		p.Since = defaultContextSince
	}
	if p.Limit <= 0 {
		p.Limit = defaultContextLimit
	}
	if p.Limit > maxContextLimit {
		p.Limit = maxContextLimit
	}
	now := s.now()
	start, err := db.ParseSince(p.Since, now)
	if err != nil {
		return nil, err
	}

	var (
		people   []scoredPerson
		recent   []recentIncident
		stats    db.Stats
		settings db.Settings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.db.ListPeople(gctx, false)
		if err != nil {
			return err
		}
		people, err = s.scorePeople(gctx, list)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = recentIncidents(gctx, s.db, start, p.Limit)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.db.GetStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = s.db.GetSettings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if recent == nil {
		recent = []recentIncident{}
	}
	return map[string]any{
		"storage_path":     s.dbPath,
		"stats":            stats,
		"settings":         settings,
		"people":           people,
		"recent_incidents": recent,
		"since":            start,
		"generated_at":     now.UTC(),
	}, nil
}

// recentIncidents returns up to limit incidents logged at or after start, newest first.
func recentIncidents(ctx context.Context, database *db.DB, start time.Time, limit int) ([]recentIncident, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT i.id, i.person_id, p.name, c.name, c.emoji, i.points, i.is_major, i.note, i.timestamp
		FROM incidents i
		JOIN people p ON p.id = i.person_id
		JOIN categories c ON c.id = i.category_id
		WHERE p.archived = 0 AND i.timestamp >= ?
		ORDER BY i.timestamp DESC, i.id DESC
		LIMIT ?
	`, start.UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []recentIncident
	for rows.Next() {
		var r recentIncident
		var note *string
		var ts int64
		if err := rows.Scan(&r.ID, &r.PersonID, &r.PersonName, &r.CategoryName, &r.CategoryEmoji,
			&r.Points, &r.IsMajor, &note, &ts); err != nil {
			return nil, err
		}
		r.Note = note
		r.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

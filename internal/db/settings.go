package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MyAgentHubs/logifyer/internal/score"
)

// Settings is the global scoring configuration singleton.
type Settings struct {
	MajorMultiplier     int  `json:"major_multiplier"`
	TimeDecayMonths     int  `json:"time_decay_months"`
	RecencyBoostEnabled bool `json:"recency_boost_enabled"`
}

// DefaultSettings returns the values a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{MajorMultiplier: 3, TimeDecayMonths: 6, RecencyBoostEnabled: true}
}

// ScoreParams projects the settings consumed by the score engine.
func (s Settings) ScoreParams() score.Params {
	return score.Params{
		TimeDecayMonths:     s.TimeDecayMonths,
		RecencyBoostEnabled: s.RecencyBoostEnabled,
	}
}

// Validate checks the settings bounds.
func (s Settings) Validate() error {
	if s.MajorMultiplier < 1 {
		return invalidf("major multiplier must be at least 1, got %d", s.MajorMultiplier)
	}
	if s.TimeDecayMonths < 0 {
		return invalidf("time decay months must not be negative, got %d", s.TimeDecayMonths)
	}
	return nil
}

// EnsureSettings inserts the default settings row if it does not exist yet.
func (db *DB) EnsureSettings(ctx context.Context) error {
	_, ok, err := db.StoredSettings(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return insertSettings(ctx, db, DefaultSettings())
}

// StoredSettings returns the settings row and whether it exists.
func (db *DB) StoredSettings(ctx context.Context) (Settings, bool, error) {
	var s Settings
	err := db.QueryRowContext(ctx, `
		SELECT major_multiplier, time_decay_months, recency_boost_enabled FROM settings WHERE id = 1
	`).Scan(&s.MajorMultiplier, &s.TimeDecayMonths, &s.RecencyBoostEnabled)
	if errors.Is(err, sql.ErrNoRows) {
		return Settings{}, false, nil
	}
	if err != nil {
		return Settings{}, false, fmt.Errorf("get settings: %w", err)
	}
	return s, true, nil
}

// GetSettings returns the stored settings, or the defaults when the row has been cleared.
func (db *DB) GetSettings(ctx context.Context) (Settings, error) {
	s, ok, err := db.StoredSettings(ctx)
	if err != nil {
		return Settings{}, err
	}
	if !ok {
		return DefaultSettings(), nil
	}
	return s, nil
}

// UpdateSettings mutates the singleton in place, recreating it only if it was cleared.
func (db *DB) UpdateSettings(ctx context.Context, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `
		UPDATE settings SET major_multiplier = ?, time_decay_months = ?, recency_boost_enabled = ?
		WHERE id = 1
	`, s.MajorMultiplier, s.TimeDecayMonths, s.RecencyBoostEnabled)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return insertSettings(ctx, db, s)
	}
	return nil
}

func insertSettings(ctx context.Context, x execer, s Settings) error {
	_, err := x.ExecContext(ctx, `
		INSERT INTO settings (id, major_multiplier, time_decay_months, recency_boost_enabled)
		VALUES (1, ?, ?, ?)
	`, s.MajorMultiplier, s.TimeDecayMonths, s.RecencyBoostEnabled)
	if err != nil {
		return fmt.Errorf("insert settings: %w", err)
	}
	return nil
}

// Package remote defines the cloud table store the journal syncs with and provides
// a PostgREST client and an in-memory implementation of it.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Table names on the remote side.
const (
	TableProfiles   = "profiles"
	TablePeople     = "people"
	TableCategories = "categories"
	TableIncidents  = "incidents"
	TableSettings   = "settings"
)

// ColumnUserID is the ownership column present on every user table.
const ColumnUserID = "user_id"

// Store is the remote collaborator: authenticated upsert and filtered select per table.
type Store interface {
	// Upsert inserts row into table or merges it with the row sharing its conflict key.
	Upsert(ctx context.Context, table string, row any) error
	// SelectWhere decodes every row of table whose column equals value into dest,
	// which must be a pointer to a slice.
	SelectWhere(ctx context.Context, table, column, value string, dest any) error
}

// ConflictKey returns the column that identifies a row of table for upserts.
func ConflictKey(table string) string {
	if table == TableSettings {
		return ColumnUserID
	}
	return "id"
}

// ErrUnreachable marks failures to reach the remote at all (network, timeout).
var ErrUnreachable = errors.New("remote unreachable")

// APIError is a non-success response from the remote.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("remote error %d: %s", e.Status, e.Message)
}

// Profile is the per-user account row.
type Profile struct {
	ID                 string `json:"id"`
	SubscriptionStatus string `json:"subscription_status"`
}

// Person mirrors the local people table with a remote identifier and owner.
type Person struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	PhotoURI         *string   `json:"photo_uri"`
	RelationshipType string    `json:"relationship_type"`
	Archived         bool      `json:"archived"`
	CreatedAt        time.Time `json:"created_at"`
}

// Category mirrors the local categories table.
type Category struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Emoji         string `json:"emoji"`
	DefaultPoints int    `json:"default_points"`
	IsPositive    bool   `json:"is_positive"`
	IsCustom      bool   `json:"is_custom"`
}

// Incident mirrors the local incidents table with remote foreign keys.
type Incident struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	PersonID   string    `json:"person_id"`
	CategoryID string    `json:"category_id"`
	Points     int       `json:"points"`
	IsMajor    bool      `json:"is_major"`
	Note       *string   `json:"note"`
	Timestamp  time.Time `json:"timestamp"`
}

// Settings is keyed by user rather than by a singleton id.
type Settings struct {
	UserID              string `json:"user_id"`
	MajorMultiplier     int    `json:"major_multiplier"`
	TimeDecayMonths     int    `json:"time_decay_months"`
	RecencyBoostEnabled bool   `json:"recency_boost_enabled"`
}

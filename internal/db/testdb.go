package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory SQLite database for testing.
func NewTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// NewTestDBAt is NewTestDB with the clock pinned to *now. Tests may move the
// pointed-to time between writes.
func NewTestDBAt(t *testing.T, now *time.Time) *DB {
	t.Helper()
	db := NewTestDB(t)
	db.SetClock(func() time.Time { return *now })
	return db
}

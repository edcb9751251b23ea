package db

import "context"

// Stats holds row counts for the journal tables.
type Stats struct {
	People           int `json:"people"`
	ArchivedPeople   int `json:"archived_people"`
	Categories       int `json:"categories"`
	CustomCategories int `json:"custom_categories"`
	Incidents        int `json:"incidents"`
	CachedInsights   int `json:"cached_insights"`
}

// GetStats returns database statistics.
func (db *DB) GetStats(ctx context.Context) (Stats, error) {
	var s Stats
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM people),
			(SELECT COUNT(*) FROM people WHERE archived = 1),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM categories WHERE is_custom = 1),
			(SELECT COUNT(*) FROM incidents),
			(SELECT COUNT(*) FROM ai_insight_cache)
	`).Scan(&s.People, &s.ArchivedPeople, &s.Categories, &s.CustomCategories, &s.Incidents, &s.CachedInsights)
	return s, err
}

package cloudsync

import (
	"context"
	"fmt"

	"github.com/MyAgentHubs/logifyer/internal/metrics"
	"github.com/MyAgentHubs/logifyer/internal/remote"
)

// push uploads the local journal. The caller holds the run guard.
func (c *Coordinator) push(ctx context.Context, userID string) (Report, error) {
	var report Report

	profile := remote.Profile{ID: userID, SubscriptionStatus: SubscriptionFree}
	if err := c.call(ctx, func(ctx context.Context) error {
		return c.remote.Upsert(ctx, remote.TableProfiles, profile)
	}); err != nil {
		return report, fmt.Errorf("upsert profile: %w", err)
	}

	people, err := c.local.AllPeople(ctx)
	if err != nil {
		return report, fmt.Errorf("read people: %w", err)
	}
	categories, err := c.local.AllCategories(ctx)
	if err != nil {
		return report, fmt.Errorf("read categories: %w", err)
	}
	incidents, err := c.local.AllIncidents(ctx)
	if err != nil {
		return report, fmt.Errorf("read incidents: %w", err)
	}
	settings, hasSettings, err := c.local.StoredSettings(ctx)
	if err != nil {
		return report, fmt.Errorf("read settings: %w", err)
	}

	personIDs := make(map[int64]string, len(people))
	for _, p := range people {
		row := remote.Person{
			ID:               c.newID(),
			UserID:           userID,
			Name:             p.Name,
			PhotoURI:         p.PhotoURI,
			RelationshipType: p.RelationshipType,
			Archived:         p.Archived,
			CreatedAt:        p.CreatedAt.UTC(),
		}
		ok, err := c.upsertRow(ctx, remote.TablePeople, row.ID, row, &report)
		if err != nil {
			return report, err
		}
		if ok {
			personIDs[p.ID] = row.ID
			report.People++
		}
	}

	categoryIDs := make(map[int64]string, len(categories))
	for _, cat := range categories {
		row := remote.Category{
			ID:            c.newID(),
			UserID:        userID,
			Name:          cat.Name,
			Emoji:         cat.Emoji,
			DefaultPoints: cat.DefaultPoints,
			IsPositive:    cat.IsPositive,
			IsCustom:      cat.IsCustom,
		}
		ok, err := c.upsertRow(ctx, remote.TableCategories, row.ID, row, &report)
		if err != nil {
			return report, err
		}
		if ok {
			categoryIDs[cat.ID] = row.ID
			report.Categories++
		}
	}

	for _, inc := range incidents {
		personID, okP := personIDs[inc.PersonID]
		categoryID, okC := categoryIDs[inc.CategoryID]
		if !okP || !okC {
			c.log.Warn("skipping incident with unmapped reference",
				"incident", inc.ID, "person", inc.PersonID, "category", inc.CategoryID)
			c.metrics.Row(string(LocalToCloud), remote.TableIncidents, metrics.OutcomeSkipped)
			report.Skipped++
			continue
		}
		row := remote.Incident{
			ID:         c.newID(),
			UserID:     userID,
			PersonID:   personID,
			CategoryID: categoryID,
			Points:     inc.Points,
			IsMajor:    inc.IsMajor,
			Note:       inc.Note,
			Timestamp:  inc.Timestamp.UTC(),
		}
		ok, err := c.upsertRow(ctx, remote.TableIncidents, row.ID, row, &report)
		if err != nil {
			return report, err
		}
		if ok {
			report.Incidents++
		}
	}

	if hasSettings {
		row := remote.Settings{
			UserID:              userID,
			MajorMultiplier:     settings.MajorMultiplier,
			TimeDecayMonths:     settings.TimeDecayMonths,
			RecencyBoostEnabled: settings.RecencyBoostEnabled,
		}
		ok, err := c.upsertRow(ctx, remote.TableSettings, userID, row, &report)
		if err != nil {
			return report, err
		}
		report.Settings = ok
	}

	return report, nil
}

// upsertRow sends one row. A row-level failure is logged and counted and reported as
// ok=false; an unreachable remote or a canceled context is returned as an error.
func (c *Coordinator) upsertRow(ctx context.Context, table, key string, row any, report *Report) (bool, error) {
	err := c.call(ctx, func(ctx context.Context) error {
		return c.remote.Upsert(ctx, table, row)
	})
	if err == nil {
		c.metrics.Row(string(LocalToCloud), table, metrics.OutcomeSynced)
		return true, nil
	}
	c.metrics.Row(string(LocalToCloud), table, metrics.OutcomeFailed)
	if fatal(ctx, err) {
		return false, fmt.Errorf("upsert %s %s: %w", table, key, err)
	}
	c.log.Warn("row upload failed", "table", table, "id", key, "error", err)
	report.Failed++
	return false, nil
}

package cloudsync

import (
	"context"
	"fmt"

	"github.com/MyAgentHubs/logifyer/internal/db"
	"github.com/MyAgentHubs/logifyer/internal/metrics"
	"github.com/MyAgentHubs/logifyer/internal/remote"
)

// snapshot is everything stored remotely for one user.
type snapshot struct {
	people     []remote.Person
	categories []remote.Category
	incidents  []remote.Incident
	settings   []remote.Settings
}

func (c *Coordinator) fetch(ctx context.Context, userID string) (snapshot, error) {
	var s snapshot
	tables := []struct {
		name string
		dest any
	}{
		{remote.TablePeople, &s.people},
		{remote.TableCategories, &s.categories},
		{remote.TableIncidents, &s.incidents},
		{remote.TableSettings, &s.settings},
	}
	for _, t := range tables {
		if err := c.call(ctx, func(ctx context.Context) error {
			return c.remote.SelectWhere(ctx, t.name, remote.ColumnUserID, userID, t.dest)
		}); err != nil {
			return snapshot{}, fmt.Errorf("fetch %s: %w", t.name, err)
		}
	}
	return s, nil
}

// pull replaces the local journal with the remote rows. Nothing local is touched until
// every table has been fetched, and the clear plus re-insert commit together.
func (c *Coordinator) pull(ctx context.Context, userID string) (Report, error) {
	snap, err := c.fetch(ctx, userID)
	if err != nil {
		return Report{}, err
	}

	var settings *db.Settings
	if len(snap.settings) > 0 {
		r := snap.settings[0]
		s := db.Settings{
			MajorMultiplier:     r.MajorMultiplier,
			TimeDecayMonths:     r.TimeDecayMonths,
			RecencyBoostEnabled: r.RecencyBoostEnabled,
		}
		if err := s.Validate(); err != nil {
			c.log.Warn("ignoring invalid remote settings", "user", userID, "error", err)
		} else {
			settings = &s
		}
	}

	var report Report
	err = c.local.Replace(ctx, func(im *db.Importer) error {
		report = Report{}

		personIDs := make(map[string]int64, len(snap.people))
		for _, p := range snap.people {
			relType := p.RelationshipType
			if relType == "" {
				relType = db.DefaultRelationshipType
			}
			id, err := im.InsertPerson(db.Person{
				Name:             p.Name,
				RelationshipType: relType,
				PhotoURI:         p.PhotoURI,
				CreatedAt:        p.CreatedAt,
				Archived:         p.Archived,
			})
			if err != nil {
				return fmt.Errorf("person %s: %w", p.ID, err)
			}
			personIDs[p.ID] = id
			report.People++
		}

		categoryIDs := make(map[string]int64, len(snap.categories))
		for _, cat := range snap.categories {
			id, err := im.InsertCategory(db.Category{
				Name:          cat.Name,
				Emoji:         cat.Emoji,
				DefaultPoints: cat.DefaultPoints,
				IsPositive:    cat.IsPositive,
				IsCustom:      cat.IsCustom,
			})
			if err != nil {
				return fmt.Errorf("category %s: %w", cat.ID, err)
			}
			categoryIDs[cat.ID] = id
			report.Categories++
		}

		for _, inc := range snap.incidents {
			personID, okP := personIDs[inc.PersonID]
			categoryID, okC := categoryIDs[inc.CategoryID]
			if !okP || !okC {
				c.log.Warn("skipping remote incident with unmapped reference",
					"incident", inc.ID, "person", inc.PersonID, "category", inc.CategoryID)
				report.Skipped++
				continue
			}
			if _, err := im.InsertIncident(db.Incident{
				PersonID:   personID,
				CategoryID: categoryID,
				Points:     inc.Points,
				IsMajor:    inc.IsMajor,
				Note:       inc.Note,
				Timestamp:  inc.Timestamp,
			}); err != nil {
				return fmt.Errorf("incident %s: %w", inc.ID, err)
			}
			report.Incidents++
		}

		if settings != nil {
			if err := im.InsertSettings(*settings); err != nil {
				return fmt.Errorf("settings: %w", err)
			}
			report.Settings = true
		}
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("replace local data: %w", err)
	}

	// Rows count only once the replacement has committed.
	dir := string(CloudToLocal)
	c.metrics.Rows(dir, remote.TablePeople, metrics.OutcomeSynced, report.People)
	c.metrics.Rows(dir, remote.TableCategories, metrics.OutcomeSynced, report.Categories)
	c.metrics.Rows(dir, remote.TableIncidents, metrics.OutcomeSynced, report.Incidents)
	c.metrics.Rows(dir, remote.TableIncidents, metrics.OutcomeSkipped, report.Skipped)
	if report.Settings {
		c.metrics.Row(dir, remote.TableSettings, metrics.OutcomeSynced)
	}
	return report, nil
}

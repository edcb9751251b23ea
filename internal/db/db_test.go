package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr(s string) *string { return &s }

// categoryByName finds a seeded or custom category by name.
func categoryByName(t *testing.T, db *DB, name string) Category {
	t.Helper()
	cats, err := db.ListCategories(context.Background())
	require.NoError(t, err)
	for _, c := range cats {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("category %q not found", name)
	return Category{}
}

func TestOpen_InMemory(t *testing.T) {
	db := NewTestDB(t)
	assert.NotNil(t, db)
}

func TestOpen_SeedsDefaultsAndSettings(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	cats, err := db.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 10)

	var negative, positive int
	for _, c := range cats {
		assert.False(t, c.IsCustom)
		assert.Equal(t, c.IsPositive, c.DefaultPoints > 0, c.Name)
		if c.IsPositive {
			positive++
		} else {
			negative++
		}
	}
	assert.Equal(t, 6, negative)
	assert.Equal(t, 4, positive)

	s, ok, err := db.StoredSettings(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, DefaultSettings(), s)
}

func TestSeedDefaults_Idempotent(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SeedDefaults(ctx))
	require.NoError(t, db.SeedDefaults(ctx))

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Categories)
}

func TestEnsureSettings_NeverDuplicates(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.EnsureSettings(ctx))
	require.NoError(t, db.EnsureSettings(ctx))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSettings_UpdateAndValidate(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	want := Settings{MajorMultiplier: 5, TimeDecayMonths: 0, RecencyBoostEnabled: false}
	require.NoError(t, db.UpdateSettings(ctx, want))
	got, err := db.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	err = db.UpdateSettings(ctx, Settings{MajorMultiplier: 0, TimeDecayMonths: 6})
	assert.ErrorIs(t, err, ErrInvalid)
	err = db.UpdateSettings(ctx, Settings{MajorMultiplier: 2, TimeDecayMonths: -1})
	assert.ErrorIs(t, err, ErrInvalid)

	got, err = db.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSettings_DefaultsAfterClear(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpdateSettings(ctx, Settings{MajorMultiplier: 4, TimeDecayMonths: 2}))
	require.NoError(t, db.ClearLocalData(ctx))

	_, ok, err := db.StoredSettings(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := db.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), got)

	// update recreates the cleared singleton
	require.NoError(t, db.UpdateSettings(ctx, Settings{MajorMultiplier: 2, TimeDecayMonths: 1}))
	got, err = db.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.MajorMultiplier)
}

func TestPerson_AddListArchive(t *testing.T) {
	now := testNow
	db := NewTestDBAt(t, &now)
	ctx := context.Background()

	alice, err := db.AddPerson(ctx, "  Alice ", "partner", nil)
	require.NoError(t, err)
	now = now.Add(time.Minute)
	bob, err := db.AddPerson(ctx, "Bob", "", ptr("file:///bob.jpg"))
	require.NoError(t, err)

	p, err := db.GetPerson(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "partner", p.RelationshipType)
	assert.Nil(t, p.PhotoURI)
	assert.True(t, testNow.Equal(p.CreatedAt))

	p, err = db.GetPerson(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, DefaultRelationshipType, p.RelationshipType)
	require.NotNil(t, p.PhotoURI)
	assert.Equal(t, "file:///bob.jpg", *p.PhotoURI)

	people, err := db.ListPeople(ctx, false)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "Bob", people[0].Name) // newest first

	require.NoError(t, db.SetArchived(ctx, bob, true))
	people, err = db.ListPeople(ctx, false)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Alice", people[0].Name)

	all, err := db.AllPeople(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, db.SetArchived(ctx, 999, true), ErrNotFound)
}

func TestPerson_Validation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.AddPerson(ctx, "   ", "friend", nil)
	assert.ErrorIs(t, err, ErrInvalid)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.People)
}

func TestPerson_DeleteCascadesIncidents(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	alice, err := db.AddPerson(ctx, "Alice", "friend", nil)
	require.NoError(t, err)
	bob, err := db.AddPerson(ctx, "Bob", "friend", nil)
	require.NoError(t, err)
	late := categoryByName(t, db, "Always late")

	for i := 0; i < 3; i++ {
		_, err := db.LogIncident(ctx, alice, late.ID, late.DefaultPoints, false, nil)
		require.NoError(t, err)
	}
	_, err = db.LogIncident(ctx, bob, late.ID, late.DefaultPoints, false, nil)
	require.NoError(t, err)

	require.NoError(t, db.DeletePerson(ctx, alice))

	n, err := db.CountIncidentsByPerson(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	n, err = db.CountIncidentsByPerson(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, db.DeletePerson(ctx, alice), ErrNotFound)
}

func TestCategory_AddCustomNormalizesSign(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	id, err := db.AddCustomCategory(ctx, "X", "🙂", 5, false)
	require.NoError(t, err)
	c, err := db.GetCategory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, -5, c.DefaultPoints)
	assert.False(t, c.IsPositive)
	assert.True(t, c.IsCustom)

	id, err = db.AddCustomCategory(ctx, "Y", "🎉", -7, true)
	require.NoError(t, err)
	c, err = db.GetCategory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, c.DefaultPoints)
}

func TestCategory_AddCustomValidation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.AddCustomCategory(ctx, "", "🙂", 5, true)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = db.AddCustomCategory(ctx, "Name", " ", 5, true)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = db.AddCustomCategory(ctx, "Name", "🙂", 0, true)
	assert.ErrorIs(t, err, ErrInvalid)

	n, err := db.CountCustomCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCategory_CustomLimitIsCallerContract(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	for i := 0; i < CustomCategoryLimit; i++ {
		require.NoError(t, db.CheckCustomCategoryLimit(ctx))
		_, err := db.AddCustomCategory(ctx, "custom", "✨", 3, true)
		require.NoError(t, err)
	}
	assert.ErrorIs(t, db.CheckCustomCategoryLimit(ctx), ErrCustomCategoryLimit)

	// the store itself does not refuse
	_, err := db.AddCustomCategory(ctx, "fourth", "✨", 3, true)
	require.NoError(t, err)
}

func TestCategory_UpdateWeightDoesNotTouchIncidents(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	alice, err := db.AddPerson(ctx, "Alice", "friend", nil)
	require.NoError(t, err)
	lied := categoryByName(t, db, "Lied/deceived")

	inc, err := db.LogIncident(ctx, alice, lied.ID, lied.DefaultPoints, false, nil)
	require.NoError(t, err)

	// a positive value on a negative category keeps the category's sign
	require.NoError(t, db.UpdateCategoryWeight(ctx, lied.ID, 3))
	c, err := db.GetCategory(ctx, lied.ID)
	require.NoError(t, err)
	assert.Equal(t, -3, c.DefaultPoints)

	incs, err := db.ListIncidentsByPerson(ctx, alice)
	require.NoError(t, err)
	require.Len(t, incs, 1)
	assert.Equal(t, inc.Points, incs[0].Points)
	assert.Equal(t, -10, incs[0].Points)

	require.NoError(t, db.ResetCategoryWeights(ctx))
	c, err = db.GetCategory(ctx, lied.ID)
	require.NoError(t, err)
	assert.Equal(t, -10, c.DefaultPoints)

	assert.ErrorIs(t, db.UpdateCategoryWeight(ctx, 999, 3), ErrNotFound)
}

func TestCategory_DeleteCascadesIncidents(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	alice, err := db.AddPerson(ctx, "Alice", "friend", nil)
	require.NoError(t, err)
	custom, err := db.AddCustomCategory(ctx, "Ghosted", "👻", 4, false)
	require.NoError(t, err)
	listened := categoryByName(t, db, "Actually listened")

	_, err = db.LogIncident(ctx, alice, custom, -4, false, nil)
	require.NoError(t, err)
	_, err = db.LogIncident(ctx, alice, custom, -4, true, nil)
	require.NoError(t, err)
	_, err = db.LogIncident(ctx, alice, listened.ID, listened.DefaultPoints, false, nil)
	require.NoError(t, err)

	require.NoError(t, db.DeleteCategory(ctx, custom))

	incs, err := db.ListIncidentsByPerson(ctx, alice)
	require.NoError(t, err)
	require.Len(t, incs, 1)
	assert.Equal(t, listened.ID, incs[0].CategoryID)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM incidents WHERE category_id = ?`, custom).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestIncident_MajorMultiplierBakedIn(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	alice, err := db.AddPerson(ctx, "Alice", "friend", nil)
	require.NoError(t, err)
	cancelled := categoryByName(t, db, "Cancelled plans")

	inc, err := db.LogIncident(ctx, alice, cancelled.ID, -5, true, ptr("  bailed again  "))
	require.NoError(t, err)
	assert.Equal(t, -15, inc.Points)
	require.NotNil(t, inc.Note)
	assert.Equal(t, "bailed again", *inc.Note)

	require.NoError(t, db.UpdateSettings(ctx, Settings{MajorMultiplier: 5, TimeDecayMonths: 6, RecencyBoostEnabled: true}))

	incs, err := db.ListIncidentsByPerson(ctx, alice)
	require.NoError(t, err)
	require.Len(t, incs, 1)
	assert.Equal(t, -15, incs[0].Points)
	assert.True(t, incs[0].IsMajor)
	assert.Equal(t, "Cancelled plans", incs[0].CategoryName)
	assert.Equal(t, "🚫", incs[0].CategoryEmoji)

	// new major incidents pick up the new multiplier
	inc, err = db.LogIncident(ctx, alice, cancelled.ID, -5, true, ptr("   "))
	require.NoError(t, err)
	assert.Equal(t, -25, inc.Points)
	assert.Nil(t, inc.Note)
}

func TestIncident_ReferentialAndSignChecks(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	alice, err := db.AddPerson(ctx, "Alice", "friend", nil)
	require.NoError(t, err)
	late := categoryByName(t, db, "Always late")

	_, err = db.LogIncident(ctx, 999, late.ID, -2, false, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.LogIncident(ctx, alice, 999, -2, false, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.LogIncident(ctx, alice, late.ID, 2, false, nil)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = db.LogIncident(ctx, alice, late.ID, 0, false, nil)
	assert.ErrorIs(t, err, ErrInvalid)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Incidents)
}

func TestIncident_ForeignKeysEnforced(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := insertIncident(ctx, db, Incident{PersonID: 42, CategoryID: 42, Points: -1, Timestamp: testNow})
	assert.Error(t, err)
}

func TestIncident_DeleteSingleBulkAndReset(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	alice, err := db.AddPerson(ctx, "Alice", "friend", nil)
	require.NoError(t, err)
	bob, err := db.AddPerson(ctx, "Bob", "friend", nil)
	require.NoError(t, err)
	backed := categoryByName(t, db, "Had your back")

	var ids []int64
	for i := 0; i < 4; i++ {
		inc, err := db.LogIncident(ctx, alice, backed.ID, backed.DefaultPoints, false, nil)
		require.NoError(t, err)
		ids = append(ids, inc.ID)
	}
	_, err = db.LogIncident(ctx, bob, backed.ID, backed.DefaultPoints, false, nil)
	require.NoError(t, err)

	require.NoError(t, db.DeleteIncident(ctx, ids[0]))
	assert.ErrorIs(t, db.DeleteIncident(ctx, ids[0]), ErrNotFound)

	n, err := db.DeleteIncidents(ctx, []int64{ids[0], ids[1], ids[2]})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	removed, err := db.ResetPersonScore(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	p, err := db.GetPerson(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)

	require.NoError(t, db.ClearIncidents(ctx))
	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Incidents)
	assert.Equal(t, 2, stats.People)
}

func TestPersonScore_Scenario(t *testing.T) {
	now := testNow.Add(-10 * 24 * time.Hour)
	db := NewTestDBAt(t, &now)
	ctx := context.Background()

	alice, err := db.AddPerson(ctx, "Alice", "friend", nil)
	require.NoError(t, err)
	lied := categoryByName(t, db, "Lied/deceived")

	inc, err := db.LogIncident(ctx, alice, lied.ID, -10, true, nil)
	require.NoError(t, err)
	assert.Equal(t, -30, inc.Points)

	got, err := db.PersonScore(ctx, alice, testNow)
	require.NoError(t, err)
	assert.Equal(t, -45, got)

	_, err = db.PersonScore(ctx, 999, testNow)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersonScore_EmptyIsZero(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	alice, err := db.AddPerson(ctx, "Alice", "friend", nil)
	require.NoError(t, err)
	got, err := db.PersonScore(ctx, alice, testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestClearLocalData_PreservesDefaults(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	alice, err := db.AddPerson(ctx, "Alice", "friend", nil)
	require.NoError(t, err)
	custom, err := db.AddCustomCategory(ctx, "Ghosted", "👻", 4, false)
	require.NoError(t, err)
	_, err = db.LogIncident(ctx, alice, custom, -4, false, nil)
	require.NoError(t, err)

	require.NoError(t, db.ClearLocalData(ctx))
	require.NoError(t, db.ClearLocalData(ctx))

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.People)
	assert.Equal(t, 0, stats.Incidents)
	assert.Equal(t, 0, stats.CustomCategories)
	assert.Equal(t, 10, stats.Categories)
}

func TestReplace_MergesDefaultsAndRollsBack(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.AddPerson(ctx, "Old", "friend", nil)
	require.NoError(t, err)
	late := categoryByName(t, db, "Always late")

	err = db.Replace(ctx, func(im *Importer) error {
		pid, err := im.InsertPerson(Person{Name: "New", RelationshipType: "sibling", CreatedAt: testNow, Archived: true})
		if err != nil {
			return err
		}
		cid, err := im.InsertCategory(Category{Name: "Always late", Emoji: "⏰", DefaultPoints: -4, IsPositive: false})
		if err != nil {
			return err
		}
		assert.Equal(t, late.ID, cid)
		custom, err := im.InsertCategory(Category{Name: "Ghosted", Emoji: "👻", DefaultPoints: -4, IsCustom: true})
		if err != nil {
			return err
		}
		if _, err := im.InsertIncident(Incident{PersonID: pid, CategoryID: custom, Points: -12, IsMajor: true, Timestamp: testNow}); err != nil {
			return err
		}
		return im.InsertSettings(Settings{MajorMultiplier: 3, TimeDecayMonths: 12, RecencyBoostEnabled: false})
	})
	require.NoError(t, err)

	people, err := db.AllPeople(ctx)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "New", people[0].Name)
	assert.True(t, people[0].Archived)
	assert.True(t, testNow.Equal(people[0].CreatedAt))

	c, err := db.GetCategory(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, -4, c.DefaultPoints)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, stats.Categories)
	assert.Equal(t, 1, stats.Incidents)

	s, err := db.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, s.TimeDecayMonths)

	// a failing import leaves the previous state untouched
	err = db.Replace(ctx, func(im *Importer) error {
		_, err := im.InsertIncident(Incident{PersonID: 777, CategoryID: 777, Points: -1, Timestamp: testNow})
		return err
	})
	require.Error(t, err)
	people, err = db.AllPeople(ctx)
	require.NoError(t, err)
	assert.Len(t, people, 1)
}

func TestInsightCache(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	alice, err := db.AddPerson(ctx, "Alice", "friend", nil)
	require.NoError(t, err)

	got, err := db.CachedInsight(ctx, alice, "person_insights", testNow)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = db.SaveInsight(ctx, InsightRecord{
		PersonID: alice, Kind: "person_insights", Content: "steady", IncidentCount: 2,
		CreatedAt: testNow, ExpiresAt: testNow.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	got, err = db.CachedInsight(ctx, alice, "person_insights", testNow.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "steady", got.Content)
	assert.Equal(t, 2, got.IncidentCount)

	got, err = db.CachedInsight(ctx, alice, "person_insights", testNow.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, got)

	// cascade with the person
	require.NoError(t, db.DeletePerson(ctx, alice))
	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CachedInsights)
}

func TestParseSince(t *testing.T) {
	start, err := ParseSince("24h", testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(-24*time.Hour), start)

	start, err = ParseSince("7d", testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(-7*24*time.Hour), start)

	start, err = ParseSince("2026-02-17", testNow)
	require.NoError(t, err)
	assert.Equal(t, 17, start.Day())

	start, err = ParseSince("", testNow)
	require.NoError(t, err)
	assert.True(t, start.IsZero())

	_, err = ParseSince("bogus", testNow)
	assert.Error(t, err)
}

func TestFilterSince(t *testing.T) {
	incs := []Incident{
		{ID: 1, Timestamp: testNow},
		{ID: 2, Timestamp: testNow.Add(-48 * time.Hour)},
	}
	out := FilterSince(incs, testNow.Add(-24*time.Hour))
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ID)
	assert.Len(t, FilterSince(incs, time.Time{}), 2)
}

func TestInsightCache_DroppedWhenIncidentsChange(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	alice, err := db.AddPerson(ctx, "Alice", "friend", nil)
	require.NoError(t, err)
	bob, err := db.AddPerson(ctx, "Bob", "friend", nil)
	require.NoError(t, err)
	backed := categoryByName(t, db, "Had your back")

	logFor := func(person int64) int64 {
		inc, err := db.LogIncident(ctx, person, backed.ID, backed.DefaultPoints, false, nil)
		require.NoError(t, err)
		return inc.ID
	}
	cache := func(person int64) {
		_, err := db.SaveInsight(ctx, InsightRecord{
			PersonID: person, Kind: "person_insights", Content: "cached", IncidentCount: 1,
			CreatedAt: testNow, ExpiresAt: testNow.Add(24 * time.Hour),
		})
		require.NoError(t, err)
	}
	cached := func(person int64) bool {
		got, err := db.CachedInsight(ctx, person, "person_insights", testNow)
		require.NoError(t, err)
		return got != nil
	}

	first := logFor(alice)
	logFor(bob)
	cache(alice)
	cache(bob)

	// Delete one and log another: the count is unchanged but the cache must go.
	require.NoError(t, db.DeleteIncident(ctx, first))
	assert.False(t, cached(alice))
	assert.True(t, cached(bob))
	cache(alice)
	second := logFor(alice)
	assert.False(t, cached(alice))

	cache(alice)
	n, err := db.DeleteIncidents(ctx, []int64{second, 9999})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, cached(alice))

	logFor(alice)
	cache(alice)
	_, err = db.ResetPersonScore(ctx, alice)
	require.NoError(t, err)
	assert.False(t, cached(alice))
	assert.True(t, cached(bob))

	require.NoError(t, db.InvalidateInsights(ctx, bob, "confrontation_script"))
	assert.True(t, cached(bob))
	require.NoError(t, db.InvalidateInsights(ctx, bob, "person_insights"))
	assert.False(t, cached(bob))

	cache(alice)
	cache(bob)
	require.NoError(t, db.ClearIncidents(ctx))
	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.CachedInsights)
}

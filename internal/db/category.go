package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CustomCategoryLimit is the number of custom categories a user may create.
const CustomCategoryLimit = 3

// Category is a reusable kind of incident with a default point weight.
type Category struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Emoji         string `json:"emoji"`
	DefaultPoints int    `json:"default_points"`
	IsPositive    bool   `json:"is_positive"`
	IsCustom      bool   `json:"is_custom"`
}

type defaultCategory struct {
	name   string
	emoji  string
	points int
}

// defaultCategories are seeded once into an empty database.
var defaultCategories = []defaultCategory{
	{"Cancelled plans", "🚫", -5},
	{"Lied/deceived", "🤥", -10},
	{"Disrespected you", "😤", -10},
	{"Always late", "⏰", -2},
	{"Borrowed money unpaid", "💸", -5},
	{"Only reaches out needing something", "🙄", -5},
	{"Showed up when needed", "✅", 10},
	{"Actually listened", "👂", 5},
	{"Had your back", "🤝", 10},
	{"Supported you", "💪", 5},
}

// signed returns ±abs(points) according to positive.
func signed(points int, positive bool) int {
	if points < 0 {
		points = -points
	}
	if positive {
		return points
	}
	return -points
}

func scanCategory(row interface{ Scan(...any) error }) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.Emoji, &c.DefaultPoints, &c.IsPositive, &c.IsCustom); err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryColumns = `id, name, emoji, default_points, is_positive, is_custom`

// SeedDefaults inserts the default categories if no non-custom category exists.
func (db *DB) SeedDefaults(ctx context.Context) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE is_custom = 0`).Scan(&count); err != nil {
		return fmt.Errorf("count default categories: %w", err)
	}
	if count > 0 {
		return nil
	}
	return db.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range defaultCategories {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO categories (name, emoji, default_points, is_positive, is_custom)
				VALUES (?, ?, ?, ?, 0)
			`, c.name, c.emoji, c.points, c.points > 0); err != nil {
				return fmt.Errorf("seed %q: %w", c.name, err)
			}
		}
		return nil
	})
}

// ListCategories returns all categories, defaults first.
func (db *DB) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY is_custom, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, *c)
	}
	return cats, rows.Err()
}

// AllCategories is an alias of ListCategories used by sync.
func (db *DB) AllCategories(ctx context.Context) ([]Category, error) {
	return db.ListCategories(ctx)
}

// GetCategory returns the category with id, or ErrNotFound.
func (db *DB) GetCategory(ctx context.Context, id int64) (*Category, error) {
	c, err := scanCategory(db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("category", id)
	}
	return c, err
}

// CountCustomCategories returns the number of user-created categories.
func (db *DB) CountCustomCategories(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE is_custom = 1`).Scan(&n)
	return n, err
}

// CheckCustomCategoryLimit returns ErrCustomCategoryLimit when no more custom categories
// may be added. AddCustomCategory does not call it; callers at the boundary must.
func (db *DB) CheckCustomCategoryLimit(ctx context.Context) error {
	n, err := db.CountCustomCategories(ctx)
	if err != nil {
		return fmt.Errorf("count custom categories: %w", err)
	}
	if n >= CustomCategoryLimit {
		return fmt.Errorf("%w: %d of %d used", ErrCustomCategoryLimit, n, CustomCategoryLimit)
	}
	return nil
}

// AddCustomCategory stores a custom category. The sign of points is taken from isPositive.
func (db *DB) AddCustomCategory(ctx context.Context, name, emoji string, points int, isPositive bool) (int64, error) {
	name = strings.TrimSpace(name)
	emoji = strings.TrimSpace(emoji)
	if name == "" {
		return 0, invalidf("category name is required")
	}
	if emoji == "" {
		return 0, invalidf("category emoji is required")
	}
	if points == 0 {
		return 0, invalidf("category points must be non-zero")
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO categories (name, emoji, default_points, is_positive, is_custom)
		VALUES (?, ?, ?, ?, 1)
	`, name, emoji, signed(points, isPositive), isPositive)
	if err != nil {
		return 0, fmt.Errorf("add category: %w", err)
	}
	return res.LastInsertId()
}

// UpdateCategoryWeight changes a category's default points in place. Already logged
// incidents keep their stored points.
func (db *DB) UpdateCategoryWeight(ctx context.Context, id int64, points int) error {
	c, err := db.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if points == 0 {
		return invalidf("category points must be non-zero")
	}
	_, err = db.ExecContext(ctx, `UPDATE categories SET default_points = ? WHERE id = ?`,
		signed(points, c.IsPositive), id)
	if err != nil {
		return fmt.Errorf("update category weight: %w", err)
	}
	return nil
}

// ResetCategoryWeights restores the seeded weight of every default category.
func (db *DB) ResetCategoryWeights(ctx context.Context) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range defaultCategories {
			if _, err := tx.ExecContext(ctx, `
				UPDATE categories SET default_points = ? WHERE name = ? AND is_custom = 0
			`, c.points, c.name); err != nil {
				return fmt.Errorf("reset %q: %w", c.name, err)
			}
		}
		return nil
	})
}

// DeleteCategory removes a category and, through the foreign key cascade, every
// incident logged against it.
func (db *DB) DeleteCategory(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("category", id)
	}
	return nil
}

package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yashmitb/CleanPlate/internal/models"
)

// MenuRepository serves dining-hall items from Postgres.
type MenuRepository struct {
	db *DB
}

// NewMenuRepository creates a new menu repository.
func NewMenuRepository(db *DB) *MenuRepository {
	return &MenuRepository{db: db}
}

const menuColumns = `item_id, name, dining_hall, category, ingredients, tags, allergens,
	nutrition, available_days, meal_period`

// ItemsByHallAndPeriod returns the items of hall served in period, including
// items available daily.
func (r *MenuRepository) ItemsByHallAndPeriod(ctx context.Context, hall, period string) ([]models.MenuItem, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	return r.query(ctx, `
		SELECT `+menuColumns+`
		FROM dining_hall_items
		WHERE dining_hall = $1
		  AND (lower(meal_period) = lower($2) OR available_days @> '["Daily"]'::jsonb)
		ORDER BY item_id
	`, hall, period)
}

// AllItems returns every menu item.
func (r *MenuRepository) AllItems(ctx context.Context) ([]models.MenuItem, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	return r.query(ctx, `SELECT `+menuColumns+` FROM dining_hall_items ORDER BY item_id`)
}

// DiningHalls returns the distinct hall names in order.
func (r *MenuRepository) DiningHalls(ctx context.Context) ([]string, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT dining_hall FROM dining_hall_items ORDER BY dining_hall`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dining halls: %w: %w", models.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	halls := []string{}
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("failed to scan dining hall: %w: %w", models.ErrStorage, err)
		}
		halls = append(halls, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dining halls: %w: %w", models.ErrStorage, err)
	}
	return halls, nil
}

// UpsertItems inserts or replaces items in a single transaction.
func (r *MenuRepository) UpsertItems(ctx context.Context, items []models.MenuItem) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", models.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for i := range items {
		item := &items[i]
		encoded, err := encodeMenuJSON(item)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO dining_hall_items (`+menuColumns+`, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (item_id) DO UPDATE SET
				name = EXCLUDED.name,
				dining_hall = EXCLUDED.dining_hall,
				category = EXCLUDED.category,
				ingredients = EXCLUDED.ingredients,
				tags = EXCLUDED.tags,
				allergens = EXCLUDED.allergens,
				nutrition = EXCLUDED.nutrition,
				available_days = EXCLUDED.available_days,
				meal_period = EXCLUDED.meal_period,
				updated_at = EXCLUDED.updated_at
		`, item.ItemID, item.Name, item.DiningHall, item.Category,
			encoded[0], encoded[1], encoded[2], encoded[3], encoded[4],
			item.MealPeriod, now)
		if err != nil {
			return fmt.Errorf("failed to upsert menu item %s: %w: %w", item.ItemID, models.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit menu items: %w: %w", models.ErrStorage, err)
	}
	return nil
}

func (r *MenuRepository) query(ctx context.Context, query string, args ...any) ([]models.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w: %w", models.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	items := []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		var ingredients, tags, allergens, nutrition, days []byte
		if err := rows.Scan(
			&item.ItemID,
			&item.Name,
			&item.DiningHall,
			&item.Category,
			&ingredients,
			&tags,
			&allergens,
			&nutrition,
			&days,
			&item.MealPeriod,
		); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w: %w", models.ErrStorage, err)
		}
		for _, f := range []struct {
			raw []byte
			dst any
		}{
			{ingredients, &item.Ingredients},
			{tags, &item.Tags},
			{allergens, &item.Allergens},
			{nutrition, &item.Nutrition},
			{days, &item.AvailableDays},
		} {
			if err := json.Unmarshal(f.raw, f.dst); err != nil {
				return nil, fmt.Errorf("failed to decode menu item %s: %w: %w", item.ItemID, models.ErrStorage, err)
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menu items: %w: %w", models.ErrStorage, err)
	}
	return items, nil
}

func encodeMenuJSON(item *models.MenuItem) ([5][]byte, error) {
	var out [5][]byte
	values := []any{
		nonNil(item.Ingredients),
		nonNil(item.Tags),
		nonNil(item.Allergens),
		item.Nutrition,
		nonNil(item.AvailableDays),
	}
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return out, fmt.Errorf("failed to marshal menu item %s: %w", item.ItemID, err)
		}
		out[i] = b
	}
	return out, nil
}

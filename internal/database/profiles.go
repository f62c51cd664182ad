package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yashmitb/CleanPlate/internal/models"
)

// ProfileRepository stores user profiles in Postgres, one row per user with
// the food sets and meal history held as JSONB.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get retrieves a profile by user ID.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var liked, disliked, history []byte
	p := &models.UserProfile{}
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, user_name, liked_foods, disliked_foods, meal_count,
		       total_waste_percentage, meal_history, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`, userID).Scan(
		&p.UserID,
		&p.DisplayName,
		&liked,
		&disliked,
		&p.MealCount,
		&p.TotalWastePercentage,
		&history,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %q: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w: %w", models.ErrStorage, err)
	}

	if err := json.Unmarshal(liked, &p.LikedFoods); err != nil {
		return nil, fmt.Errorf("failed to decode liked foods: %w: %w", models.ErrStorage, err)
	}
	if err := json.Unmarshal(disliked, &p.DislikedFoods); err != nil {
		return nil, fmt.Errorf("failed to decode disliked foods: %w: %w", models.ErrStorage, err)
	}
	if err := json.Unmarshal(history, &p.MealHistory); err != nil {
		return nil, fmt.Errorf("failed to decode meal history: %w: %w", models.ErrStorage, err)
	}

	return p, nil
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, p *models.UserProfile) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	args, err := profileArgs(p)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, user_name, liked_foods, disliked_foods, meal_count,
		                           total_waste_percentage, meal_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO NOTHING
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w: %w", models.ErrStorage, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to create profile: %w: %w", models.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("profile %q: %w", p.UserID, models.ErrAlreadyExists)
	}
	return nil
}

// Upsert writes the whole profile document, creating it if absent.
func (r *ProfileRepository) Upsert(ctx context.Context, p *models.UserProfile) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	args, err := profileArgs(p)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, user_name, liked_foods, disliked_foods, meal_count,
		                           total_waste_percentage, meal_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			user_name = EXCLUDED.user_name,
			liked_foods = EXCLUDED.liked_foods,
			disliked_foods = EXCLUDED.disliked_foods,
			meal_count = EXCLUDED.meal_count,
			total_waste_percentage = EXCLUDED.total_waste_percentage,
			meal_history = EXCLUDED.meal_history,
			updated_at = EXCLUDED.updated_at
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w: %w", models.ErrStorage, err)
	}
	return nil
}

// Delete removes a profile and its meal history.
func (r *ProfileRepository) Delete(ctx context.Context, userID string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM user_profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w: %w", models.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w: %w", models.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("profile %q: %w", userID, models.ErrNotFound)
	}
	return nil
}

// ListDislikes returns every user's disliked foods.
func (r *ProfileRepository) ListDislikes(ctx context.Context) ([][]string, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT disliked_foods FROM user_profiles ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dislikes: %w: %w", models.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	var out [][]string
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan dislikes: %w: %w", models.ErrStorage, err)
		}
		var foods []string
		if err := json.Unmarshal(raw, &foods); err != nil {
			return nil, fmt.Errorf("failed to decode dislikes: %w: %w", models.ErrStorage, err)
		}
		out = append(out, foods)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dislikes: %w: %w", models.ErrStorage, err)
	}
	return out, nil
}

func profileArgs(p *models.UserProfile) ([]any, error) {
	liked, err := json.Marshal(nonNil(p.LikedFoods))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal liked foods: %w", err)
	}
	disliked, err := json.Marshal(nonNil(p.DislikedFoods))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal disliked foods: %w", err)
	}
	history := p.MealHistory
	if history == nil {
		history = []models.MealRecord{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meal history: %w", err)
	}
	return []any{
		p.UserID,
		p.DisplayName,
		liked,
		disliked,
		p.MealCount,
		p.TotalWastePercentage,
		historyJSON,
		p.CreatedAt,
		p.UpdatedAt,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

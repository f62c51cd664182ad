// Package preferences merges analysed meals into user preference profiles and
// serves the per-user profile operations.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/logger"
	"github.com/yashmitb/CleanPlate/internal/metrics"
	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/telemetry"
	"github.com/yashmitb/CleanPlate/internal/validation"
)

const (
	// DefaultHistoryLimit is the number of meals returned when no limit is given.
	DefaultHistoryLimit = 10
	// DefaultHistoryMax caps any requested history limit.
	DefaultHistoryMax = 100
	// summaryRecentMeals is the number of meals included in a summary.
	summaryRecentMeals = 5
	// unknownMealName names meals the analysis could not identify.
	unknownMealName = "Unknown"
)

// Engine applies meal analyses to profiles and reads them back.
type Engine struct {
	store        database.ProfileStore
	logger       *zap.Logger
	now          func() time.Time
	newID        func() string
	historyLimit int
	historyMax   int
}

// NewEngine creates a preference engine over store.
func NewEngine(store database.ProfileStore, logger *zap.Logger) *Engine {
	return &Engine{
		store:        store,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        func() string { return uuid.NewString() },
		historyLimit: DefaultHistoryLimit,
		historyMax:   DefaultHistoryMax,
	}
}

// SetHistoryLimits overrides the default and maximum history page sizes.
func (e *Engine) SetHistoryLimits(defaultLimit, maxLimit int) {
	if maxLimit > 0 {
		e.historyMax = maxLimit
	}
	if defaultLimit > 0 {
		e.historyLimit = min(defaultLimit, e.historyMax)
	}
}

// ApplyMeal merges one analysed meal into the user's profile and persists it
// with a single upsert. Invalid input is rejected before any read or write.
// Two concurrent calls for the same user race and the later write wins.
func (e *Engine) ApplyMeal(ctx context.Context, userID string, analysis *models.WasteAnalysis) (_ *models.UserProfile, err error) {
	ctx, span := telemetry.StartSpan(ctx, "preferences", "apply_meal", userID)
	defer func() { telemetry.EndSpan(span, err) }()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, models.NewValidationError("user_id", "is required")
	}
	if err := validation.ValidateWasteAnalysis(analysis); err != nil {
		return nil, err
	}

	now := e.now()
	profile, err := e.store.Get(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		profile = models.NewUserProfile(userID, "", now)
	} else if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	likes := normalizeAll(analysis.FoodPreferences.LikelyLikes)
	dislikes := normalizeAll(analysis.FoodPreferences.LikelyDislikes)
	profile.LikedFoods = union(profile.LikedFoods, likes)
	profile.DislikedFoods = union(profile.DislikedFoods, dislikes)

	// A food in both sets keeps only the dislike.
	profile.LikedFoods = slices.DeleteFunc(profile.LikedFoods, func(f string) bool {
		return slices.Contains(profile.DislikedFoods, f)
	})

	meal := analysis.OriginalMeal
	name := strings.TrimSpace(meal.Name)
	if name == "" {
		name = unknownMealName
	}
	profile.MealHistory = append(profile.MealHistory, models.MealRecord{
		MealID:    e.newID(),
		Timestamp: now.Format(models.MealTimestampLayout),
		OriginalMeal: models.OriginalMeal{
			Name:        name,
			Description: meal.Description,
		},
		Eaten:      slices.Clone(analysis.Eaten),
		ThrownAway: slices.Clone(analysis.ThrownAway),
	})
	profile.MealCount++
	profile.UpdatedAt = now

	raw := *analysis.WasteSummary.TotalWastePercentage
	if pct, ok := parsePercentage(raw); ok {
		profile.TotalWastePercentage = pct
	} else {
		e.logger.Warn("waste_percentage_unparsed",
			zap.String("user_id", logger.SanitizeUserID(userID)),
			zap.String("operation", "apply_meal"),
			zap.String("value", logger.SanitizeString(raw, 50)),
		)
	}

	if err := e.store.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	metrics.MealsApplied.Inc()
	e.logger.Info("meal_applied",
		zap.String("user_id", logger.SanitizeUserID(userID)),
		zap.Int("meal_count", profile.MealCount),
		zap.Int("liked_foods", len(profile.LikedFoods)),
		zap.Int("disliked_foods", len(profile.DislikedFoods)),
	)
	return profile, nil
}

// CreateUser stores an empty profile. It fails with models.ErrAlreadyExists
// when the user exists.
func (e *Engine) CreateUser(ctx context.Context, userID, displayName string) (*models.UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, models.NewValidationError("user_id", "is required")
	}
	profile := models.NewUserProfile(userID, strings.TrimSpace(displayName), e.now())
	if err := e.store.Create(ctx, profile); err != nil {
		return nil, err
	}
	e.logger.Info("user_created", zap.String("user_id", logger.SanitizeUserID(userID)))
	return profile, nil
}

// GetUser returns the profile, or models.ErrNotFound.
func (e *Engine) GetUser(ctx context.Context, userID string) (*models.UserProfile, error) {
	return e.store.Get(ctx, userID)
}

// DeleteUser removes the profile and its meal history, or returns models.ErrNotFound.
func (e *Engine) DeleteUser(ctx context.Context, userID string) error {
	if err := e.store.Delete(ctx, userID); err != nil {
		return err
	}
	e.logger.Info("user_deleted", zap.String("user_id", logger.SanitizeUserID(userID)))
	return nil
}

// History returns up to limit of the user's most recent meals, oldest first.
// A non-positive limit selects the default; larger limits are capped.
func (e *Engine) History(ctx context.Context, userID string, limit int) ([]models.MealRecord, error) {
	profile, err := e.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile.RecentMeals(e.clampLimit(limit)), nil
}

// Summary returns the profile with meal totals and the latest meals.
func (e *Engine) Summary(ctx context.Context, userID string) (*models.UserSummary, error) {
	profile, err := e.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UserSummary{
		Profile:                profile,
		TotalMealsAnalyzed:     profile.MealCount,
		AverageWastePercentage: profile.TotalWastePercentage,
		RecentMeals:            profile.RecentMeals(summaryRecentMeals),
	}, nil
}

func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.historyLimit
	}
	return min(limit, e.historyMax)
}

// normalizeAll normalizes names, dropping empties and duplicates.
func normalizeAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = models.NormalizeFoodName(n)
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// union appends the members of add missing from set, keeping set's order.
func union(set, add []string) []string {
	if set == nil {
		set = []string{}
	}
	for _, a := range add {
		if !slices.Contains(set, a) {
			set = append(set, a)
		}
	}
	return set
}

// parsePercentage parses "25", "25.5" or "25%". NaN and infinities are
// rejected since they cannot be encoded as JSON.
func parsePercentage(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

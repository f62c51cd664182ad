// Package matching scores dining-hall menu items against a user's food
// preferences.
package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/logger"
	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/telemetry"
)

// Scoring weights.
const (
	baseScore         = 50.0
	ingredientPenalty = 30.0
	namePenalty       = 25.0

	// earlyExitScore is the score at or below which likes are not considered.
	earlyExitScore = 20.0

	ingredientBonus = 20.0
	nameBonus       = 15.0
	categoryBonus   = 10.0
	healthyBonus    = 5.0
	dietBonus       = 3.0

	// DefaultLimit is the number of matches returned when no limit is given.
	DefaultLimit = 10
)

// Engine ranks a hall's menu for a user.
type Engine struct {
	profiles database.ProfileStore
	menu     database.MenuStore
	logger   *zap.Logger
}

// NewEngine creates a matching engine.
func NewEngine(profiles database.ProfileStore, menu database.MenuStore, logger *zap.Logger) *Engine {
	return &Engine{profiles: profiles, menu: menu, logger: logger}
}

// Match scores every item served in hall during period and returns the best
// limit items, highest score first. A missing user yields models.ErrNotFound.
func (e *Engine) Match(ctx context.Context, userID, hall, period string, limit int) (_ []models.MatchedItem, err error) {
	ctx, span := telemetry.StartSpan(ctx, "matching", "match", userID)
	defer func() { telemetry.EndSpan(span, err) }()

	if limit <= 0 {
		limit = DefaultLimit
	}

	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	items, err := e.menu.ItemsByHallAndPeriod(ctx, hall, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}

	matches := make([]models.MatchedItem, 0, len(items))
	for i := range items {
		score, reasons, conf := Score(profile.LikedFoods, profile.DislikedFoods, &items[i])
		matches = append(matches, models.MatchedItem{
			Item:         items[i],
			MatchScore:   models.Round1(score),
			MatchReasons: reasons,
			Confidence:   conf,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	e.logger.Debug("menu_matched",
		zap.String("user_id", logger.SanitizeUserID(userID)),
		zap.String("dining_hall", logger.SanitizeString(hall, 200)),
		zap.String("meal_period", logger.SanitizeString(period, 50)),
		zap.Int("candidates", len(items)),
		zap.Int("returned", len(matches)),
	)
	return matches, nil
}

// Score rates item for a user with the given likes and dislikes. It returns
// a score in [0, 100], the reasons behind it and a confidence level.
//
// Each dislike found in an ingredient costs 30, otherwise found in the item
// name costs 25. A score at or below 20 after penalties is final; the bound
// is inclusive so a single disliked ingredient (50 - 30) stops at exactly 20.
// Each like then adds 20 for an ingredient, 15 for the name or 10 for an
// exact category match, and healthy and vegan/vegetarian tags add 5 and 3.
// The diet tag is reported as a reason, so a vegan item with no other
// factors does not get the general fallback reason.
func Score(likes, dislikes []string, item *models.MenuItem) (float64, []string, string) {
	ingredients := make([]string, len(item.Ingredients))
	for i, ing := range item.Ingredients {
		ingredients[i] = models.NormalizeFoodName(ing)
	}
	name := strings.ToLower(item.Name)
	category := strings.ToLower(item.Category)

	score := baseScore
	reasons := []string{}

	for _, d := range dislikes {
		dl := models.NormalizeFoodName(d)
		if dl == "" {
			continue
		}
		if containedIn(dl, ingredients) {
			score -= ingredientPenalty
			reasons = append(reasons, "Contains disliked ingredient: "+d)
		} else if strings.Contains(name, dl) {
			score -= namePenalty
			reasons = append(reasons, "Item name contains disliked food: "+d)
		}
	}

	if score <= earlyExitScore {
		return max(0, score), reasons, models.ConfidenceLow
	}

	var matched []string
	for _, l := range likes {
		ll := models.NormalizeFoodName(l)
		if ll == "" {
			continue
		}
		switch {
		case containedIn(ll, ingredients):
			score += ingredientBonus
		case strings.Contains(name, ll):
			score += nameBonus
		case ll == category:
			score += categoryBonus
		default:
			continue
		}
		matched = append(matched, l)
	}
	if len(matched) > 0 {
		reasons = append(reasons, "Matches your preferences: "+strings.Join(matched, ", "))
	}

	if item.HasTag("healthy") {
		score += healthyBonus
		reasons = append(reasons, "Healthy option")
	}
	if item.HasTag("vegan") || item.HasTag("vegetarian") {
		score += dietBonus
		reasons = append(reasons, "Vegetarian-friendly option")
	}

	score = min(100, max(0, score))

	if len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf("General %s option", category))
	}
	return score, reasons, confidenceFor(score)
}

func containedIn(needle string, haystack []string) bool {
	for _, h := range haystack {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

func confidenceFor(score float64) string {
	switch {
	case score >= 75:
		return models.ConfidenceHigh
	case score >= 50:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

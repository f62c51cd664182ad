// Package recommend ranks a user's liked foods and reports their dislikes
// from the accumulated profile and recent meal history.
package recommend

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/services/food"
	"github.com/yashmitb/CleanPlate/internal/telemetry"
)

const (
	// historyWindow is the number of recent meals scanned for frequencies.
	historyWindow = 100
	// DefaultLimit is the number of recommendations returned when no limit is given.
	DefaultLimit = 10

	tagFavorite          = "favorite"
	tagHighlyRecommended = "highly-recommended"
)

// Engine derives recommendations and dislikes for a single user.
type Engine struct {
	store  database.ProfileStore
	logger *zap.Logger
}

// NewEngine creates a recommendation engine over store.
func NewEngine(store database.ProfileStore, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Recommend returns up to limit liked foods ranked by how often the user ate
// them. Only the first limit liked foods, in stored order, are considered.
// A user without liked foods gets an empty result. A missing user yields
// models.ErrNotFound.
func (e *Engine) Recommend(ctx context.Context, userID string, limit int) (_ []models.Recommendation, err error) {
	ctx, span := telemetry.StartSpan(ctx, "recommend", "recommend", userID)
	defer func() { telemetry.EndSpan(span, err) }()

	if limit <= 0 {
		limit = DefaultLimit
	}

	profile, err := e.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	recs := []models.Recommendation{}
	if len(profile.LikedFoods) == 0 {
		return recs, nil
	}

	liked := make(map[string]bool, len(profile.LikedFoods))
	for _, f := range profile.LikedFoods {
		liked[f] = true
	}

	frequency := make(map[string]int)
	for _, meal := range profile.RecentMeals(historyWindow) {
		for _, portion := range meal.Eaten {
			name := models.NormalizeFoodName(portion.Item)
			if liked[name] {
				frequency[name]++
			}
		}
	}

	maxFrequency := 1
	if len(frequency) > 0 {
		maxFrequency = 0
		for _, n := range frequency {
			maxFrequency = max(maxFrequency, n)
		}
	}

	candidates := profile.LikedFoods
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	for _, f := range candidates {
		n, ok := frequency[f]
		if !ok {
			n = 1
		}
		match := min(100, 100*float64(n)/float64(maxFrequency))
		category := food.Categorize(f)

		tags := []string{category}
		if n >= 3 {
			tags = append(tags, tagFavorite)
		}
		if match >= 80 {
			tags = append(tags, tagHighlyRecommended)
		}

		recs = append(recs, models.Recommendation{
			Name:            models.TitleCase(f),
			MatchPercentage: models.Round1(match),
			ImageURL:        ImageURL(f),
			Category:        category,
			Description:     describe(f, n),
			Confidence:      confidence(profile.MealCount, n),
			Tags:            tags,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchPercentage > recs[j].MatchPercentage
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Dislikes returns every disliked food with how often it was thrown away in
// recent meals and when it was last seen, most frequent first. Foods never
// seen in history report frequency 1 and no last-seen time.
func (e *Engine) Dislikes(ctx context.Context, userID string) (_ []models.DislikedFood, err error) {
	ctx, span := telemetry.StartSpan(ctx, "recommend", "dislikes", userID)
	defer func() { telemetry.EndSpan(span, err) }()

	profile, err := e.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	disliked := make(map[string]bool, len(profile.DislikedFoods))
	for _, f := range profile.DislikedFoods {
		disliked[f] = true
	}

	type seen struct {
		frequency int
		lastSeen  string
	}
	stats := make(map[string]*seen)
	for _, meal := range profile.RecentMeals(historyWindow) {
		for _, portion := range meal.ThrownAway {
			name := models.NormalizeFoodName(portion.Item)
			if !disliked[name] {
				continue
			}
			s, ok := stats[name]
			if !ok {
				s = &seen{}
				stats[name] = s
			}
			s.frequency++
			// Fixed-width UTC timestamps order lexically.
			if meal.Timestamp > s.lastSeen {
				s.lastSeen = meal.Timestamp
			}
		}
	}

	out := make([]models.DislikedFood, 0, len(profile.DislikedFoods))
	for _, f := range profile.DislikedFoods {
		d := models.DislikedFood{
			Name:      models.TitleCase(f),
			Frequency: 1,
			Category:  food.Categorize(f),
		}
		if s, ok := stats[f]; ok {
			d.Frequency = s.frequency
			if s.lastSeen != "" {
				last := s.lastSeen
				d.LastSeen = &last
			}
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Frequency > out[j].Frequency
	})
	return out, nil
}

// ImageURL returns the placeholder photo URL for a food.
func ImageURL(name string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
	return "https://source.unsplash.com/400x300/?" + url.QueryEscape(slug) + ",food"
}

func describe(name string, n int) string {
	plural := "s"
	if n == 1 {
		plural = ""
	}
	return fmt.Sprintf("You've enjoyed %s in %d meal%s", name, n, plural)
}

func confidence(mealCount, frequency int) string {
	switch {
	case mealCount >= 5 && frequency >= 3:
		return models.ConfidenceHigh
	case mealCount >= 3 && frequency >= 2:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

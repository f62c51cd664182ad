package models

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// MealTimestampLayout is the fixed-width UTC layout used for MealRecord timestamps.
// Fixed width keeps lexical and chronological order identical.
const MealTimestampLayout = "2006-01-02T15:04:05.000000Z"

// UserProfile is the per-user preference document.
type UserProfile struct {
	UserID               string       `json:"user_id"`
	DisplayName          string       `json:"user_name,omitempty"`
	LikedFoods           []string     `json:"liked_foods"`
	DislikedFoods        []string     `json:"disliked_foods"`
	MealCount            int          `json:"meal_count"`
	TotalWastePercentage float64      `json:"total_waste_percentage"`
	MealHistory          []MealRecord `json:"meal_history"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// NewUserProfile returns an empty profile for userID.
func NewUserProfile(userID, displayName string, now time.Time) *UserProfile {
	return &UserProfile{
		UserID:        userID,
		DisplayName:   displayName,
		LikedFoods:    []string{},
		DislikedFoods: []string{},
		MealHistory:   []MealRecord{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// RecentMeals returns up to limit of the newest meal records, oldest first.
func (p *UserProfile) RecentMeals(limit int) []MealRecord {
	if limit <= 0 || limit >= len(p.MealHistory) {
		return p.MealHistory
	}
	return p.MealHistory[len(p.MealHistory)-limit:]
}

// MealRecord is one ingested meal. It is never changed after it is appended.
type MealRecord struct {
	MealID       string        `json:"meal_id"`
	Timestamp    string        `json:"timestamp"`
	OriginalMeal OriginalMeal  `json:"original_meal"`
	Eaten        []FoodPortion `json:"eaten"`
	ThrownAway   []FoodPortion `json:"thrown_away"`
}

// NormalizeFoodName lower-cases and trims a food name.
func NormalizeFoodName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// TitleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest, so "mac-and-cheese" becomes "Mac-And-Cheese".
func TitleCase(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	prevLetter := false
	for _, r := range name {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !prevLetter:
			b.WriteRune(unicode.ToUpper(r))
		case isLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// UserSummary is the profile overview returned by the summary endpoint.
type UserSummary struct {
	Profile                *UserProfile `json:"profile"`
	TotalMealsAnalyzed     int          `json:"total_meals_analyzed"`
	AverageWastePercentage float64      `json:"average_waste_percentage"`
	RecentMeals            []MealRecord `json:"recent_meals"`
}

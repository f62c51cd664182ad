package models

// WasteAnalysis is the structured output of the vision analysis for one meal.
// Pointer and slice fields distinguish a missing key from an empty value.
type WasteAnalysis struct {
	OriginalMeal    *OriginalMeal    `json:"original_meal" validate:"required"`
	ThrownAway      []FoodPortion    `json:"thrown_away" validate:"required,dive"`
	Eaten           []FoodPortion    `json:"eaten" validate:"required,dive"`
	FoodPreferences *FoodPreferences `json:"food_preferences" validate:"required"`
	WasteSummary    *WasteSummary    `json:"waste_summary" validate:"required"`
}

// OriginalMeal names the meal as it was served.
type OriginalMeal struct {
	Name        string `json:"name" validate:"max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// FoodPortion is one item of a meal with its quantity.
type FoodPortion struct {
	Item                 string `json:"item" validate:"required,max=200"`
	Quantity             string `json:"quantity" validate:"max=200"`
	PercentageOfOriginal string `json:"percentage_of_original" validate:"max=50"`
}

// FoodPreferences holds the like and dislike signals inferred from a meal.
type FoodPreferences struct {
	LikelyDislikes []string `json:"likely_dislikes" validate:"required,dive,max=200"`
	LikelyLikes    []string `json:"likely_likes" validate:"required,dive,max=200"`
	Insights       string   `json:"insights" validate:"max=2000"`
}

// WasteSummary summarises how much of the meal was wasted.
type WasteSummary struct {
	TotalWastePercentage *string `json:"total_waste_percentage" validate:"required,max=50"`
	WasteValue           string  `json:"waste_value" validate:"required,waste_value"`
}

// WasteValue levels.
const (
	WasteValueLow    = "low"
	WasteValueMedium = "medium"
	WasteValueHigh   = "high"
)

package models

// Confidence levels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Severity tiers for population-wide dislikes.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Recommendation is a liked food ranked for a user.
type Recommendation struct {
	Name            string   `json:"name"`
	MatchPercentage float64  `json:"match_percentage"`
	ImageURL        string   `json:"image_url"`
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	Confidence      string   `json:"confidence"`
	Tags            []string `json:"tags"`
}

// DislikedFood is a disliked food with its waste frequency.
type DislikedFood struct {
	Name      string  `json:"name"`
	Frequency int     `json:"frequency"`
	LastSeen  *string `json:"last_seen"`
	Category  string  `json:"category"`
}

// MatchedItem is a menu item scored against a user's preferences.
type MatchedItem struct {
	Item         MenuItem `json:"item"`
	MatchScore   float64  `json:"match_score"`
	MatchReasons []string `json:"match_reasons"`
	Confidence   string   `json:"confidence"`
}

// AdminInsight is one food disliked across the population.
type AdminInsight struct {
	FoodItem          string  `json:"food_item"`
	DislikeCount      int     `json:"dislike_count"`
	PercentageOfUsers float64 `json:"percentage_of_users"`
	Severity          string  `json:"severity"`
	Recommendation    string  `json:"recommendation"`
}

// InsightsSummary holds population totals for the waste report.
type InsightsSummary struct {
	TotalUsersAnalyzed       int     `json:"total_users_analyzed"`
	UsersWithPreferences     int     `json:"users_with_preferences"`
	TotalUniqueDislikedItems int     `json:"total_unique_disliked_items"`
	AverageDislikesPerUser   float64 `json:"average_dislikes_per_user"`
}

// ActionPlan lists the items that need attention first.
type ActionPlan struct {
	CriticalItems     []string `json:"critical_items"`
	HighPriorityItems []string `json:"high_priority_items"`
	ActionItems       []string `json:"action_items"`
}

// WasteInsightsReport is the admin waste report.
type WasteInsightsReport struct {
	Insights        []AdminInsight  `json:"top_disliked_items"`
	Summary         InsightsSummary `json:"summary"`
	Recommendations ActionPlan      `json:"recommendations"`
	Error           string          `json:"error,omitempty"`
}

// ItemCount is a food with an occurrence count.
type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// CategoryBreakdown aggregates dislikes of one food category.
type CategoryBreakdown struct {
	Category      string      `json:"category"`
	TotalDislikes int         `json:"total_dislikes"`
	UniqueItems   int         `json:"unique_items"`
	MostCommon    []ItemCount `json:"most_common"`
}

// CategoryReport is the admin dislikes-by-category report.
type CategoryReport struct {
	Categories []CategoryBreakdown `json:"category_breakdown"`
	Insight    string              `json:"insight"`
	Error      string              `json:"error,omitempty"`
}

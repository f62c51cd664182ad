// Package insights aggregates dislikes across every user into admin reports.
package insights

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/services/food"
	"github.com/yashmitb/CleanPlate/internal/telemetry"
)

const (
	// DefaultLimit is the number of foods reported when no limit is given.
	DefaultLimit = 20
	// mostCommonPerCategory is the number of top foods listed per category.
	mostCommonPerCategory = 3
)

// actionItems are attached to every waste report.
var actionItems = []string{
	"Review preparation methods for high-waste items",
	"Consider menu alternatives for critical items",
	"Survey students for specific feedback on problem items",
	"Monitor waste trends over time",
}

// Aggregator computes population-wide waste reports on demand.
type Aggregator struct {
	store  database.ProfileStore
	logger *zap.Logger
}

// NewAggregator creates an aggregator over store.
func NewAggregator(store database.ProfileStore, logger *zap.Logger) *Aggregator {
	return &Aggregator{store: store, logger: logger}
}

// WasteInsights ranks the limit foods disliked by the most users and rates
// each by the share of users who dislike it.
func (a *Aggregator) WasteInsights(ctx context.Context, limit int) (_ *models.WasteInsightsReport, err error) {
	ctx, span := telemetry.StartSpan(ctx, "insights", "waste_insights", "")
	defer func() { telemetry.EndSpan(span, err) }()

	if limit <= 0 {
		limit = DefaultLimit
	}

	all, err := a.store.ListDislikes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dislikes: %w", err)
	}
	return BuildWasteInsights(all, limit), nil
}

// WasteByCategory buckets every dislike occurrence by food category, largest
// bucket first.
func (a *Aggregator) WasteByCategory(ctx context.Context) (_ *models.CategoryReport, err error) {
	ctx, span := telemetry.StartSpan(ctx, "insights", "waste_by_category", "")
	defer func() { telemetry.EndSpan(span, err) }()

	all, err := a.store.ListDislikes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dislikes: %w", err)
	}
	return BuildCategoryReport(all), nil
}

// BuildWasteInsights computes the waste report from every user's dislikes.
func BuildWasteInsights(all [][]string, limit int) *models.WasteInsightsReport {
	totalUsers := len(all)
	tally := newTally()
	usersWithData := 0
	totalDislikes := 0

	for _, dislikes := range all {
		totalDislikes += len(dislikes)
		if len(dislikes) > 0 {
			usersWithData++
		}
		seen := make(map[string]bool, len(dislikes))
		for _, f := range dislikes {
			if !seen[f] {
				seen[f] = true
				tally.add(f)
			}
		}
	}

	report := &models.WasteInsightsReport{
		Insights: []models.AdminInsight{},
		Summary: models.InsightsSummary{
			TotalUsersAnalyzed:       totalUsers,
			UsersWithPreferences:     usersWithData,
			TotalUniqueDislikedItems: len(tally.counts),
		},
		Recommendations: models.ActionPlan{
			CriticalItems:     []string{},
			HighPriorityItems: []string{},
			ActionItems:       append([]string(nil), actionItems...),
		},
	}
	if totalUsers > 0 {
		report.Summary.AverageDislikesPerUser = models.Round1(float64(totalDislikes) / float64(totalUsers))
	}

	for _, ic := range tally.top(limit) {
		var pct float64
		if totalUsers > 0 {
			pct = 100 * float64(ic.Count) / float64(totalUsers)
		}
		severity, advice := rate(ic.Item, pct)
		insight := models.AdminInsight{
			FoodItem:          models.TitleCase(ic.Item),
			DislikeCount:      ic.Count,
			PercentageOfUsers: models.Round1(pct),
			Severity:          severity,
			Recommendation:    advice,
		}
		report.Insights = append(report.Insights, insight)

		switch severity {
		case models.SeverityCritical:
			report.Recommendations.CriticalItems = append(report.Recommendations.CriticalItems, insight.FoodItem)
		case models.SeverityHigh:
			report.Recommendations.HighPriorityItems = append(report.Recommendations.HighPriorityItems, insight.FoodItem)
		}
	}
	return report
}

// BuildCategoryReport computes the per-category breakdown of every dislike.
func BuildCategoryReport(all [][]string) *models.CategoryReport {
	var order []string
	byCategory := make(map[string]*tally)

	for _, dislikes := range all {
		for _, f := range dislikes {
			c := food.Categorize(f)
			t, ok := byCategory[c]
			if !ok {
				t = newTally()
				byCategory[c] = t
				order = append(order, c)
			}
			t.add(f)
		}
	}

	report := &models.CategoryReport{Categories: []models.CategoryBreakdown{}, Insight: "No data"}
	for _, c := range order {
		t := byCategory[c]
		report.Categories = append(report.Categories, models.CategoryBreakdown{
			Category:      c,
			TotalDislikes: t.total,
			UniqueItems:   len(t.counts),
			MostCommon:    t.top(mostCommonPerCategory),
		})
	}
	sort.SliceStable(report.Categories, func(i, j int) bool {
		return report.Categories[i].TotalDislikes > report.Categories[j].TotalDislikes
	})
	if len(report.Categories) > 0 {
		report.Insight = "Most problematic category: " + report.Categories[0].Category
	}
	return report
}

// rate maps a population share to a severity tier and advice text.
func rate(item string, pct float64) (string, string) {
	switch {
	case pct >= 50:
		return models.SeverityCritical, "Consider removing or significantly reformulating " + item
	case pct >= 30:
		return models.SeverityHigh, "High waste item - review preparation method for " + item
	case pct >= 15:
		return models.SeverityMedium, "Monitor " + item + " - consider alternative preparation"
	default:
		return models.SeverityLow, "Minor concern for " + item
	}
}

// tally counts items, remembering first-seen order for ties.
type tally struct {
	order  []string
	counts map[string]int
	total  int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(item string) {
	if _, ok := t.counts[item]; !ok {
		t.order = append(t.order, item)
	}
	t.counts[item]++
	t.total++
}

// top returns the n most counted items; ties keep first-seen order.
func (t *tally) top(n int) []models.ItemCount {
	out := make([]models.ItemCount, 0, len(t.order))
	for _, item := range t.order {
		out = append(out, models.ItemCount{Item: item, Count: t.counts[item]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/queue"
	"github.com/yashmitb/CleanPlate/internal/services/ai"
	"github.com/yashmitb/CleanPlate/internal/services/insights"
	"github.com/yashmitb/CleanPlate/internal/services/matching"
	"github.com/yashmitb/CleanPlate/internal/services/preferences"
	"github.com/yashmitb/CleanPlate/internal/services/recommend"
)

type mockVision struct {
	analyzeURLFn   func(ctx context.Context, imageURL string) (*models.WasteAnalysis, error)
	analyzeBytesFn func(ctx context.Context, data []byte, contentType string) (*models.WasteAnalysis, error)
}

func (m *mockVision) AnalyzeImageURL(ctx context.Context, imageURL string) (*models.WasteAnalysis, error) {
	if m.analyzeURLFn != nil {
		return m.analyzeURLFn(ctx, imageURL)
	}
	return sampleAnalysis(), nil
}

func (m *mockVision) AnalyzeImageBytes(ctx context.Context, data []byte, contentType string) (*models.WasteAnalysis, error) {
	if m.analyzeBytesFn != nil {
		return m.analyzeBytesFn(ctx, data, contentType)
	}
	return sampleAnalysis(), nil
}

type mockEnqueuer struct {
	enqueueFn func(ctx context.Context, job *queue.Job) error
}

func (m *mockEnqueuer) Enqueue(ctx context.Context, job *queue.Job) error {
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, job)
	}
	return nil
}

// failingProfileStore fails every read with a storage error.
type failingProfileStore struct {
	*database.MemoryProfileStore
}

func (s *failingProfileStore) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	return nil, fmt.Errorf("query: %w: connection reset", models.ErrStorage)
}

func (s *failingProfileStore) ListDislikes(ctx context.Context) ([][]string, error) {
	return nil, fmt.Errorf("query: %w: connection reset", models.ErrStorage)
}

var (
	_ ai.VisionAnalyzer     = (*mockVision)(nil)
	_ JobEnqueuer           = (*mockEnqueuer)(nil)
	_ database.ProfileStore = (*failingProfileStore)(nil)

	// The server passes these production types to the handlers.
	_ JobEnqueuer        = (queue.JobQueue)(nil)
	_ QueueChecker       = (queue.JobQueue)(nil)
	_ BreakerStateReader = (*ai.BreakerAnalyzer)(nil)
)

func sampleAnalysis() *models.WasteAnalysis {
	pct := "30%"
	return &models.WasteAnalysis{
		OriginalMeal: &models.OriginalMeal{Name: "Chicken Stir Fry", Description: "Chicken with vegetables and rice"},
		ThrownAway:   []models.FoodPortion{{Item: "Broccoli", Quantity: "half cup", PercentageOfOriginal: "80%"}},
		Eaten:        []models.FoodPortion{{Item: "Chicken", Quantity: "1 breast"}, {Item: "Rice", Quantity: "1 cup"}},
		FoodPreferences: &models.FoodPreferences{
			LikelyDislikes: []string{"Broccoli"},
			LikelyLikes:    []string{"Chicken", "Rice"},
		},
		WasteSummary: &models.WasteSummary{TotalWastePercentage: &pct, WasteValue: "medium"},
	}
}

func sampleMenu() []models.MenuItem {
	return []models.MenuItem{
		{
			ItemID: "n1", Name: "Grilled Chicken Bowl", DiningHall: "North Campus Dining", Category: "protein",
			Ingredients: []string{"chicken", "rice", "peppers"}, Tags: []string{"healthy"},
			AvailableDays: []string{"Monday"}, MealPeriod: "lunch",
		},
		{
			ItemID: "n2", Name: "Broccoli Cheddar Soup", DiningHall: "North Campus Dining", Category: "soup",
			Ingredients: []string{"broccoli", "cheddar"}, AvailableDays: []string{"Daily"}, MealPeriod: "dinner",
		},
		{
			ItemID: "s1", Name: "Pancakes", DiningHall: "South Commons", Category: "breakfast",
			Ingredients: []string{"flour", "eggs"}, AvailableDays: []string{"Daily"}, MealPeriod: "breakfast",
		},
	}
}

type testEnv struct {
	router   *mux.Router
	profiles database.ProfileStore
	prefs    *preferences.Engine
}

type envOption func(*envConfig)

type envConfig struct {
	profiles database.ProfileStore
	vision   ai.VisionAnalyzer
	jobs     JobEnqueuer
}

func withProfiles(store database.ProfileStore) envOption {
	return func(c *envConfig) { c.profiles = store }
}

func withVision(v ai.VisionAnalyzer) envOption {
	return func(c *envConfig) { c.vision = v }
}

func withJobs(j JobEnqueuer) envOption {
	return func(c *envConfig) { c.jobs = j }
}

// newTestEnv wires every handler over in-memory stores, the way the server does.
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := &envConfig{
		profiles: database.NewMemoryProfileStore(),
		vision:   &mockVision{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	log := zap.NewNop()
	menu := database.NewMemoryMenuStore(sampleMenu())
	prefs := preferences.NewEngine(cfg.profiles, log)

	r := mux.NewRouter()
	NewAnalysisHandler(cfg.vision, cfg.jobs, log).RegisterRoutes(r)
	NewUserHandler(prefs, log).RegisterRoutes(r)
	NewRecommendationHandler(
		recommend.NewEngine(cfg.profiles, log),
		matching.NewEngine(cfg.profiles, menu, log),
		MenuDefaults{DiningHall: "North Campus Dining", MealPeriod: "lunch"},
		log,
	).RegisterRoutes(r)
	NewDiningHandler(menu, log).RegisterRoutes(r)
	NewAdminHandler(insights.NewAggregator(cfg.profiles, log), log).RegisterRoutes(r.PathPrefix("/api/admin").Subrouter())

	return &testEnv{router: r, profiles: cfg.profiles, prefs: prefs}
}

func (e *testEnv) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

// seedMeal applies the sample meal to userID.
func (e *testEnv) seedMeal(t *testing.T, userID string) {
	t.Helper()
	if _, err := e.prefs.ApplyMeal(context.Background(), userID, sampleAnalysis()); err != nil {
		t.Fatalf("ApplyMeal: %v", err)
	}
}

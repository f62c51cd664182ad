package preferences

import (
	"context"
	"errors"
	"testing"

	"github.com/yashmitb/CleanPlate/internal/models"
)

func TestCreateGetDeleteUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newTestEngine(newMockStore())

	p, err := e.CreateUser(ctx, "frank", " Frank ")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if p.DisplayName != "Frank" || p.MealCount != 0 {
		t.Errorf("unexpected profile %+v", p)
	}
	if _, err := e.CreateUser(ctx, "frank", ""); !errors.Is(err, models.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := e.CreateUser(ctx, "", ""); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	if _, err := e.GetUser(ctx, "frank"); err != nil {
		t.Errorf("GetUser: %v", err)
	}
	if err := e.DeleteUser(ctx, "frank"); err != nil {
		t.Errorf("DeleteUser: %v", err)
	}
	if _, err := e.GetUser(ctx, "frank"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := e.DeleteUser(ctx, "frank"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestHistoryAndSummary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newTestEngine(newMockStore())
	e.SetHistoryLimits(3, 4)

	for i := 0; i < 7; i++ {
		if _, err := e.ApplyMeal(ctx, "gina", analysis([]string{"rice"}, []string{}, "20%")); err != nil {
			t.Fatalf("ApplyMeal: %v", err)
		}
	}

	tests := []struct {
		name   string
		limit  int
		wantN  int
		lastID string
	}{
		{name: "default limit", limit: 0, wantN: 3, lastID: "meal-7"},
		{name: "explicit limit", limit: 2, wantN: 2, lastID: "meal-7"},
		{name: "capped limit", limit: 50, wantN: 4, lastID: "meal-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meals, err := e.History(ctx, "gina", tt.limit)
			if err != nil {
				t.Fatalf("History: %v", err)
			}
			if len(meals) != tt.wantN {
				t.Fatalf("got %d meals, want %d", len(meals), tt.wantN)
			}
			if meals[len(meals)-1].MealID != tt.lastID {
				t.Errorf("last meal = %s, want %s", meals[len(meals)-1].MealID, tt.lastID)
			}
		})
	}

	s, err := e.Summary(ctx, "gina")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.TotalMealsAnalyzed != 7 || len(s.RecentMeals) != 5 || s.AverageWastePercentage != 20 {
		t.Errorf("unexpected summary: total=%d recent=%d avg=%v", s.TotalMealsAnalyzed, len(s.RecentMeals), s.AverageWastePercentage)
	}

	if _, err := e.History(ctx, "nobody", 5); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

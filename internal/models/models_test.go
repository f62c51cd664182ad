package models

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTitleCase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"chicken", "Chicken"},
		{"sweet potato fries", "Sweet Potato Fries"},
		{"mac-and-cheese", "Mac-And-Cheese"},
		{"BROCCOLI", "Broccoli"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TitleCase(tt.in); got != tt.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRound1(t *testing.T) {
	t.Parallel()

	if got := Round1(66.66666); got != 66.7 {
		t.Errorf("Round1 = %v", got)
	}
	if got := Round1(75); got != 75 {
		t.Errorf("Round1 = %v", got)
	}
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", NewValidationError("user_id", "is required"))
	if !errors.Is(err, ErrValidation) {
		t.Error("expected errors.Is to match ErrValidation")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("validation error must not match ErrNotFound")
	}
	if got := err.Error(); got != "wrapped: validation failed: user_id: is required" {
		t.Errorf("Error() = %q", got)
	}
}

func TestMenuItemServedIn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		item   MenuItem
		hall   string
		period string
		want   bool
	}{
		{name: "hall and period match", item: MenuItem{DiningHall: "North", MealPeriod: "lunch"}, hall: "North", period: "lunch", want: true},
		{name: "period case-insensitive", item: MenuItem{DiningHall: "North", MealPeriod: "Lunch"}, hall: "North", period: "lunch", want: true},
		{name: "daily item any period", item: MenuItem{DiningHall: "North", MealPeriod: "dinner", AvailableDays: []string{"Daily"}}, hall: "North", period: "breakfast", want: true},
		{name: "wrong period", item: MenuItem{DiningHall: "North", MealPeriod: "dinner", AvailableDays: []string{"Monday"}}, hall: "North", period: "lunch", want: false},
		{name: "wrong hall", item: MenuItem{DiningHall: "South", MealPeriod: "lunch", AvailableDays: []string{"Daily"}}, hall: "North", period: "lunch", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.item.ServedIn(tt.hall, tt.period); got != tt.want {
				t.Errorf("ServedIn = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecentMeals(t *testing.T) {
	t.Parallel()

	p := NewUserProfile("u", "", time.Now())
	for i := 0; i < 5; i++ {
		p.MealHistory = append(p.MealHistory, MealRecord{MealID: fmt.Sprint(i)})
	}
	got := p.RecentMeals(2)
	if len(got) != 2 || got[0].MealID != "3" || got[1].MealID != "4" {
		t.Errorf("RecentMeals(2) = %+v", got)
	}
	if len(p.RecentMeals(0)) != 5 || len(p.RecentMeals(10)) != 5 {
		t.Error("non-positive or oversized limits should return the full history")
	}
}

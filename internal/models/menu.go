package models

import "strings"

// DailyAvailability marks an item offered in every meal period.
const DailyAvailability = "Daily"

// Nutrition is the per-serving nutrition panel of a menu item.
type Nutrition struct {
	Calories int `json:"calories" yaml:"calories"`
	Protein  int `json:"protein" yaml:"protein"`
	Carbs    int `json:"carbs" yaml:"carbs"`
	Fat      int `json:"fat" yaml:"fat"`
}

// MenuItem is one dining-hall item.
type MenuItem struct {
	ItemID        string    `json:"item_id" yaml:"item_id"`
	Name          string    `json:"name" yaml:"name"`
	DiningHall    string    `json:"dining_hall" yaml:"dining_hall"`
	Category      string    `json:"category" yaml:"category"`
	Ingredients   []string  `json:"ingredients" yaml:"ingredients"`
	Tags          []string  `json:"tags" yaml:"tags"`
	Allergens     []string  `json:"allergens" yaml:"allergens"`
	Nutrition     Nutrition `json:"nutrition" yaml:"nutrition"`
	AvailableDays []string  `json:"available_days" yaml:"available_days"`
	MealPeriod    string    `json:"meal_period" yaml:"meal_period"`
}

// ServedIn reports whether the item is offered in hall during period.
func (m *MenuItem) ServedIn(hall, period string) bool {
	if m.DiningHall != hall {
		return false
	}
	if strings.EqualFold(m.MealPeriod, period) {
		return true
	}
	for _, d := range m.AvailableDays {
		if d == DailyAvailability {
			return true
		}
	}
	return false
}

// HasTag reports whether the item carries tag, ignoring case.
func (m *MenuItem) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

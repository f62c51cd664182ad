package database

import (
	"context"
	"errors"
	"testing"

	"github.com/yashmitb/CleanPlate/internal/models"
)

func TestLoadMenuFileSeed(t *testing.T) {
	t.Parallel()

	items, err := LoadMenuFile("../../data/menu_seed.yaml")
	if err != nil {
		t.Fatalf("LoadMenuFile: %v", err)
	}
	if len(items) != 16 {
		t.Fatalf("Expected 16 seed items, got %d", len(items))
	}

	first := items[0]
	if first.ItemID != "protein_001" || first.Name != "Grilled Chicken Breast" || first.Nutrition.Calories != 250 {
		t.Errorf("unexpected first item: %+v", first)
	}
	if first.Allergens == nil {
		t.Error("empty allergen lists should decode as empty, not nil")
	}

	store := NewMemoryMenuStore(items)
	halls, _ := store.DiningHalls(context.Background())
	if len(halls) != 2 || halls[0] != "North Campus Dining" || halls[1] != "South Campus Dining" {
		t.Errorf("DiningHalls = %v", halls)
	}
}

func TestParseMenu(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		want    int
		wantErr bool
	}{
		{
			name: "valid",
			doc:  "items:\n  - {item_id: a, name: Soup, dining_hall: North}\n  - {item_id: b, name: Salad, dining_hall: North}\n",
			want: 2,
		},
		{name: "empty document", doc: "", want: 0},
		{name: "missing id", doc: "items:\n  - {name: Soup, dining_hall: North}\n", wantErr: true},
		{name: "missing hall", doc: "items:\n  - {item_id: a, name: Soup}\n", wantErr: true},
		{name: "duplicate id", doc: "items:\n  - {item_id: a, name: Soup, dining_hall: North}\n  - {item_id: a, name: Salad, dining_hall: North}\n", wantErr: true},
		{name: "not yaml", doc: "items: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items, err := ParseMenu([]byte(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMenu error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(items) != tt.want {
				t.Errorf("got %d items, want %d", len(items), tt.want)
			}
		})
	}
}

func TestParseMenuValidationError(t *testing.T) {
	t.Parallel()

	_, err := ParseMenu([]byte("items:\n  - {item_id: a, dining_hall: North}\n"))
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}
}

package database

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yashmitb/CleanPlate/internal/models"
)

// menuFile is the YAML layout of a menu seed file.
type menuFile struct {
	Items []models.MenuItem `yaml:"items"`
}

// LoadMenuFile reads and validates a YAML menu file.
func LoadMenuFile(path string) ([]models.MenuItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}
	return ParseMenu(data)
}

// ParseMenu decodes a YAML menu document. Every item needs an item_id, a
// name and a dining_hall, and item IDs must be unique.
func ParseMenu(data []byte) ([]models.MenuItem, error) {
	var file menuFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse menu file: %w", err)
	}

	seen := make(map[string]bool, len(file.Items))
	for i := range file.Items {
		item := &file.Items[i]
		item.ItemID = strings.TrimSpace(item.ItemID)
		item.Name = strings.TrimSpace(item.Name)
		item.DiningHall = strings.TrimSpace(item.DiningHall)

		switch {
		case item.ItemID == "":
			return nil, fmt.Errorf("menu item %d: %w", i, models.NewValidationError("item_id", "is required"))
		case item.Name == "":
			return nil, fmt.Errorf("menu item %q: %w", item.ItemID, models.NewValidationError("name", "is required"))
		case item.DiningHall == "":
			return nil, fmt.Errorf("menu item %q: %w", item.ItemID, models.NewValidationError("dining_hall", "is required"))
		case seen[item.ItemID]:
			return nil, fmt.Errorf("menu item %q: %w", item.ItemID, models.NewValidationError("item_id", "is duplicated"))
		}
		seen[item.ItemID] = true

		item.Ingredients = nonNil(item.Ingredients)
		item.Tags = nonNil(item.Tags)
		item.Allergens = nonNil(item.Allergens)
		item.AvailableDays = nonNil(item.AvailableDays)
	}
	return file.Items, nil
}

package database

import (
	"context"

	"github.com/yashmitb/CleanPlate/internal/models"
)

// ProfileStore persists user preference documents.
// Upsert replaces the whole document; concurrent writers for the same user
// are last-writer-wins.
type ProfileStore interface {
	// Get returns models.ErrNotFound when the user does not exist.
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	// Create returns models.ErrAlreadyExists when the user exists.
	Create(ctx context.Context, profile *models.UserProfile) error
	Upsert(ctx context.Context, profile *models.UserProfile) error
	// Delete returns models.ErrNotFound when the user does not exist.
	Delete(ctx context.Context, userID string) error
	// ListDislikes returns the disliked foods of every user, one entry per user.
	ListDislikes(ctx context.Context) ([][]string, error)
}

// MenuStore serves dining-hall menu items.
type MenuStore interface {
	ItemsByHallAndPeriod(ctx context.Context, hall, period string) ([]models.MenuItem, error)
	AllItems(ctx context.Context) ([]models.MenuItem, error)
	DiningHalls(ctx context.Context) ([]string, error)
	UpsertItems(ctx context.Context, items []models.MenuItem) error
}

// RatelimitConfigStore reads and writes the stored API rate.
type RatelimitConfigStore interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

var (
	_ ProfileStore         = (*ProfileRepository)(nil)
	_ ProfileStore         = (*MemoryProfileStore)(nil)
	_ MenuStore            = (*MenuRepository)(nil)
	_ MenuStore            = (*MemoryMenuStore)(nil)
	_ RatelimitConfigStore = (*RatelimitConfigRepository)(nil)
)

package database

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/yashmitb/CleanPlate/internal/models"
)

// MemoryProfileStore keeps profiles in process memory. It backs the memory
// store backend and the tests.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.UserProfile
}

// NewMemoryProfileStore creates an empty in-memory profile store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]*models.UserProfile)}
}

// Get returns a copy of the stored profile.
func (s *MemoryProfileStore) Get(_ context.Context, userID string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %q: %w", userID, models.ErrNotFound)
	}
	return cloneProfile(p), nil
}

// Create stores a new profile.
func (s *MemoryProfileStore) Create(_ context.Context, p *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.UserID]; ok {
		return fmt.Errorf("profile %q: %w", p.UserID, models.ErrAlreadyExists)
	}
	s.profiles[p.UserID] = cloneProfile(p)
	return nil
}

// Upsert replaces the stored profile.
func (s *MemoryProfileStore) Upsert(_ context.Context, p *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[p.UserID] = cloneProfile(p)
	return nil
}

// Delete removes a profile.
func (s *MemoryProfileStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[userID]; !ok {
		return fmt.Errorf("profile %q: %w", userID, models.ErrNotFound)
	}
	delete(s.profiles, userID)
	return nil
}

// ListDislikes returns every user's disliked foods ordered by user ID.
func (s *MemoryProfileStore) ListDislikes(_ context.Context) ([][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([][]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, slices.Clone(s.profiles[id].DislikedFoods))
	}
	return out, nil
}

func cloneProfile(p *models.UserProfile) *models.UserProfile {
	c := *p
	c.LikedFoods = slices.Clone(p.LikedFoods)
	c.DislikedFoods = slices.Clone(p.DislikedFoods)
	c.MealHistory = slices.Clone(p.MealHistory)
	return &c
}

// MemoryMenuStore keeps menu items in process memory.
type MemoryMenuStore struct {
	mu    sync.RWMutex
	items []models.MenuItem
}

// NewMemoryMenuStore creates a menu store seeded with items.
func NewMemoryMenuStore(items []models.MenuItem) *MemoryMenuStore {
	return &MemoryMenuStore{items: slices.Clone(items)}
}

// ItemsByHallAndPeriod returns the items of hall served in period.
func (s *MemoryMenuStore) ItemsByHallAndPeriod(_ context.Context, hall, period string) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.MenuItem{}
	for i := range s.items {
		if s.items[i].ServedIn(hall, period) {
			out = append(out, s.items[i])
		}
	}
	return out, nil
}

// AllItems returns every menu item.
func (s *MemoryMenuStore) AllItems(_ context.Context) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.items), nil
}

// DiningHalls returns the distinct hall names in order.
func (s *MemoryMenuStore) DiningHalls(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	halls := []string{}
	for _, item := range s.items {
		if !seen[item.DiningHall] {
			seen[item.DiningHall] = true
			halls = append(halls, item.DiningHall)
		}
	}
	sort.Strings(halls)
	return halls, nil
}

// UpsertItems inserts or replaces items by item ID.
func (s *MemoryMenuStore) UpsertItems(_ context.Context, items []models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		idx := slices.IndexFunc(s.items, func(m models.MenuItem) bool { return m.ItemID == item.ItemID })
		if idx >= 0 {
			s.items[idx] = item
		} else {
			s.items = append(s.items, item)
		}
	}
	return nil
}

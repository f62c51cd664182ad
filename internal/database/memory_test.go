package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yashmitb/CleanPlate/internal/models"
)

func TestMemoryProfileStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryProfileStore()

	if _, err := store.Get(ctx, "alice"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Get missing user: expected ErrNotFound, got %v", err)
	}

	p := models.NewUserProfile("alice", "Alice", time.Now())
	if err := store.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, p); !errors.Is(err, models.ErrAlreadyExists) {
		t.Fatalf("Create duplicate: expected ErrAlreadyExists, got %v", err)
	}

	got, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.LikedFoods = append(got.LikedFoods, "rice")

	again, _ := store.Get(ctx, "alice")
	if len(again.LikedFoods) != 0 {
		t.Errorf("mutating a returned profile changed the store: %v", again.LikedFoods)
	}

	if err := store.Upsert(ctx, got); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	again, _ = store.Get(ctx, "alice")
	if len(again.LikedFoods) != 1 || again.LikedFoods[0] != "rice" {
		t.Errorf("Upsert not persisted: %v", again.LikedFoods)
	}

	if err := store.Delete(ctx, "alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "alice"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Delete missing: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryProfileStoreListDislikes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryProfileStore()
	for id, dislikes := range map[string][]string{
		"b": {"broccoli"},
		"a": {"broccoli", "tofu"},
		"c": {},
	} {
		p := models.NewUserProfile(id, "", time.Now())
		p.DislikedFoods = dislikes
		if err := store.Upsert(ctx, p); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	got, err := store.ListDislikes(ctx)
	if err != nil {
		t.Fatalf("ListDislikes: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 users, got %d", len(got))
	}
	if len(got[0]) != 2 || len(got[1]) != 1 || len(got[2]) != 0 {
		t.Errorf("unexpected dislikes order or content: %v", got)
	}
}

func TestMemoryMenuStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryMenuStore([]models.MenuItem{
		{ItemID: "1", DiningHall: "North", MealPeriod: "lunch"},
		{ItemID: "2", DiningHall: "North", MealPeriod: "dinner"},
		{ItemID: "3", DiningHall: "North", MealPeriod: "dinner", AvailableDays: []string{"Daily"}},
		{ItemID: "4", DiningHall: "South", MealPeriod: "lunch"},
	})

	items, err := store.ItemsByHallAndPeriod(ctx, "North", "lunch")
	if err != nil {
		t.Fatalf("ItemsByHallAndPeriod: %v", err)
	}
	if len(items) != 2 || items[0].ItemID != "1" || items[1].ItemID != "3" {
		t.Errorf("unexpected items: %+v", items)
	}

	halls, _ := store.DiningHalls(ctx)
	if len(halls) != 2 || halls[0] != "North" || halls[1] != "South" {
		t.Errorf("unexpected halls: %v", halls)
	}

	if err := store.UpsertItems(ctx, []models.MenuItem{
		{ItemID: "1", DiningHall: "East", MealPeriod: "lunch"},
		{ItemID: "5", DiningHall: "East", MealPeriod: "lunch"},
	}); err != nil {
		t.Fatalf("UpsertItems: %v", err)
	}
	all, _ := store.AllItems(ctx)
	if len(all) != 5 {
		t.Errorf("expected 5 items after upsert, got %d", len(all))
	}
	east, _ := store.ItemsByHallAndPeriod(ctx, "East", "lunch")
	if len(east) != 2 {
		t.Errorf("expected 2 East items, got %d", len(east))
	}
}

func TestProfileRepositoryIntegration(t *testing.T) {
	t.Skip("requires a Postgres database; set DATABASE_URL and run against a live instance")
}

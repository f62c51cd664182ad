package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yashmitb/CleanPlate/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := New(url, 5*time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return db
}

func TestProfileRepositoryLifecycle(t *testing.T) {
	db := openTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	userID := "it-" + uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)
	profile := models.NewUserProfile(userID, "Integration", now)
	t.Cleanup(func() { _ = repo.Delete(context.Background(), userID) })

	if err := repo.Create(ctx, profile); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, profile); !errors.Is(err, models.ErrAlreadyExists) {
		t.Fatalf("second Create = %v, want ErrAlreadyExists", err)
	}

	profile.LikedFoods = []string{"rice"}
	profile.DislikedFoods = []string{"broccoli"}
	profile.MealCount = 1
	profile.TotalWastePercentage = 40
	if err := repo.Upsert(ctx, profile); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MealCount != 1 || len(got.DislikedFoods) != 1 || got.DislikedFoods[0] != "broccoli" {
		t.Errorf("unexpected profile: %+v", got)
	}

	dislikes, err := repo.ListDislikes(ctx)
	if err != nil {
		t.Fatalf("ListDislikes: %v", err)
	}
	if len(dislikes) == 0 {
		t.Error("expected at least one dislike list")
	}

	if err := repo.Delete(ctx, userID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, userID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, userID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/models"
)

type mockRatelimitStore struct {
	mu      sync.Mutex
	cfg     *models.RatelimitConfig
	getErr  error
	setCall int
}

var _ database.RatelimitConfigStore = (*mockRatelimitStore)(nil)

func (m *mockRatelimitStore) Get(context.Context) (*models.RatelimitConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg, m.getErr
}

func (m *mockRatelimitStore) Set(_ context.Context, c *models.RatelimitConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCall++
	m.cfg = c
	return nil
}

func newLimitedHandler(t *testing.T, repo database.RatelimitConfigStore, defaultRate string) (*RateLimitReloader, http.Handler) {
	t.Helper()
	store, err := NewLimiterStore(nil)
	if err != nil {
		t.Fatalf("NewLimiterStore: %v", err)
	}
	reloader, err := NewRateLimitReloader(store, repo, defaultRate, zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("NewRateLimitReloader: %v", err)
	}
	h := reloader.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return reloader, h
}

func hit(h http.Handler, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/dining-halls", nil)
	req.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitReloader_UsesStoredRate(t *testing.T) {
	t.Parallel()

	repo := &mockRatelimitStore{cfg: &models.RatelimitConfig{Rate: "2-M"}}
	reloader, h := newLimitedHandler(t, repo, "100-S")

	if reloader.Rate() != "2-M" {
		t.Fatalf("Expected stored rate 2-M, got %s", reloader.Rate())
	}
	for i := 0; i < 2; i++ {
		if code := hit(h, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := hit(h, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after limit, got %d", code)
	}
	if code := hit(h, "10.0.0.2"); code != http.StatusOK {
		t.Errorf("Expected other client unaffected, got %d", code)
	}
}

func TestRateLimitReloader_SavesDefaultWhenMissing(t *testing.T) {
	t.Parallel()

	repo := &mockRatelimitStore{}
	reloader, _ := newLimitedHandler(t, repo, "5-S")

	if reloader.Rate() != "5-S" {
		t.Errorf("Expected default rate, got %s", reloader.Rate())
	}
	if repo.setCall != 1 || repo.cfg == nil || repo.cfg.Rate != "5-S" {
		t.Errorf("Expected default to be saved, got %+v (calls %d)", repo.cfg, repo.setCall)
	}
}

func TestRateLimitReloader_FallsBack(t *testing.T) {
	t.Parallel()

	t.Run("store error", func(t *testing.T) {
		t.Parallel()
		reloader, _ := newLimitedHandler(t, &mockRatelimitStore{getErr: errors.New("db down")}, "7-S")
		if reloader.Rate() != "7-S" {
			t.Errorf("Expected default rate, got %s", reloader.Rate())
		}
	})

	t.Run("unparsable stored rate", func(t *testing.T) {
		t.Parallel()
		reloader, _ := newLimitedHandler(t, &mockRatelimitStore{cfg: &models.RatelimitConfig{Rate: "lots"}}, "7-S")
		if reloader.Rate() != "7-S" {
			t.Errorf("Expected default rate, got %s", reloader.Rate())
		}
	})

	t.Run("no config store", func(t *testing.T) {
		t.Parallel()
		reloader, _ := newLimitedHandler(t, nil, "")
		if reloader.Rate() != defaultRatelimitRate {
			t.Errorf("Expected built-in default, got %s", reloader.Rate())
		}
	})
}

func TestNewRateLimitReloader_RejectsBadDefault(t *testing.T) {
	t.Parallel()

	store, _ := NewLimiterStore(nil)
	if _, err := NewRateLimitReloader(store, nil, "fast", zap.NewNop(), 0); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if _, err := NewRateLimitReloader(nil, nil, "5-S", zap.NewNop(), 0); err == nil {
		t.Error("Expected error without store")
	}
}

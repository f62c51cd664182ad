package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/yashmitb/CleanPlate/internal/database"
)

func TestCreateUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	w := env.do(newTestRequest(http.MethodPost, "/api/user/create", map[string]string{"user_id": "u1", "user_name": "Sam"}))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	if data["user_id"] != "u1" || data["user_name"] != "Sam" {
		t.Errorf("unexpected profile: %v", data)
	}
	if likes, ok := data["liked_foods"].([]any); !ok || len(likes) != 0 {
		t.Errorf("new profile should have an empty liked_foods list, got %v", data["liked_foods"])
	}

	w = env.do(newTestRequest(http.MethodPost, "/api/user/create", map[string]string{"user_id": "u1"}))
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for duplicate user, got %d", w.Code)
	}
}

func TestCreateUserValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body any
	}{
		{name: "missing user_id", body: map[string]string{"user_name": "Sam"}},
		{name: "blank user_id", body: map[string]string{"user_id": "   "}},
		{name: "unknown field", body: map[string]string{"user_id": "u1", "role": "admin"}},
		{name: "user_id too long", body: map[string]string{"user_id": strings.Repeat("x", 201)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)
			w := env.do(newTestRequest(http.MethodPost, "/api/user/create", tt.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetAndDeleteUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedMeal(t, "u1")

	w := env.do(newTestRequest(http.MethodGet, "/api/user/u1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	if data["meal_count"].(float64) != 1 {
		t.Errorf("meal_count = %v, want 1", data["meal_count"])
	}

	if w := env.do(newTestRequest(http.MethodDelete, "/api/user/u1", nil)); w.Code != http.StatusOK {
		t.Fatalf("Expected delete status 200, got %d", w.Code)
	}
	if w := env.do(newTestRequest(http.MethodGet, "/api/user/u1", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}
	if w := env.do(newTestRequest(http.MethodDelete, "/api/user/u1", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 deleting a missing user, got %d", w.Code)
	}
}

func TestUpdatePreferences(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	w := env.do(newTestRequest(http.MethodPost, "/api/user/preferences/update", map[string]any{
		"user_id":        "u1",
		"waste_analysis": sampleAnalysis(),
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Data struct {
			LikedFoods    []string `json:"liked_foods"`
			DislikedFoods []string `json:"disliked_foods"`
			MealCount     int      `json:"meal_count"`
			TotalWaste    float64  `json:"total_waste_percentage"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if strings.Join(body.Data.LikedFoods, ",") != "chicken,rice" {
		t.Errorf("liked_foods = %v", body.Data.LikedFoods)
	}
	if strings.Join(body.Data.DislikedFoods, ",") != "broccoli" {
		t.Errorf("disliked_foods = %v", body.Data.DislikedFoods)
	}
	if body.Data.MealCount != 1 || body.Data.TotalWaste != 30 {
		t.Errorf("meal_count = %d, total_waste_percentage = %v", body.Data.MealCount, body.Data.TotalWaste)
	}
}

func TestUpdatePreferencesRejectsBadInput(t *testing.T) {
	t.Parallel()

	badWaste := sampleAnalysis()
	badWaste.WasteSummary.WasteValue = "enormous"

	missingSummary := sampleAnalysis()
	missingSummary.WasteSummary = nil

	tests := []struct {
		name string
		body any
	}{
		{name: "missing analysis", body: map[string]any{"user_id": "u1"}},
		{name: "missing user", body: map[string]any{"waste_analysis": sampleAnalysis()}},
		{name: "bad waste value", body: map[string]any{"user_id": "u1", "waste_analysis": badWaste}},
		{name: "missing waste summary", body: map[string]any{"user_id": "u1", "waste_analysis": missingSummary}},
		{name: "unknown analysis field", body: map[string]any{"user_id": "u1", "waste_analysis": map[string]any{"calories": 300}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := database.NewMemoryProfileStore()
			env := newTestEnv(t, withProfiles(store))
			w := env.do(newTestRequest(http.MethodPost, "/api/user/preferences/update", tt.body))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body.String())
			}
			if w := env.do(newTestRequest(http.MethodGet, "/api/user/u1", nil)); w.Code != http.StatusNotFound {
				t.Error("rejected update must not create a profile")
			}
		})
	}
}

func TestUpdatePreferencesStorageFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, withProfiles(&failingProfileStore{database.NewMemoryProfileStore()}))
	w := env.do(newTestRequest(http.MethodPost, "/api/user/preferences/update", map[string]any{
		"user_id":        "u1",
		"waste_analysis": sampleAnalysis(),
	}))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestSummaryAndHistory(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for i := 0; i < 7; i++ {
		env.seedMeal(t, "u1")
	}

	w := env.do(newTestRequest(http.MethodGet, "/api/user/u1/summary", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var summary struct {
		Data struct {
			TotalMeals  int              `json:"total_meals_analyzed"`
			Average     float64          `json:"average_waste_percentage"`
			RecentMeals []map[string]any `json:"recent_meals"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&summary); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if summary.Data.TotalMeals != 7 || len(summary.Data.RecentMeals) != 5 || summary.Data.Average != 30 {
		t.Errorf("unexpected summary: %+v", summary.Data)
	}

	tests := []struct {
		query  string
		status int
		count  int
	}{
		{query: "", status: http.StatusOK, count: 7},
		{query: "?limit=3", status: http.StatusOK, count: 3},
		{query: "?limit=0", status: http.StatusBadRequest},
		{query: "?limit=abc", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := env.do(newTestRequest(http.MethodGet, "/api/user/u1/history"+tt.query, nil))
		if w.Code != tt.status {
			t.Errorf("history%s: expected status %d, got %d", tt.query, tt.status, w.Code)
			continue
		}
		if tt.status != http.StatusOK {
			continue
		}
		data := decodeBody(t, w)["data"].(map[string]any)
		if int(data["count"].(float64)) != tt.count {
			t.Errorf("history%s: count = %v, want %d", tt.query, data["count"], tt.count)
		}
	}

	if w := env.do(newTestRequest(http.MethodGet, "/api/user/ghost/summary", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown user summary, got %d", w.Code)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/yashmitb/CleanPlate/internal/database"
)

func TestRecommendations(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedMeal(t, "u1")

	w := env.do(newTestRequest(http.MethodGet, "/api/user/u1/recommendations", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body struct {
		Data RecommendationsResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	recs := body.Data.Recommendations
	if len(recs) != 2 {
		t.Fatalf("Expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].Name != "Chicken" || recs[0].MatchPercentage != 100 {
		t.Errorf("unexpected first recommendation: %+v", recs[0])
	}

	w = env.do(newTestRequest(http.MethodGet, "/api/user/u1/recommendations?limit=1", nil))
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Data.Recommendations) != 1 {
		t.Errorf("limit=1 returned %d recommendations", len(body.Data.Recommendations))
	}
}

func TestReadViewsDegradeToEmpty(t *testing.T) {
	t.Parallel()

	paths := []struct {
		path string
		key  string
	}{
		{path: "/api/user/ghost/recommendations", key: "recommendations"},
		{path: "/api/user/ghost/dislikes", key: "disliked_foods"},
		{path: "/api/user/ghost/matched-items", key: "matched_items"},
	}

	stores := []struct {
		name  string
		store database.ProfileStore
	}{
		{name: "unknown user", store: database.NewMemoryProfileStore()},
		{name: "storage down", store: &failingProfileStore{database.NewMemoryProfileStore()}},
	}

	for _, s := range stores {
		for _, p := range paths {
			t.Run(s.name+" "+p.key, func(t *testing.T) {
				t.Parallel()

				env := newTestEnv(t, withProfiles(s.store))
				w := env.do(newTestRequest(http.MethodGet, p.path, nil))
				if w.Code != http.StatusOK {
					t.Fatalf("Expected status 200, got %d", w.Code)
				}
				data := decodeBody(t, w)["data"].(map[string]any)
				list, ok := data[p.key].([]any)
				if !ok || len(list) != 0 {
					t.Errorf("%s = %v, want an empty list", p.key, data[p.key])
				}
			})
		}
	}
}

func TestRecommendationsRejectsBadLimit(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.do(newTestRequest(http.MethodGet, "/api/user/u1/recommendations?limit=-1", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestDislikes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedMeal(t, "u1")
	env.seedMeal(t, "u1")

	w := env.do(newTestRequest(http.MethodGet, "/api/user/u1/dislikes", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body struct {
		Data DislikesResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Data.Dislikes) != 1 {
		t.Fatalf("Expected 1 dislike, got %+v", body.Data.Dislikes)
	}
	d := body.Data.Dislikes[0]
	if d.Name != "Broccoli" || d.Frequency != 2 || d.LastSeen == nil {
		t.Errorf("unexpected dislike: %+v", d)
	}
}

func TestMatchedItems(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedMeal(t, "u1")

	tests := []struct {
		name      string
		query     string
		wantHall  string
		wantIDs   []string
		wantFirst float64
	}{
		{name: "defaults", query: "", wantHall: "North Campus Dining", wantIDs: []string{"n1", "n2"}, wantFirst: 95},
		{name: "explicit hall and period", query: "?dining_hall=South+Commons&meal_period=breakfast", wantHall: "South Commons", wantIDs: []string{"s1"}},
		{name: "limit", query: "?limit=1", wantHall: "North Campus Dining", wantIDs: []string{"n1"}, wantFirst: 95},
		{name: "unknown hall", query: "?dining_hall=Nowhere", wantHall: "Nowhere", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := env.do(newTestRequest(http.MethodGet, "/api/user/u1/matched-items"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			var body struct {
				Data MatchedItemsResponse `json:"data"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body.Data.DiningHall != tt.wantHall {
				t.Errorf("dining_hall = %q, want %q", body.Data.DiningHall, tt.wantHall)
			}
			if len(body.Data.Items) != len(tt.wantIDs) {
				t.Fatalf("got %d items, want %v", len(body.Data.Items), tt.wantIDs)
			}
			for i, id := range tt.wantIDs {
				if body.Data.Items[i].Item.ItemID != id {
					t.Errorf("item %d = %s, want %s", i, body.Data.Items[i].Item.ItemID, id)
				}
			}
			if tt.wantFirst != 0 && body.Data.Items[0].MatchScore != tt.wantFirst {
				t.Errorf("first score = %v, want %v", body.Data.Items[0].MatchScore, tt.wantFirst)
			}
		})
	}
}

func TestDiningHalls(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	w := env.do(newTestRequest(http.MethodGet, "/api/dining-halls", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var halls struct {
		Data DiningHallsResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&halls); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(halls.Data.DiningHalls) != 2 || halls.Data.DiningHalls[0] != "North Campus Dining" || halls.Data.DiningHalls[1] != "South Commons" {
		t.Errorf("dining_halls = %v", halls.Data.DiningHalls)
	}

	tests := []struct {
		path  string
		count int
	}{
		{path: "/api/dining-halls/North%20Campus%20Dining/menu", count: 2},
		{path: "/api/dining-halls/North%20Campus%20Dining/menu?meal_period=lunch", count: 2},
		{path: "/api/dining-halls/North%20Campus%20Dining/menu?meal_period=breakfast", count: 1},
		{path: "/api/dining-halls/Nowhere/menu", count: 0},
	}
	for _, tt := range tests {
		w := env.do(newTestRequest(http.MethodGet, tt.path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", tt.path, w.Code)
			continue
		}
		var menu struct {
			Data MenuResponse `json:"data"`
		}
		if err := json.NewDecoder(w.Body).Decode(&menu); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(menu.Data.Items) != tt.count {
			t.Errorf("%s: got %d items, want %d", tt.path, len(menu.Data.Items), tt.count)
		}
	}
}

func TestAdminReports(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedMeal(t, "u1")
	env.seedMeal(t, "u2")

	w := env.do(newTestRequest(http.MethodGet, "/api/admin/waste-insights?limit=5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var insights struct {
		Data struct {
			Top []struct {
				FoodItem          string  `json:"food_item"`
				DislikeCount      int     `json:"dislike_count"`
				PercentageOfUsers float64 `json:"percentage_of_users"`
				Severity          string  `json:"severity"`
			} `json:"top_disliked_items"`
			Summary struct {
				TotalUsers int `json:"total_users_analyzed"`
			} `json:"summary"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&insights); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if insights.Data.Summary.TotalUsers != 2 || len(insights.Data.Top) != 1 {
		t.Fatalf("unexpected report: %+v", insights.Data)
	}
	top := insights.Data.Top[0]
	if top.FoodItem != "Broccoli" || top.DislikeCount != 2 || top.PercentageOfUsers != 100 || top.Severity != "critical" {
		t.Errorf("unexpected insight: %+v", top)
	}

	w = env.do(newTestRequest(http.MethodGet, "/api/admin/waste-by-category", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	if data["insight"] != "Most problematic category: vegetable" {
		t.Errorf("insight = %v", data["insight"])
	}
}

func TestAdminReportsDegradeOnStorageFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, withProfiles(&failingProfileStore{database.NewMemoryProfileStore()}))

	tests := []struct {
		path      string
		listField string
	}{
		{path: "/api/admin/waste-insights", listField: "top_disliked_items"},
		{path: "/api/admin/waste-by-category", listField: "category_breakdown"},
	}

	for _, tt := range tests {
		w := env.do(newTestRequest(http.MethodGet, tt.path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", tt.path, w.Code)
			continue
		}

		data, ok := decodeBody(t, w)["data"].(map[string]any)
		if !ok {
			t.Errorf("%s: expected a data object", tt.path)
			continue
		}
		if list, ok := data[tt.listField].([]any); !ok || len(list) != 0 {
			t.Errorf("%s: expected empty %s, got %v", tt.path, tt.listField, data[tt.listField])
		}
		if data["error"] != reportUnavailable {
			t.Errorf("%s: error marker = %v", tt.path, data["error"])
		}
	}
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/services/matching"
	"github.com/yashmitb/CleanPlate/internal/services/recommend"
)

// MenuDefaults names the hall and period used when a request omits them.
type MenuDefaults struct {
	DiningHall string
	MealPeriod string
}

// RecommendationHandler serves the per-user read views. A missing user or an
// unavailable store yields an empty list rather than an error.
type RecommendationHandler struct {
	recommender *recommend.Engine
	matcher     *matching.Engine
	defaults    MenuDefaults
	logger      *zap.Logger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommender *recommend.Engine, matcher *matching.Engine, defaults MenuDefaults, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recommender: recommender,
		matcher:     matcher,
		defaults:    defaults,
		logger:      logger,
	}
}

// RegisterRoutes registers recommendation routes
func (h *RecommendationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/user/{user_id}/recommendations", h.Recommendations).Methods("GET")
	r.HandleFunc("/api/user/{user_id}/dislikes", h.Dislikes).Methods("GET")
	r.HandleFunc("/api/user/{user_id}/matched-items", h.MatchedItems).Methods("GET")
}

// RecommendationsResponse lists ranked liked foods.
type RecommendationsResponse struct {
	UserID          string                  `json:"user_id"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// DislikesResponse lists disliked foods with their waste frequency.
type DislikesResponse struct {
	UserID   string                `json:"user_id"`
	Dislikes []models.DislikedFood `json:"disliked_foods"`
}

// MatchedItemsResponse lists menu items scored for a user.
type MatchedItemsResponse struct {
	UserID     string               `json:"user_id"`
	DiningHall string               `json:"dining_hall"`
	MealPeriod string               `json:"meal_period"`
	Items      []models.MatchedItem `json:"matched_items"`
}

// Recommendations ranks the user's liked foods.
func (h *RecommendationHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, h.logger, "recommendations", err)
		return
	}

	userID := mux.Vars(r)["user_id"]
	recs, err := h.recommender.Recommend(r.Context(), userID, limit)
	if err != nil {
		if !degraded(h.logger, "recommendations", userID, err) {
			writeError(w, r, h.logger, "recommendations", err)
			return
		}
		recs = []models.Recommendation{}
	}
	respondJSON(w, http.StatusOK, RecommendationsResponse{UserID: userID, Recommendations: recs})
}

// Dislikes reports the user's disliked foods.
func (h *RecommendationHandler) Dislikes(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	dislikes, err := h.recommender.Dislikes(r.Context(), userID)
	if err != nil {
		if !degraded(h.logger, "dislikes", userID, err) {
			writeError(w, r, h.logger, "dislikes", err)
			return
		}
		dislikes = []models.DislikedFood{}
	}
	respondJSON(w, http.StatusOK, DislikesResponse{UserID: userID, Dislikes: dislikes})
}

// MatchedItems scores the menu of a hall and period against the user.
func (h *RecommendationHandler) MatchedItems(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, h.logger, "matched_items", err)
		return
	}

	hall := strings.TrimSpace(r.URL.Query().Get("dining_hall"))
	if hall == "" {
		hall = h.defaults.DiningHall
	}
	period := strings.TrimSpace(r.URL.Query().Get("meal_period"))
	if period == "" {
		period = h.defaults.MealPeriod
	}

	userID := mux.Vars(r)["user_id"]
	items, err := h.matcher.Match(r.Context(), userID, hall, period, limit)
	if err != nil {
		if !degraded(h.logger, "matched_items", userID, err) {
			writeError(w, r, h.logger, "matched_items", err)
			return
		}
		items = []models.MatchedItem{}
	}
	respondJSON(w, http.StatusOK, MatchedItemsResponse{
		UserID:     userID,
		DiningHall: hall,
		MealPeriod: period,
		Items:      items,
	})
}

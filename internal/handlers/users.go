package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/models"
	"github.com/yashmitb/CleanPlate/internal/services/preferences"
	"github.com/yashmitb/CleanPlate/internal/validation"
)

// UserHandler serves user profiles and preference updates.
type UserHandler struct {
	engine *preferences.Engine
	logger *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(engine *preferences.Engine, logger *zap.Logger) *UserHandler {
	return &UserHandler{engine: engine, logger: logger}
}

// RegisterRoutes registers user routes. The static paths are registered
// before the {user_id} patterns.
func (h *UserHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/user/create", h.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/preferences/update", h.UpdatePreferences).Methods("POST")
	r.HandleFunc("/api/user/{user_id}", h.GetUser).Methods("GET")
	r.HandleFunc("/api/user/{user_id}", h.DeleteUser).Methods("DELETE")
	r.HandleFunc("/api/user/{user_id}/summary", h.Summary).Methods("GET")
	r.HandleFunc("/api/user/{user_id}/history", h.History).Methods("GET")
}

// CreateUserRequest is the body of POST /api/user/create.
type CreateUserRequest struct {
	UserID   string `json:"user_id" validate:"required,max=200"`
	UserName string `json:"user_name" validate:"max=200"`
}

// UpdatePreferencesRequest is the body of POST /api/user/preferences/update.
type UpdatePreferencesRequest struct {
	UserID        string                `json:"user_id" validate:"required,max=200"`
	WasteAnalysis *models.WasteAnalysis `json:"waste_analysis"`
}

// HistoryResponse lists a user's recent meals.
type HistoryResponse struct {
	UserID string              `json:"user_id"`
	Meals  []models.MealRecord `json:"meals"`
	Count  int                 `json:"count"`
}

// CreateUser creates an empty profile.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.UserName = validation.SanitizeText(req.UserName)
	if err := validation.Struct(req); err != nil {
		writeError(w, r, h.logger, "create_user", err)
		return
	}

	profile, err := h.engine.CreateUser(r.Context(), req.UserID, req.UserName)
	if err != nil {
		writeError(w, r, h.logger, "create_user", err)
		return
	}
	respondJSON(w, http.StatusCreated, profile)
}

// GetUser returns a profile.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.engine.GetUser(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		writeError(w, r, h.logger, "get_user", err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// DeleteUser removes a profile and its meal history.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if err := h.engine.DeleteUser(r.Context(), userID); err != nil {
		writeError(w, r, h.logger, "delete_user", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"user_id": userID, "status": "deleted"})
}

// UpdatePreferences merges an analysed meal into the user's profile.
func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req UpdatePreferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, r, h.logger, "update_preferences", err)
		return
	}

	profile, err := h.engine.ApplyMeal(r.Context(), req.UserID, req.WasteAnalysis)
	if err != nil {
		writeError(w, r, h.logger, "update_preferences", err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// Summary returns the profile overview.
func (h *UserHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engine.Summary(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		writeError(w, r, h.logger, "user_summary", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// History returns the user's most recent meals, oldest first.
func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, h.logger, "user_history", err)
		return
	}

	userID := mux.Vars(r)["user_id"]
	meals, err := h.engine.History(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, h.logger, "user_history", err)
		return
	}
	respondJSON(w, http.StatusOK, HistoryResponse{UserID: userID, Meals: meals, Count: len(meals)})
}

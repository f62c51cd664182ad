package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/database"
	"github.com/yashmitb/CleanPlate/internal/models"
)

// DiningHandler serves dining halls and their menus.
type DiningHandler struct {
	menu   database.MenuStore
	logger *zap.Logger
}

// NewDiningHandler creates a new dining handler
func NewDiningHandler(menu database.MenuStore, logger *zap.Logger) *DiningHandler {
	return &DiningHandler{menu: menu, logger: logger}
}

// RegisterRoutes registers dining routes
func (h *DiningHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/dining-halls", h.ListHalls).Methods("GET")
	r.HandleFunc("/api/dining-halls/{hall}/menu", h.Menu).Methods("GET")
}

// DiningHallsResponse lists hall names.
type DiningHallsResponse struct {
	DiningHalls []string `json:"dining_halls"`
}

// MenuResponse lists the items of one hall.
type MenuResponse struct {
	DiningHall string            `json:"dining_hall"`
	MealPeriod string            `json:"meal_period,omitempty"`
	Items      []models.MenuItem `json:"items"`
}

// ListHalls returns the distinct hall names, sorted.
func (h *DiningHandler) ListHalls(w http.ResponseWriter, r *http.Request) {
	halls, err := h.menu.DiningHalls(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "dining_halls", err)
		return
	}
	respondJSON(w, http.StatusOK, DiningHallsResponse{DiningHalls: halls})
}

// Menu returns the items of a hall, optionally limited to one meal period.
func (h *DiningHandler) Menu(w http.ResponseWriter, r *http.Request) {
	hall := mux.Vars(r)["hall"]
	period := strings.TrimSpace(r.URL.Query().Get("meal_period"))

	var (
		items []models.MenuItem
		err   error
	)
	if period != "" {
		items, err = h.menu.ItemsByHallAndPeriod(r.Context(), hall, period)
	} else {
		items, err = h.itemsInHall(r, hall)
	}
	if err != nil {
		writeError(w, r, h.logger, "dining_menu", err)
		return
	}
	respondJSON(w, http.StatusOK, MenuResponse{DiningHall: hall, MealPeriod: period, Items: items})
}

func (h *DiningHandler) itemsInHall(r *http.Request, hall string) ([]models.MenuItem, error) {
	all, err := h.menu.AllItems(r.Context())
	if err != nil {
		return nil, err
	}
	items := []models.MenuItem{}
	for _, item := range all {
		if item.DiningHall == hall {
			items = append(items, item)
		}
	}
	return items, nil
}

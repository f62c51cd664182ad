package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/yashmitb/CleanPlate/internal/services/insights"
)

// reportUnavailable marks an admin report built without profile data.
const reportUnavailable = "profile data unavailable"

// AdminHandler serves the population-wide waste reports.
type AdminHandler struct {
	aggregator *insights.Aggregator
	logger     *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(aggregator *insights.Aggregator, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{aggregator: aggregator, logger: logger}
}

// RegisterRoutes registers admin routes on a router that already carries
// the admin authentication middleware.
func (h *AdminHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/waste-insights", h.WasteInsights).Methods("GET")
	r.HandleFunc("/waste-by-category", h.WasteByCategory).Methods("GET")
}

// WasteInsights returns the most disliked foods across all users.
func (h *AdminHandler) WasteInsights(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, h.logger, "waste_insights", err)
		return
	}

	report, err := h.aggregator.WasteInsights(r.Context(), limit)
	if err != nil {
		if !degraded(h.logger, "waste_insights", "", err) {
			writeError(w, r, h.logger, "waste_insights", err)
			return
		}
		report = insights.BuildWasteInsights(nil, limit)
		report.Error = reportUnavailable
	}
	respondJSON(w, http.StatusOK, report)
}

// WasteByCategory returns dislikes grouped by food category.
func (h *AdminHandler) WasteByCategory(w http.ResponseWriter, r *http.Request) {
	report, err := h.aggregator.WasteByCategory(r.Context())
	if err != nil {
		if !degraded(h.logger, "waste_by_category", "", err) {
			writeError(w, r, h.logger, "waste_by_category", err)
			return
		}
		report = insights.BuildCategoryReport(nil)
		report.Error = reportUnavailable
	}
	respondJSON(w, http.StatusOK, report)
}

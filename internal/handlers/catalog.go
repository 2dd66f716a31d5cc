package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"eventhub/internal/models"
	"eventhub/internal/services"
)

// CatalogHandler serves the public event catalog and per-user reads
type CatalogHandler struct {
	catalog         services.CatalogServiceInterface
	recommendations services.RecommendationServiceInterface
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog services.CatalogServiceInterface, recommendations services.RecommendationServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalog:         catalog,
		recommendations: recommendations,
	}
}

// ListEvents handles GET /api/events. ?category=N keeps events of one category.
func (h *CatalogHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	var filter models.EventFilter
	query := r.URL.Query()

	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: limit must be a number", models.ErrInvalidInput))
			return
		}
		filter.Limit = n
	}
	if raw := query.Get("category"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, fmt.Errorf("%w: category must be a category id", models.ErrInvalidInput))
			return
		}
		filter.CategoryID = n
	}

	events, err := h.catalog.UpcomingEvents(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/{eventID}
func (h *CatalogHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	event, err := h.catalog.GetEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Categories handles GET /api/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// Locations handles GET /api/locations
func (h *CatalogHandler) Locations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.catalog.Locations(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

// UserTickets handles GET /api/users/{userID}/tickets
func (h *CatalogHandler) UserTickets(w http.ResponseWriter, r *http.Request) {
	userID, err := urlParamInt(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	tickets, err := h.catalog.UserTickets(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

// Recommendations handles GET /api/recommendations/{userID}
func (h *CatalogHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := urlParamInt(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	events, err := h.recommendations.Recommend(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

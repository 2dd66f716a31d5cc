package handlers

import (
	"net/http"

	"eventhub/internal/middleware"
	"eventhub/internal/models"
	"eventhub/internal/services"
)

// OrganizerEventHandler lets signed-in organizers create, edit and delete events
type OrganizerEventHandler struct {
	catalog services.CatalogServiceInterface
}

// NewOrganizerEventHandler creates a new organizer event handler
func NewOrganizerEventHandler(catalog services.CatalogServiceInterface) *OrganizerEventHandler {
	return &OrganizerEventHandler{catalog: catalog}
}

// CreateEvent handles POST /api/events. The caller becomes the event's organizer.
func (h *OrganizerEventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req models.EventCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	event, err := h.catalog.CreateEvent(r.Context(), &req, user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PUT /api/events/{eventID}
func (h *OrganizerEventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.EventCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	event, err := h.catalog.UpdateEvent(r.Context(), eventID, &req, user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /api/events/{eventID}
func (h *OrganizerEventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.catalog.DeleteEvent(r.Context(), eventID, user); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

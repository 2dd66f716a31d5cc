package handlers

import (
	"net/http"

	"eventhub/internal/middleware"
	"eventhub/internal/models"
	"eventhub/internal/services"
)

// PurchaseHandler exposes the purchase, booking and admission endpoints
type PurchaseHandler struct {
	reservations services.ReservationServiceInterface
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(reservations services.ReservationServiceInterface) *PurchaseHandler {
	return &PurchaseHandler{reservations: reservations}
}

// AvailabilityResponse reports an event's sold and remaining tickets
type AvailabilityResponse struct {
	EventID   int  `json:"event_id"`
	Capacity  int  `json:"capacity"`
	Sold      int  `json:"sold"`
	Remaining int  `json:"remaining"`
	Unbounded bool `json:"unbounded"`
}

// CreateIntent handles POST /api/payments/create
func (h *PurchaseHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req models.PurchaseIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.BuyerID = user.ID

	intent, err := h.reservations.CreateIntent(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, intent)
}

// Confirm handles POST /api/payments/confirm
func (h *PurchaseHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req models.ConfirmPurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.BuyerID = user.ID
	if req.BuyerEmail == "" {
		req.BuyerEmail = user.Email
	}
	if req.BuyerName == "" {
		req.BuyerName = user.FullName()
	}

	result, err := h.reservations.Confirm(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Book handles POST /api/tickets/book
func (h *PurchaseHandler) Book(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req models.BookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.BuyerID = user.ID
	if req.BuyerEmail == "" {
		req.BuyerEmail = user.Email
	}
	if req.BuyerName == "" {
		req.BuyerName = user.FullName()
	}

	result, err := h.reservations.Book(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Scan handles POST /api/tickets/scan
func (h *PurchaseHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req models.ScanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	ticket, err := h.reservations.Scan(r.Context(), req.Reference)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// Availability handles GET /api/events/{eventID}/availability
func (h *PurchaseHandler) Availability(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	reading, err := h.reservations.Availability(r.Context(), eventID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AvailabilityResponse{
		EventID:   reading.EventID,
		Capacity:  reading.Capacity,
		Sold:      reading.Sold,
		Remaining: reading.Left.Remaining,
		Unbounded: reading.Left.Unbounded,
	})
}

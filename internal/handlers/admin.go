package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"eventhub/internal/services"
)

// AdminHandler serves the staff reporting endpoints
type AdminHandler struct {
	analytics services.AnalyticsServiceInterface
	now       func() time.Time
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(analytics services.AnalyticsServiceInterface) *AdminHandler {
	return &AdminHandler{
		analytics: analytics,
		now:       time.Now,
	}
}

// BIReport handles GET /api/admin/bi?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *AdminHandler) BIReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dateRange := services.ParseDateRange(q.Get("start"), q.Get("end"), h.now())

	report, err := h.analytics.BIReport(r.Context(), dateRange)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Stats handles GET /api/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.AdminStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ExportAttendees handles GET /api/admin/events/{eventID}/attendees.csv
func (h *AdminHandler) ExportAttendees(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "eventID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	csvData, err := h.analytics.ExportAttendees(r.Context(), eventID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"event_%d_attendees.csv\"", eventID))
	w.Header().Set("Content-Length", strconv.Itoa(len(csvData)))
	if _, err := w.Write(csvData); err != nil {
		log.Printf("Failed to write attendee export for event %d: %v", eventID, err)
	}
}

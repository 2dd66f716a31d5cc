package handlers

import (
	"io"
	"net/http"

	"eventhub/internal/models"
	"eventhub/internal/services"
)

// PaymentHistoryResponse is a payment together with its transaction log
type PaymentHistoryResponse struct {
	Payment *models.Payment          `json:"payment"`
	Log     []*models.TransactionLog `json:"log"`
}

// PaymentHandler receives payment provider callbacks
type PaymentHandler struct {
	payments services.PaymentServiceInterface
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments services.PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Webhook handles POST /api/payments/webhook
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "webhook body too large"})
		return
	}

	entry, err := h.payments.RecordWebhook(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"log_id": entry.ID})
}

// History handles GET /api/admin/payments/{paymentID}
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	paymentID, err := urlParamInt(r, "paymentID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	payment, logs, err := h.payments.History(r.Context(), paymentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if logs == nil {
		logs = []*models.TransactionLog{}
	}
	writeJSON(w, http.StatusOK, PaymentHistoryResponse{Payment: payment, Log: logs})
}

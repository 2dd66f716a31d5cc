package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"eventhub/internal/models"
	"eventhub/internal/services"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the JSON body of every failed API call
type ErrorResponse struct {
	Error     string `json:"error"`
	Reason    string `json:"reason,omitempty"`
	Owned     *int   `json:"owned,omitempty"`
	Remaining *int   `json:"remaining,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// decodeJSON reads a JSON request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", models.ErrInvalidInput, err)
	}
	return nil
}

// urlParamInt parses a positive integer URL parameter
func urlParamInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", models.ErrInvalidInput, name)
	}
	return n, nil
}

// writeError translates service errors into HTTP responses
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, body)
}

func errorResponse(err error) (int, ErrorResponse) {
	var rejection *services.RejectionError
	if errors.As(err, &rejection) {
		body := ErrorResponse{Error: rejection.Error(), Reason: string(rejection.Reason)}
		switch rejection.Reason {
		case services.ReasonInvalidQuantity:
			return http.StatusBadRequest, body
		case services.ReasonPerUserLimitExceeded:
			owned := rejection.Owned
			body.Owned = &owned
		case services.ReasonInsufficientCapacity:
			if !rejection.Capacity.Unbounded && !rejection.Conflict {
				remaining := rejection.Capacity.Remaining
				body.Remaining = &remaining
			}
		}
		return http.StatusConflict, body
	}

	switch {
	case errors.Is(err, models.ErrInvalidTicketState):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Reason: "invalid_state"}
	case errors.Is(err, models.ErrInvalidQuantity):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Reason: string(services.ReasonInvalidQuantity)}
	case errors.Is(err, models.ErrInvalidReference):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Reason: "invalid_reference"}
	case errors.Is(err, models.ErrAmountMismatch):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Reason: "amount_mismatch"}
	case errors.Is(err, models.ErrIntentMismatch):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Reason: "intent_mismatch"}
	case errors.Is(err, models.ErrAlreadySettled):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Reason: string(services.ReasonAlreadySettled)}
	case errors.Is(err, models.ErrEventHasSales):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Reason: "event_has_sales"}
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: err.Error(), Reason: "forbidden"}
	case models.IsValidation(err):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Reason: "invalid_request"}
	case models.IsNotFound(err):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Reason: "not_found"}
	case errors.Is(err, models.ErrDuplicateEntry):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Reason: "duplicate"}
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials", Reason: "unauthorized"}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

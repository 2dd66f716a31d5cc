package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventhub/internal/models"
	"eventhub/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	buyer = &models.User{ID: 7, Username: "amira", Email: "amira@example.com", FirstName: "Amira", LastName: "Ben Salah"}
	staff = &models.User{ID: 1, Username: "adminevent", IsStaff: true}
)

func (api *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestPurchaseHandler_CreateIntent(t *testing.T) {
	api := newTestAPI(buyer)
	api.reservations.On("CreateIntent", mock.Anything, mock.MatchedBy(func(req *models.PurchaseIntentRequest) bool {
		return req.BuyerID == 7 && req.EventID == 3 && req.Quantity == 2
	})).Return(&services.IntentResult{PaymentID: 11, Amount: decimal.NewFromInt(40), SessionToken: "ps_token"}, nil)

	// buyer_id in the body is ignored, the session decides
	rr := api.do("POST", "/api/payments/create", `{"event_id":3,"quantity":2,"buyer_id":99}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"payment_id":11,"amount":"40","session_token":"ps_token"}`, rr.Body.String())
	api.reservations.AssertExpectations(t)
}

func TestPurchaseHandler_RequiresSession(t *testing.T) {
	api := newTestAPI(nil)

	for _, path := range []string{"/api/payments/create", "/api/payments/confirm", "/api/tickets/book"} {
		rr := api.do("POST", path, `{"event_id":3,"quantity":1}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
	api.reservations.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestPurchaseHandler_MalformedBody(t *testing.T) {
	api := newTestAPI(buyer)

	rr := api.do("POST", "/api/payments/create", `{"event_id":`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rr).Reason)
	api.reservations.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestPurchaseHandler_ConfirmFillsBuyerFromSession(t *testing.T) {
	api := newTestAPI(buyer)
	seat := "1"
	api.reservations.On("Confirm", mock.Anything, mock.MatchedBy(func(req *models.ConfirmPurchaseRequest) bool {
		return req.BuyerID == 7 && req.PaymentID == 11 &&
			req.BuyerEmail == "amira@example.com" && req.BuyerName == "Amira Ben Salah"
	})).Return(&services.ConfirmResult{
		Tickets:  []*models.Ticket{{ID: 1, Reference: "0123456789ABCDEF", SeatNumber: &seat, Status: models.TicketValid}},
		Warnings: []string{"confirmation email could not be sent"},
	}, nil)

	rr := api.do("POST", "/api/payments/confirm", `{"payment_id":11,"event_id":3,"quantity":1}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	var result services.ConfirmResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.Len(t, result.Tickets, 1)
	assert.Equal(t, "0123456789ABCDEF", result.Tickets[0].Reference)
	assert.Equal(t, "1", result.Tickets[0].Seat())
	assert.Equal(t, []string{"confirmation email could not be sent"}, result.Warnings)
}

func TestPurchaseHandler_ConfirmRejections(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantReason    string
		wantOwned     *int
		wantRemaining *int
	}{
		{
			name:       "per user limit",
			err:        &services.RejectionError{Reason: services.ReasonPerUserLimitExceeded, Owned: 4, Requested: 2},
			wantStatus: http.StatusConflict,
			wantReason: "per_user_limit_exceeded",
			wantOwned:  intPtr(4),
		},
		{
			name:          "insufficient capacity",
			err:           &services.RejectionError{Reason: services.ReasonInsufficientCapacity, Requested: 3, Capacity: services.BoundedCapacity(2)},
			wantStatus:    http.StatusConflict,
			wantReason:    "insufficient_capacity",
			wantRemaining: intPtr(2),
		},
		{
			name:       "lost a seat race twice",
			err:        &services.RejectionError{Reason: services.ReasonInsufficientCapacity, Conflict: true},
			wantStatus: http.StatusConflict,
			wantReason: "insufficient_capacity",
		},
		{
			name:       "already settled",
			err:        &services.RejectionError{Reason: services.ReasonAlreadySettled},
			wantStatus: http.StatusConflict,
			wantReason: "already_settled",
		},
		{
			name:       "settled by a concurrent confirmation",
			err:        fmt.Errorf("confirm payment 11: %w", models.ErrAlreadySettled),
			wantStatus: http.StatusConflict,
			wantReason: "already_settled",
		},
		{
			name:       "intent for another purchase",
			err:        fmt.Errorf("%w: intent 11 is not for 2 ticket(s) to event 3", models.ErrIntentMismatch),
			wantStatus: http.StatusBadRequest,
			wantReason: "intent_mismatch",
		},
		{
			name:       "invalid quantity",
			err:        &services.RejectionError{Reason: services.ReasonInvalidQuantity, Requested: 9},
			wantStatus: http.StatusBadRequest,
			wantReason: "invalid_quantity",
		},
		{
			name:       "amount mismatch",
			err:        models.ErrAmountMismatch,
			wantStatus: http.StatusBadRequest,
			wantReason: "amount_mismatch",
		},
		{
			name:       "bad alternate reference",
			err:        models.ErrInvalidReference,
			wantStatus: http.StatusBadRequest,
			wantReason: "invalid_reference",
		},
		{
			name:       "unknown payment",
			err:        models.ErrPaymentNotFound,
			wantStatus: http.StatusNotFound,
			wantReason: "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(buyer)
			api.reservations.On("Confirm", mock.Anything, mock.Anything).Return(nil, tt.err)

			rr := api.do("POST", "/api/payments/confirm", `{"payment_id":11,"event_id":3,"quantity":2}`)

			assert.Equal(t, tt.wantStatus, rr.Code)
			body := decodeError(t, rr)
			assert.Equal(t, tt.wantReason, body.Reason)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.wantOwned, body.Owned)
			assert.Equal(t, tt.wantRemaining, body.Remaining)
		})
	}
}

func TestPurchaseHandler_Book(t *testing.T) {
	api := newTestAPI(buyer)
	api.reservations.On("Book", mock.Anything, mock.MatchedBy(func(req *models.BookRequest) bool {
		return req.BuyerID == 7 && req.EventID == 3 && req.BuyerName == "Door Guest" && req.BuyerEmail == "amira@example.com"
	})).Return(&services.ConfirmResult{Tickets: []*models.Ticket{{ID: 5}}}, nil)

	rr := api.do("POST", "/api/tickets/book", `{"event_id":3,"buyer_name":"Door Guest"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	api.reservations.AssertExpectations(t)
}

func TestPurchaseHandler_Scan(t *testing.T) {
	api := newTestAPI(staff)
	api.reservations.On("Scan", mock.Anything, "ticket:0123456789ABCDEF").
		Return(&models.Ticket{ID: 1, Reference: "0123456789ABCDEF", Status: models.TicketUsed}, nil).Once()
	api.reservations.On("Scan", mock.Anything, "0123456789ABCDEF").
		Return(nil, models.ErrInvalidTicketState).Once()
	api.reservations.On("Scan", mock.Anything, "FFFFFFFFFFFFFFFF").
		Return(nil, models.ErrTicketNotFound).Once()

	rr := api.do("POST", "/api/tickets/scan", `{"reference":"ticket:0123456789ABCDEF"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"used"`)

	rr = api.do("POST", "/api/tickets/scan", `{"reference":"0123456789ABCDEF"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "invalid_state", decodeError(t, rr).Reason)

	rr = api.do("POST", "/api/tickets/scan", `{"reference":"FFFFFFFFFFFFFFFF"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do("POST", "/api/tickets/scan", `{"reference":"ticket: "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	api.reservations.AssertExpectations(t)
}

func TestPurchaseHandler_ScanIsStaffOnly(t *testing.T) {
	api := newTestAPI(buyer)

	rr := api.do("POST", "/api/tickets/scan", `{"reference":"0123456789ABCDEF"}`)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	api.reservations.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything)
}

func TestPurchaseHandler_Availability(t *testing.T) {
	api := newTestAPI(nil)
	api.reservations.On("Availability", mock.Anything, 3).Return(services.LedgerReading{
		EventID: 3, Capacity: 10, Sold: 4, Left: services.BoundedCapacity(6),
	}, nil)
	api.reservations.On("Availability", mock.Anything, 4).Return(services.LedgerReading{
		EventID: 4, Sold: 120, Left: services.UnboundedCapacity(),
	}, nil)
	api.reservations.On("Availability", mock.Anything, 404).Return(services.LedgerReading{}, models.ErrEventNotFound)

	rr := api.do("GET", "/api/events/3/availability", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"event_id":3,"capacity":10,"sold":4,"remaining":6,"unbounded":false}`, rr.Body.String())

	rr = api.do("GET", "/api/events/4/availability", "")
	assert.JSONEq(t, `{"event_id":4,"capacity":0,"sold":120,"remaining":0,"unbounded":true}`, rr.Body.String())

	rr = api.do("GET", "/api/events/404/availability", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do("GET", "/api/events/abc/availability", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func intPtr(n int) *int {
	return &n
}

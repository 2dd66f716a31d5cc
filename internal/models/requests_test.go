package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAltReference(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{
			name: "empty means absent",
			raw:  "   ",
			want: "",
		},
		{
			name: "mixed separators with 26 digits",
			raw:  "1234-5678 9012.3456 7890-1234 56",
			want: "12345678901234567890123456",
		},
		{
			name: "plain 26 digits",
			raw:  "00000000000000000000000001",
			want: "00000000000000000000000001",
		},
		{
			name:    "25 digits",
			raw:     "1234-5678 9012.3456 7890-1234 5",
			wantErr: ErrInvalidReference,
		},
		{
			name:    "27 digits",
			raw:     "123456789012345678901234567",
			wantErr: ErrInvalidReference,
		},
		{
			name:    "no digits at all",
			raw:     "abc-def",
			wantErr: ErrInvalidReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAltReference(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPurchaseIntentRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     PurchaseIntentRequest
		wantErr error
	}{
		{"valid", PurchaseIntentRequest{EventID: 1, Quantity: 3, BuyerID: 7}, nil},
		{"upper bound", PurchaseIntentRequest{EventID: 1, Quantity: 5, BuyerID: 7}, nil},
		{"zero quantity", PurchaseIntentRequest{EventID: 1, Quantity: 0, BuyerID: 7}, ErrInvalidQuantity},
		{"six tickets", PurchaseIntentRequest{EventID: 1, Quantity: 6, BuyerID: 7}, ErrInvalidQuantity},
		{"missing event", PurchaseIntentRequest{Quantity: 1, BuyerID: 7}, ErrInvalidInput},
		{"missing buyer", PurchaseIntentRequest{EventID: 1, Quantity: 1}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfirmPurchaseRequest_Validate(t *testing.T) {
	t.Run("normalizes alt reference and email", func(t *testing.T) {
		req := ConfirmPurchaseRequest{
			PaymentID:    10,
			EventID:      2,
			Quantity:     2,
			BuyerID:      7,
			BuyerEmail:   " sarra@events.tn ",
			AltReference: "1234 5678 9012 3456 7890 1234 56",
		}
		require.NoError(t, req.Validate())
		assert.Equal(t, "12345678901234567890123456", req.AltReference)
		assert.Equal(t, "sarra@events.tn", req.BuyerEmail)
	})

	t.Run("rejects short alt reference", func(t *testing.T) {
		req := ConfirmPurchaseRequest{PaymentID: 10, EventID: 2, Quantity: 1, BuyerID: 7, AltReference: "123"}
		assert.ErrorIs(t, req.Validate(), ErrInvalidReference)
	})

	t.Run("rejects bad quantity before anything else", func(t *testing.T) {
		req := ConfirmPurchaseRequest{PaymentID: 10, EventID: 2, Quantity: 9, BuyerID: 7}
		assert.ErrorIs(t, req.Validate(), ErrInvalidQuantity)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		req := ConfirmPurchaseRequest{PaymentID: 10, EventID: 2, Quantity: 1, BuyerID: 7, BuyerEmail: "nope"}
		assert.ErrorIs(t, req.Validate(), ErrInvalidInput)
	})
}

func TestScanRequest_Validate(t *testing.T) {
	assert.NoError(t, (&ScanRequest{Reference: "ticket:ABC"}).Validate())
	assert.ErrorIs(t, (&ScanRequest{Reference: "ticket:"}).Validate(), ErrInvalidInput)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsNotFound(ErrPaymentNotFound))
	assert.False(t, IsNotFound(ErrInvalidQuantity))
	assert.True(t, IsValidation(ErrInvalidReference))
	assert.True(t, IsValidation(ErrAmountMismatch))
	assert.True(t, IsValidation(ErrIntentMismatch))
	assert.False(t, IsValidation(ErrAlreadySettled))
}

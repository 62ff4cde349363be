package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paidlinks-api/internal/apperrors"
)

func TestYookassaGateway_Charge(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     bool
		wantDecline bool
		wantID      string
	}{
		{
			name:   "succeeded",
			status: http.StatusOK,
			body:   `{"id":"pay_1","status":"succeeded","paid":true,"amount":{"value":"9.90","currency":"RUB"}}`,
			wantID: "pay_1",
		},
		{
			name:        "canceled by bank",
			status:      http.StatusOK,
			body:        `{"id":"pay_2","status":"canceled","paid":false,"cancellation_details":{"party":"payment_network","reason":"insufficient_funds"}}`,
			wantErr:     true,
			wantDecline: true,
		},
		{
			name:        "pending",
			status:      http.StatusOK,
			body:        `{"id":"pay_3","status":"pending","paid":false}`,
			wantErr:     true,
			wantDecline: true,
		},
		{
			name:        "bad request",
			status:      http.StatusBadRequest,
			body:        `{"type":"error","code":"invalid_request"}`,
			wantErr:     true,
			wantDecline: true,
		},
		{
			name:    "provider outage",
			status:  http.StatusInternalServerError,
			body:    `{"type":"error"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotReq yookassaPaymentRequest
			var gotKey, gotUser string

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/payments", r.URL.Path)
				gotKey = r.Header.Get("Idempotence-Key")
				gotUser, _, _ = r.BasicAuth()
				require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			gw := NewYookassaGateway("shop-1", "secret", srv.URL)
			res, err := gw.Charge(context.Background(), ChargeRequest{
				Amount:         decimal.RequireFromString("9.9"),
				Currency:       "RUB",
				PaymentToken:   "tok",
				IdempotencyKey: "idem-1",
			})

			assert.Equal(t, "idem-1", gotKey)
			assert.Equal(t, "shop-1", gotUser)
			assert.Equal(t, "9.90", gotReq.Amount.Value)
			assert.True(t, gotReq.Capture)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantDecline, isDeclined(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, res.PaymentID)
		})
	}
}

func isDeclined(err error) bool {
	code, _ := apperrors.Classify(err)
	return code == apperrors.CodePaymentDeclined
}

func TestSandboxGateway(t *testing.T) {
	gw := SandboxGateway{}

	res, err := gw.Charge(context.Background(), ChargeRequest{Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.Contains(t, res.PaymentID, "sandbox_")

	_, err = gw.Charge(context.Background(), ChargeRequest{Amount: decimal.NewFromInt(5), PaymentToken: SandboxDeclineToken})
	assert.ErrorIs(t, err, apperrors.ErrPaymentDeclined)
}

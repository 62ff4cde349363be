// Package payment charges buyers through an external payment provider.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paidlinks-api/internal/apperrors"
)

// ChargeRequest asks the payment provider to capture an amount
type ChargeRequest struct {
	Amount         decimal.Decimal
	Currency       string
	Description    string
	PaymentToken   string
	IdempotencyKey string
	Metadata       map[string]string
}

// ChargeResult is a captured payment
type ChargeResult struct {
	PaymentID string
	Status    string
}

//go:generate mockgen -source=gateway.go -destination=mocks/mock_payment_gateway.go -package=mocks

// Gateway charges buyers. A rejected payment returns an error matching
// apperrors.ErrPaymentDeclined; any other error means the outcome is unknown.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// YookassaGateway captures payments through the YooKassa REST API
type YookassaGateway struct {
	ShopID     string
	SecretKey  string
	APIURL     string
	HTTPClient *http.Client
}

// NewYookassaGateway creates a YooKassa client
func NewYookassaGateway(shopID, secretKey, apiURL string) *YookassaGateway {
	return &YookassaGateway{
		ShopID:    shopID,
		SecretKey: secretKey,
		APIURL:    apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type yookassaAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type yookassaPaymentRequest struct {
	Amount       yookassaAmount    `json:"amount"`
	Capture      bool              `json:"capture"`
	PaymentToken string            `json:"payment_token,omitempty"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type yookassaPaymentResponse struct {
	ID                  string         `json:"id"`
	Status              string         `json:"status"`
	Paid                bool           `json:"paid"`
	Amount              yookassaAmount `json:"amount"`
	CancellationDetails *struct {
		Party  string `json:"party"`
		Reason string `json:"reason"`
	} `json:"cancellation_details,omitempty"`
}

// Charge creates a captured payment. The idempotency key is forwarded so a
// retried request is not charged twice by the provider.
func (g *YookassaGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.New().String()
	}

	reqBody := yookassaPaymentRequest{
		Amount: yookassaAmount{
			Value:    req.Amount.StringFixed(2),
			Currency: req.Currency,
		},
		Capture:      true,
		PaymentToken: req.PaymentToken,
		Description:  req.Description,
		Metadata:     req.Metadata,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/payments", g.APIURL), bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Idempotence-Key", key)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(g.ShopID, g.SecretKey)

	resp, err := g.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusPaymentRequired {
		return nil, apperrors.Wrap(apperrors.ErrPaymentDeclined, "payment was rejected", fmt.Errorf("api error: %s", string(respBody)))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("api error: %s (status: %d)", string(respBody), resp.StatusCode)
	}

	var payment yookassaPaymentResponse
	if err := json.Unmarshal(respBody, &payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	switch payment.Status {
	case "succeeded":
		return &ChargeResult{PaymentID: payment.ID, Status: payment.Status}, nil
	case "canceled":
		reason := "canceled"
		if payment.CancellationDetails != nil {
			reason = payment.CancellationDetails.Reason
		}
		return nil, apperrors.Wrap(apperrors.ErrPaymentDeclined, "payment was declined", fmt.Errorf("payment %s: %s", payment.ID, reason))
	default:
		// pending or waiting_for_capture: the buyer has not completed payment
		return nil, apperrors.Wrap(apperrors.ErrPaymentDeclined, "payment was not completed", fmt.Errorf("payment %s status %s", payment.ID, payment.Status))
	}
}

// SandboxDeclineToken makes the sandbox gateway decline a charge
const SandboxDeclineToken = "decline"

// SandboxGateway approves every charge except those carrying SandboxDeclineToken.
// Used for development.
type SandboxGateway struct{}

func (SandboxGateway) Charge(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.PaymentToken == SandboxDeclineToken {
		return nil, apperrors.New(apperrors.ErrPaymentDeclined, "payment was declined")
	}
	return &ChargeResult{PaymentID: "sandbox_" + uuid.New().String(), Status: "succeeded"}, nil
}

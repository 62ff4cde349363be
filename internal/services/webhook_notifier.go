package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"paidlinks-api/internal/models"
	"paidlinks-api/pkg/logging"
)

// PurchaseNotifier is told about every committed purchase. Implementations
// run outside the request and must not block the buyer.
type PurchaseNotifier interface {
	NotifyPurchase(link *models.PaidLink, purchase *models.Purchase)
}

// PurchaseEvent is the webhook event name for a completed purchase
const PurchaseEvent = "paid_link.purchased"

// SignatureHeader carries the hex HMAC-SHA256 of the request body
const SignatureHeader = "X-PaidLinks-Signature"

// WebhookNotifier posts purchase events to the platform backend
type WebhookNotifier struct {
	callbackURL string
	secret      string
	httpClient  *http.Client
	retryDelays []time.Duration
}

// NewWebhookNotifier creates a new webhook notifier. An empty callbackURL
// disables it.
func NewWebhookNotifier(callbackURL, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		callbackURL: callbackURL,
		secret:      secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retryDelays: []time.Duration{1 * time.Second, 5 * time.Second, 30 * time.Second},
	}
}

// WebhookPayload is the body of a purchase webhook
type WebhookPayload struct {
	Event      string `json:"event"`
	PurchaseID string `json:"purchase_id"`
	LinkID     uint   `json:"link_id"`
	Slug       string `json:"slug"`
	CreatorID  string `json:"creator_id"`
	BuyerID    string `json:"buyer_id,omitempty"`
	AmountPaid string `json:"amount_paid"`
	PaymentID  string `json:"payment_id,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// NotifyPurchase sends the purchase event, retrying on failure
func (wn *WebhookNotifier) NotifyPurchase(link *models.PaidLink, purchase *models.Purchase) {
	if wn.callbackURL == "" {
		return
	}

	payload := WebhookPayload{
		Event:      PurchaseEvent,
		PurchaseID: purchase.ID,
		LinkID:     link.ID,
		Slug:       link.Slug,
		CreatorID:  link.CreatorID,
		AmountPaid: FormatMoney(purchase.AmountPaid),
		PaymentID:  purchase.PaymentID,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if purchase.BuyerID != nil {
		payload.BuyerID = *purchase.BuyerID
	}

	wn.sendWithRetry(payload)
}

// sendWithRetry tries once per entry in retryDelays, sleeping between attempts
func (wn *WebhookNotifier) sendWithRetry(payload WebhookPayload) {
	maxRetries := len(wn.retryDelays)

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := wn.sendWebhook(payload)
		if err == nil {
			logging.Infof("Webhook notification sent successfully - url: %s, purchase: %s, attempt: %d",
				wn.callbackURL, payload.PurchaseID, attempt+1)
			return
		}

		logging.Errorf("Webhook notification failed - url: %s, purchase: %s, attempt: %d, error: %v",
			wn.callbackURL, payload.PurchaseID, attempt+1, err)

		if attempt < maxRetries-1 {
			time.Sleep(wn.retryDelays[attempt])
		}
	}

	logging.Errorf("Webhook notification failed after %d attempts - url: %s, purchase: %s",
		maxRetries, wn.callbackURL, payload.PurchaseID)
}

func (wn *WebhookNotifier) sendWebhook(payload WebhookPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, wn.callbackURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PaidLinks-Webhook/1.0")

	if wn.secret != "" {
		req.Header.Set(SignatureHeader, SignPayload(jsonData, wn.secret))
	}

	resp, err := wn.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

// SignPayload returns the hex HMAC-SHA256 of payload
func SignPayload(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

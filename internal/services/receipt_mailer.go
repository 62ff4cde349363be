package services

import (
	"context"
	"fmt"
	"time"

	brevo "github.com/getbrevo/brevo-go/lib"

	"paidlinks-api/internal/models"
	"paidlinks-api/pkg/logging"
)

// BrevoReceiptMailer emails the buyer a receipt with their access link.
// Purchases without a buyer email are skipped.
type BrevoReceiptMailer struct {
	client        *brevo.APIClient
	fromEmail     string
	fromName      string
	publicBaseURL string
}

// NewBrevoReceiptMailer creates a mailer using the Brevo transactional API
func NewBrevoReceiptMailer(apiKey, fromEmail, fromName, publicBaseURL string) *BrevoReceiptMailer {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)

	return &BrevoReceiptMailer{
		client:        brevo.NewAPIClient(cfg),
		fromEmail:     fromEmail,
		fromName:      fromName,
		publicBaseURL: publicBaseURL,
	}
}

// NotifyPurchase sends the receipt. Failures are logged only.
func (m *BrevoReceiptMailer) NotifyPurchase(link *models.PaidLink, purchase *models.Purchase) {
	if purchase.BuyerEmail == nil || *purchase.BuyerEmail == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := m.SendReceipt(ctx, *purchase.BuyerEmail, link, purchase); err != nil {
		logging.Errorf("Failed to send purchase receipt - purchase: %s, error: %v", purchase.ID, err)
		return
	}
	logging.Infof("Purchase receipt sent - purchase: %s", purchase.ID)
}

// SendReceipt sends one receipt email
func (m *BrevoReceiptMailer) SendReceipt(ctx context.Context, to string, link *models.PaidLink, purchase *models.Purchase) error {
	accessURL := AccessURL(m.publicBaseURL, link.Slug, purchase.AccessToken)
	amount := FormatMoney(purchase.AmountPaid)

	subject := fmt.Sprintf("Your purchase: %s", link.Title)
	htmlContent := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<title>%s</title>
		</head>
		<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<div style="background-color: #f8f9fa; padding: 30px; border-radius: 10px; text-align: center;">
				<h1 style="color: #333; margin-bottom: 20px;">%s</h1>
				<p style="color: #666; font-size: 16px;">Amount paid: %s</p>
				<a href="%s" style="display: inline-block; background-color: #007bff; color: white; padding: 14px 28px; border-radius: 8px; text-decoration: none; margin: 20px 0;">Open your content</a>
				<p style="color: #999; font-size: 12px; margin-top: 30px;">Keep this link private. Anyone with it can open the content.</p>
			</div>
		</body>
		</html>
	`, subject, link.Title, amount, accessURL)

	textContent := fmt.Sprintf("%s\n\nAmount paid: %s\nOpen your content: %s\n\nKeep this link private. Anyone with it can open the content.\n",
		link.Title, amount, accessURL)

	email := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  m.fromName,
			Email: m.fromEmail,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: to},
		},
		Subject:     subject,
		HtmlContent: htmlContent,
		TextContent: textContent,
	}

	if _, _, err := m.client.TransactionalEmailsApi.SendTransacEmail(ctx, email); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// AccessURL builds the buyer's link to the unlocked content
func AccessURL(baseURL, slug, token string) string {
	return fmt.Sprintf("%s/l/%s/access/%s", baseURL, slug, token)
}

package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mhpos/backend/internal/domain/invoicing/acl"
	"go.uber.org/zap"
)

// WebhookNotifier implements acl.Notifier by POSTing reminder payloads
// to a configured webhook endpoint.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebhookNotifier creates a new WebhookNotifier
func NewWebhookNotifier(url string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// reminderPayload is the wire format of a reminder notification
type reminderPayload struct {
	Type          string `json:"type"`
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	AmountDue     string `json:"amount_due"`
	DueDate       string `json:"due_date"`
	DaysOverdue   int    `json:"days_overdue"`
}

// SendReminder posts the reminder to the webhook endpoint. Any non-2xx
// response is an error.
func (n *WebhookNotifier) SendReminder(ctx context.Context, reminder acl.Reminder) error {
	payload := reminderPayload{
		Type:          "invoice.reminder",
		InvoiceID:     reminder.InvoiceID.String(),
		InvoiceNumber: reminder.InvoiceNumber,
		CustomerID:    reminder.CustomerID.String(),
		CustomerName:  reminder.CustomerName,
		AmountDue:     reminder.AmountDue,
		DueDate:       reminder.DueDate,
		DaysOverdue:   reminder.DaysOverdue,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build reminder request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver reminder: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("reminder webhook returned status %d", resp.StatusCode)
	}

	n.logger.Debug("reminder delivered",
		zap.String("invoice_number", reminder.InvoiceNumber),
		zap.Int("days_overdue", reminder.DaysOverdue),
	)
	return nil
}

var _ acl.Notifier = (*WebhookNotifier)(nil)

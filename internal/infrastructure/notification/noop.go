package notification

import (
	"context"

	"github.com/mhpos/backend/internal/domain/invoicing/acl"
	"go.uber.org/zap"
)

// NoopNotifier logs reminders instead of delivering them. Used when no
// webhook endpoint is configured.
type NoopNotifier struct {
	logger *zap.Logger
}

// NewNoopNotifier creates a new NoopNotifier
func NewNoopNotifier(logger *zap.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

// SendReminder logs the reminder and reports success
func (n *NoopNotifier) SendReminder(_ context.Context, reminder acl.Reminder) error {
	n.logger.Info("reminder suppressed, no webhook configured",
		zap.String("invoice_number", reminder.InvoiceNumber),
		zap.String("customer_name", reminder.CustomerName),
		zap.String("amount_due", reminder.AmountDue),
		zap.Int("days_overdue", reminder.DaysOverdue),
	)
	return nil
}

var _ acl.Notifier = (*NoopNotifier)(nil)

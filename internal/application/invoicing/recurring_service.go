package invoicing

import (
	"context"
	"time"

	"github.com/mhpos/backend/internal/domain/invoicing"
	"github.com/mhpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RecurringService is the recurring invoice scheduler: it sweeps
// invoices whose next invoice date has arrived and spawns their next
// occurrence. One invoice's failure never aborts the sweep.
type RecurringService struct {
	repo            invoicing.InvoiceRepository
	events          shared.EventPublisher
	logger          *zap.Logger
	paymentTermDays int
}

// NewRecurringService creates a new RecurringService. paymentTermDays
// is the standard term applied to generated invoices' due dates.
func NewRecurringService(repo invoicing.InvoiceRepository, events shared.EventPublisher, logger *zap.Logger, paymentTermDays int) *RecurringService {
	if paymentTermDays < 1 {
		paymentTermDays = 30
	}
	return &RecurringService{
		repo:            repo,
		events:          events,
		logger:          logger,
		paymentTermDays: paymentTermDays,
	}
}

// GenerateRecurringInvoices runs one sweep. Idempotent within a tick: a
// parent whose next invoice date was already advanced past now is not
// selected again.
func (s *RecurringService) GenerateRecurringInvoices(ctx context.Context) (*RecurringSweepResult, error) {
	now := time.Now()
	due, err := s.repo.FindDueRecurring(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &RecurringSweepResult{Errors: []SweepError{}}
	for i := range due {
		parent := &due[i]
		child, err := s.generateOne(ctx, parent, now)
		if err != nil {
			s.logger.Warn("recurring invoice generation failed",
				zap.String("invoice_number", parent.InvoiceNumber),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, SweepError{
				InvoiceID:     parent.ID,
				InvoiceNumber: parent.InvoiceNumber,
				Error:         err.Error(),
			})
			continue
		}
		result.GeneratedCount++
		result.Generated = append(result.Generated, *toInvoiceResponse(child))
	}

	s.logger.Info("recurring invoice sweep completed",
		zap.Int("due", len(due)),
		zap.Int("generated", result.GeneratedCount),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}

// generateOne spawns the next occurrence of one recurring invoice,
// persisting child and advanced parent atomically
func (s *RecurringService) generateOne(ctx context.Context, parent *invoicing.Invoice, now time.Time) (*invoicing.Invoice, error) {
	number, err := s.repo.NextInvoiceNumber(ctx, now.Year())
	if err != nil {
		return nil, err
	}
	child, err := parent.SpawnNextOccurrence(number, now, s.paymentTermDays)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveGenerated(ctx, child, parent); err != nil {
		return nil, err
	}

	if s.events != nil {
		events := append(child.GetDomainEvents(), parent.GetDomainEvents()...)
		if len(events) > 0 {
			_ = s.events.Publish(ctx, events...)
		}
		child.ClearDomainEvents()
		parent.ClearDomainEvents()
	}
	return child, nil
}

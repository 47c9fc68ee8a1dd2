package invoicing

import (
	"context"
	"time"

	"github.com/mhpos/backend/internal/domain/invoicing"
	"github.com/mhpos/backend/internal/domain/invoicing/acl"
	"github.com/mhpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReminderService dispatches automated reminders for overdue invoices
// through the external notification collaborator. A failed dispatch is
// logged and collected; it never stops the sweep.
type ReminderService struct {
	repo     invoicing.InvoiceRepository
	notifier acl.Notifier
	events   shared.EventPublisher
	logger   *zap.Logger
	grace    time.Duration
	cooldown time.Duration
}

// NewReminderService creates a new ReminderService. grace is how long
// past due an invoice must be before reminders start; cooldown is the
// minimum interval between two reminders for the same invoice.
func NewReminderService(
	repo invoicing.InvoiceRepository,
	notifier acl.Notifier,
	events shared.EventPublisher,
	logger *zap.Logger,
	grace, cooldown time.Duration,
) *ReminderService {
	return &ReminderService{
		repo:     repo,
		notifier: notifier,
		events:   events,
		logger:   logger,
		grace:    grace,
		cooldown: cooldown,
	}
}

// SendAutomatedReminders runs one reminder sweep and returns the count
// of reminders successfully sent plus the per-invoice failures
func (s *ReminderService) SendAutomatedReminders(ctx context.Context) (*ReminderSweepResult, error) {
	now := time.Now()
	candidates, err := s.repo.FindReminderCandidates(ctx, now, s.grace)
	if err != nil {
		return nil, err
	}

	result := &ReminderSweepResult{Errors: []SweepError{}}
	for i := range candidates {
		inv := &candidates[i]
		if !inv.IsReminderEligible(now, s.grace, s.cooldown) {
			continue
		}
		if err := s.remindOne(ctx, inv, now); err != nil {
			s.logger.Warn("reminder dispatch failed",
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, SweepError{
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.InvoiceNumber,
				Error:         err.Error(),
			})
			continue
		}
		result.SentCount++
	}

	s.logger.Info("reminder sweep completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("sent", result.SentCount),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}

// remindOne dispatches a single reminder and records the timestamp
func (s *ReminderService) remindOne(ctx context.Context, inv *invoicing.Invoice, now time.Time) error {
	reminder := acl.Reminder{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		CustomerName:  inv.CustomerName,
		AmountDue:     inv.RemainingBalance().StringFixed(2),
		DueDate:       inv.DueDate.Format("2006-01-02"),
		DaysOverdue:   inv.DaysOverdue(now),
	}
	if err := s.notifier.SendReminder(ctx, reminder); err != nil {
		return shared.NewDomainError("EXTERNAL_SERVICE", err.Error())
	}

	inv.MarkReminded(now)
	if err := s.repo.Save(ctx, inv); err != nil {
		return err
	}
	if s.events != nil {
		events := inv.GetDomainEvents()
		if len(events) > 0 {
			_ = s.events.Publish(ctx, events...)
		}
		inv.ClearDomainEvents()
	}
	return nil
}

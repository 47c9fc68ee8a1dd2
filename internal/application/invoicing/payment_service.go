package invoicing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/invoicing"
	"github.com/mhpos/backend/internal/domain/shared"
	"github.com/mhpos/backend/internal/domain/shared/valueobject"
)

// PaymentService records payments against invoices under the
// money-conservation invariant. The balance check and the append run in
// one atomic unit of work with the invoice row locked; conflicting
// writers are retried a bounded number of times.
type PaymentService struct {
	repo          invoicing.InvoiceRepository
	events        shared.EventPublisher
	retryAttempts int
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(repo invoicing.InvoiceRepository, events shared.EventPublisher, retryAttempts int) *PaymentService {
	if retryAttempts < 1 {
		retryAttempts = 3
	}
	return &PaymentService{
		repo:          repo,
		events:        events,
		retryAttempts: retryAttempts,
	}
}

// RecordPayment appends a payment to an invoice. Fails with a
// validation error for non-positive amounts or unknown methods, with
// EXCEEDS_BALANCE when the amount is greater than the remaining
// balance, and leaves the invoice unchanged on any failure.
func (s *PaymentService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, input RecordPaymentInput) (*InvoiceResponse, error) {
	if input.Amount <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	method := invoicing.PaymentMethod(input.Method)
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	amount := valueobject.NewMoneyFromFloat(input.Amount)

	var updated *invoicing.Invoice
	var err error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		updated, err = s.recordOnce(ctx, invoiceID, amount, method, input.Reference, input.Notes, paymentDate)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
	}
	if err != nil {
		return nil, shared.ErrConcurrencyConflict
	}

	s.publishEvents(ctx, updated)
	return toInvoiceResponse(updated), nil
}

// recordOnce runs one attempt of the atomic read-then-append unit
func (s *PaymentService) recordOnce(
	ctx context.Context,
	invoiceID uuid.UUID,
	amount valueobject.Money,
	method invoicing.PaymentMethod,
	reference, notes string,
	paymentDate time.Time,
) (*invoicing.Invoice, error) {
	var result *invoicing.Invoice
	err := s.repo.RecordPayment(ctx, invoiceID, func(inv *invoicing.Invoice) (*invoicing.Payment, error) {
		payment, err := inv.ApplyPayment(amount, method, reference, notes, paymentDate)
		if err != nil {
			return nil, err
		}
		result = inv
		return payment, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PaymentService) publishEvents(ctx context.Context, inv *invoicing.Invoice) {
	if s.events == nil || inv == nil {
		return
	}
	events := inv.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.events.Publish(ctx, events...)
	inv.ClearDomainEvents()
}

package invoicing

import (
	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants for the invoicing domain
const (
	EventTypeInvoiceCreated            = "invoicing.invoice.created"
	EventTypeInvoicePaid               = "invoicing.invoice.paid"
	EventTypeInvoicePartiallyPaid      = "invoicing.invoice.partially_paid"
	EventTypeInvoiceOverdue            = "invoicing.invoice.overdue"
	EventTypeInvoiceCancelled          = "invoicing.invoice.cancelled"
	EventTypeRecurringInvoiceGenerated = "invoicing.invoice.recurring_generated"
	EventTypeInvoiceReminderSent       = "invoicing.invoice.reminder_sent"
)

const aggregateTypeInvoice = "Invoice"

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoiceCreatedEvent creates an InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, aggregateTypeInvoice, inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoicePaidEvent is raised when an invoice becomes fully paid.
// CompletingPayment is nil when the transition came from a status
// recomputation rather than a payment being recorded.
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber     string          `json:"invoice_number"`
	CompletingPayment *uuid.UUID      `json:"completing_payment_id,omitempty"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
}

// NewInvoicePaidEvent creates an InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice, completing *Payment) *InvoicePaidEvent {
	e := &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, aggregateTypeInvoice, inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		TotalAmount:     inv.TotalAmount,
	}
	if completing != nil {
		id := completing.ID
		e.CompletingPayment = &id
	}
	return e
}

// InvoicePartiallyPaidEvent is raised when a partial payment is recorded
type InvoicePartiallyPaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber    string          `json:"invoice_number"`
	PaymentID        uuid.UUID       `json:"payment_id"`
	PaymentAmount    decimal.Decimal `json:"payment_amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// NewInvoicePartiallyPaidEvent creates an InvoicePartiallyPaidEvent
func NewInvoicePartiallyPaidEvent(inv *Invoice, payment *Payment) *InvoicePartiallyPaidEvent {
	return &InvoicePartiallyPaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeInvoicePartiallyPaid, aggregateTypeInvoice, inv.ID),
		InvoiceNumber:    inv.InvoiceNumber,
		PaymentID:        payment.ID,
		PaymentAmount:    payment.Amount,
		RemainingBalance: inv.RemainingBalance(),
	}
}

// InvoiceOverdueEvent is raised when a sent invoice passes its due date
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber    string          `json:"invoice_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// NewInvoiceOverdueEvent creates an InvoiceOverdueEvent
func NewInvoiceOverdueEvent(inv *Invoice) *InvoiceOverdueEvent {
	return &InvoiceOverdueEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeInvoiceOverdue, aggregateTypeInvoice, inv.ID),
		InvoiceNumber:    inv.InvoiceNumber,
		CustomerID:       inv.CustomerID,
		RemainingBalance: inv.RemainingBalance(),
	}
}

// InvoiceCancelledEvent is raised when an invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	Reason        string `json:"reason,omitempty"`
}

// NewInvoiceCancelledEvent creates an InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, aggregateTypeInvoice, inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		Reason:          inv.CancelReason,
	}
}

// RecurringInvoiceGeneratedEvent is raised on the child invoice spawned
// from a recurring parent
type RecurringInvoiceGeneratedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string    `json:"invoice_number"`
	ParentID      uuid.UUID `json:"parent_id"`
}

// NewRecurringInvoiceGeneratedEvent creates a RecurringInvoiceGeneratedEvent
func NewRecurringInvoiceGeneratedEvent(child *Invoice, parentID uuid.UUID) *RecurringInvoiceGeneratedEvent {
	return &RecurringInvoiceGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRecurringInvoiceGenerated, aggregateTypeInvoice, child.ID),
		InvoiceNumber:   child.InvoiceNumber,
		ParentID:        parentID,
	}
}

// InvoiceReminderSentEvent is raised after a reminder dispatch succeeds
type InvoiceReminderSentEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string    `json:"invoice_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ReminderCount int       `json:"reminder_count"`
}

// NewInvoiceReminderSentEvent creates an InvoiceReminderSentEvent
func NewInvoiceReminderSentEvent(inv *Invoice) *InvoiceReminderSentEvent {
	return &InvoiceReminderSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceReminderSent, aggregateTypeInvoice, inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		ReminderCount:   inv.ReminderCount,
	}
}

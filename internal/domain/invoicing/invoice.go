package invoicing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/shared"
	"github.com/mhpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Invoice is the aggregate root for a billable document. It owns its line
// items and the append-only list of payments recorded against it, and is
// the sole owner of the money-conservation invariant: the sum of payment
// amounts never exceeds the invoice total.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string        `json:"invoice_number"`
	CustomerID    uuid.UUID     `json:"customer_id"`
	CustomerName  string        `json:"customer_name"`
	Items         []InvoiceItem `json:"items"`
	Payments      []Payment     `json:"payments"`

	// Derived, never independently mutated
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`

	Status    InvoiceStatus `json:"status"`
	IssueDate time.Time     `json:"issue_date"`
	DueDate   time.Time     `json:"due_date"`
	PaidDate  *time.Time    `json:"paid_date,omitempty"`
	// Method of the payment that completed full payment. Convenience
	// field only; the payment list is the source of truth.
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`

	IsRecurring       bool               `json:"is_recurring"`
	RecurringInterval *RecurringInterval `json:"recurring_interval,omitempty"`
	NextInvoiceDate   *time.Time         `json:"next_invoice_date,omitempty"`

	Notes string `json:"notes,omitempty"`
	Terms string `json:"terms,omitempty"`

	LastReminderAt *time.Time `json:"last_reminder_at,omitempty"`
	ReminderCount  int        `json:"reminder_count"`

	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`
}

// NewInvoiceParams carries the inputs for creating an invoice
type NewInvoiceParams struct {
	InvoiceNumber     string
	CustomerID        uuid.UUID
	CustomerName      string
	Items             []InvoiceItem
	IssueDate         time.Time
	DueDate           time.Time
	Notes             string
	Terms             string
	IsRecurring       bool
	RecurringInterval RecurringInterval
}

// NewInvoice creates a new invoice in DRAFT status with derived totals
func NewInvoice(p NewInvoiceParams) (*Invoice, error) {
	if p.InvoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if p.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if len(p.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ITEMS", "Invoice must have at least one line item")
	}
	if p.IssueDate.IsZero() {
		p.IssueDate = time.Now()
	}
	if p.DueDate.Before(p.IssueDate) {
		return nil, shared.NewDomainError("PAST_DUE_DATE", "Due date cannot be in the past")
	}
	if p.IsRecurring && !p.RecurringInterval.IsValid() {
		return nil, shared.NewDomainError("INVALID_INTERVAL", "Recurring interval is not valid")
	}

	totals := ComputeTotals(p.Items)

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     p.InvoiceNumber,
		CustomerID:        p.CustomerID,
		CustomerName:      p.CustomerName,
		Items:             p.Items,
		Payments:          []Payment{},
		Subtotal:          totals.Subtotal,
		TaxAmount:         totals.TaxAmount,
		TotalAmount:       totals.Total,
		Status:            InvoiceStatusDraft,
		IssueDate:         p.IssueDate,
		DueDate:           p.DueDate,
		Notes:             p.Notes,
		Terms:             p.Terms,
		IsRecurring:       p.IsRecurring,
	}
	if p.IsRecurring {
		interval := p.RecurringInterval
		next := interval.Next(p.IssueDate)
		inv.RecurringInterval = &interval
		inv.NextInvoiceDate = &next
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// PaidAmount returns the sum of all recorded payments
func (inv *Invoice) PaidAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range inv.Payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// RemainingBalance returns total amount minus the sum of recorded payments
func (inv *Invoice) RemainingBalance() decimal.Decimal {
	return inv.TotalAmount.Sub(inv.PaidAmount())
}

// IsFullyPaid returns true if recorded payments cover the total amount
func (inv *Invoice) IsFullyPaid() bool {
	return inv.RemainingBalance().LessThanOrEqual(decimal.Zero)
}

// ApplyPayment appends a payment under the conservation invariant and
// advances the status when the payment completes the invoice. The
// invoice is left unchanged when the payment is rejected.
func (inv *Invoice) ApplyPayment(amount valueobject.Money, method PaymentMethod, reference, notes string, paymentDate time.Time) (*Payment, error) {
	if inv.Status == InvoiceStatusCancelled {
		return nil, shared.NewDomainError("INVALID_STATE",
			"Cannot record payment on a cancelled invoice")
	}
	// A fully paid invoice has zero remaining balance, so any further
	// positive payment falls out as EXCEEDS_BALANCE below.
	remaining := inv.RemainingBalance()
	if amount.Amount().GreaterThan(remaining) {
		return nil, shared.NewDomainError("EXCEEDS_BALANCE",
			fmt.Sprintf("Payment amount %s exceeds remaining balance %s",
				amount.Amount().StringFixed(2), remaining.StringFixed(2)))
	}

	payment, err := NewPayment(inv.ID, amount, method, reference, notes, paymentDate)
	if err != nil {
		return nil, err
	}
	inv.Payments = append(inv.Payments, payment)

	if inv.IsFullyPaid() {
		inv.Status = InvoiceStatusPaid
		paidAt := payment.PaymentDate
		inv.PaidDate = &paidAt
		completedWith := payment.Method
		inv.PaymentMethod = &completedWith
		inv.AddDomainEvent(NewInvoicePaidEvent(inv, &payment))
	} else {
		inv.AddDomainEvent(NewInvoicePartiallyPaidEvent(inv, &payment))
	}

	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return &payment, nil
}

// RecomputeStatus recomputes the derived status from the payment sum and
// due date. Idempotent: calling it again with the same inputs is a no-op.
// Returns true if the status changed.
func (inv *Invoice) RecomputeStatus(now time.Time) bool {
	if inv.Status.IsTerminal() {
		return false
	}
	if inv.IsFullyPaid() {
		inv.Status = InvoiceStatusPaid
		if inv.PaidDate == nil {
			paidAt := inv.lastPaymentDate(now)
			inv.PaidDate = &paidAt
		}
		inv.UpdatedAt = now
		inv.IncrementVersion()
		inv.AddDomainEvent(NewInvoicePaidEvent(inv, nil))
		return true
	}
	if inv.Status == InvoiceStatusSent && inv.DueDate.Before(now) {
		inv.Status = InvoiceStatusOverdue
		inv.UpdatedAt = now
		inv.IncrementVersion()
		inv.AddDomainEvent(NewInvoiceOverdueEvent(inv))
		return true
	}
	return false
}

// lastPaymentDate returns the date of the most recent payment, or the
// fallback when no payments exist.
func (inv *Invoice) lastPaymentDate(fallback time.Time) time.Time {
	latest := fallback
	for i, p := range inv.Payments {
		if i == 0 || p.PaymentDate.After(latest) {
			latest = p.PaymentDate
		}
	}
	return latest
}

// ChangeStatus applies an administrative status override. The transition
// must be listed in the transition table; terminal states cannot be left.
func (inv *Invoice) ChangeStatus(target InvoiceStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", target))
	}
	if target == inv.Status {
		return nil
	}
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change status of invoice in terminal %s status", inv.Status))
	}
	if !inv.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transition %s -> %s is not allowed", inv.Status, target))
	}
	if target == InvoiceStatusCancelled {
		return inv.Cancel("")
	}
	inv.Status = target
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// MarkSent transitions the invoice from DRAFT to SENT
func (inv *Invoice) MarkSent() error {
	return inv.ChangeStatus(InvoiceStatusSent)
}

// Cancel administratively cancels the invoice. Terminal.
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if !inv.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transition %s -> %s is not allowed", inv.Status, InvoiceStatusCancelled))
	}
	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.UpdatedAt = now
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))
	return nil
}

// UpdateDetails applies allowed administrative field changes
func (inv *Invoice) UpdateDetails(notes, terms *string) {
	if notes != nil {
		inv.Notes = *notes
	}
	if terms != nil {
		inv.Terms = *terms
	}
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// SetRecurrence updates the recurring configuration
func (inv *Invoice) SetRecurrence(isRecurring bool, interval RecurringInterval) error {
	if isRecurring && !interval.IsValid() {
		return shared.NewDomainError("INVALID_INTERVAL", "Recurring interval is not valid")
	}
	inv.IsRecurring = isRecurring
	if isRecurring {
		inv.RecurringInterval = &interval
		if inv.NextInvoiceDate == nil {
			next := interval.Next(inv.IssueDate)
			inv.NextInvoiceDate = &next
		}
	} else {
		inv.RecurringInterval = nil
		inv.NextInvoiceDate = nil
	}
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// IsDueForRecurrence reports whether a recurring invoice should spawn its
// next occurrence at the given time
func (inv *Invoice) IsDueForRecurrence(now time.Time) bool {
	return inv.IsRecurring && inv.RecurringInterval != nil &&
		inv.NextInvoiceDate != nil && !inv.NextInvoiceDate.After(now)
}

// SpawnNextOccurrence creates the next invoice of a recurring series and
// advances this invoice's next-invoice date by one interval. The child is
// an independent DRAFT invoice with cloned line items and a fresh number.
func (inv *Invoice) SpawnNextOccurrence(invoiceNumber string, now time.Time, paymentTermDays int) (*Invoice, error) {
	if !inv.IsDueForRecurrence(now) {
		return nil, shared.NewDomainError("NOT_DUE", "Invoice is not due for recurring generation")
	}
	items := make([]InvoiceItem, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = it.Clone()
	}
	child, err := NewInvoice(NewInvoiceParams{
		InvoiceNumber: invoiceNumber,
		CustomerID:    inv.CustomerID,
		CustomerName:  inv.CustomerName,
		Items:         items,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, paymentTermDays),
		Notes:         inv.Notes,
		Terms:         inv.Terms,
	})
	if err != nil {
		return nil, err
	}

	next := inv.RecurringInterval.Next(*inv.NextInvoiceDate)
	inv.NextInvoiceDate = &next
	inv.UpdatedAt = now
	inv.IncrementVersion()

	child.AddDomainEvent(NewRecurringInvoiceGeneratedEvent(child, inv.ID))
	return child, nil
}

// IsReminderEligible reports whether the invoice qualifies for an
// automated overdue reminder: unpaid past due plus grace, and outside
// the per-invoice cooldown window.
func (inv *Invoice) IsReminderEligible(now time.Time, grace, cooldown time.Duration) bool {
	if inv.Status != InvoiceStatusSent && inv.Status != InvoiceStatusOverdue {
		return false
	}
	if now.Sub(inv.DueDate) <= grace {
		return false
	}
	if inv.LastReminderAt != nil && now.Sub(*inv.LastReminderAt) < cooldown {
		return false
	}
	return true
}

// MarkReminded records a successful reminder dispatch
func (inv *Invoice) MarkReminded(now time.Time) {
	inv.LastReminderAt = &now
	inv.ReminderCount++
	inv.UpdatedAt = now
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceReminderSentEvent(inv))
}

// IsOverdue returns true if the invoice is past due and not settled
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return !inv.Status.IsTerminal() && inv.DueDate.Before(now)
}

// DaysOverdue returns the number of whole days past due (0 if not overdue)
func (inv *Invoice) DaysOverdue(now time.Time) int {
	if !inv.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(inv.DueDate).Hours() / 24)
}

package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/shared"
)

// InvoiceFilter defines filtering options for invoice list queries
type InvoiceFilter struct {
	CustomerID *uuid.UUID
	Status     *InvoiceStatus
	Page       int
	PageSize   int
}

func (f InvoiceFilter) pagination() shared.Filter {
	return shared.Filter{Page: f.Page, PageSize: f.PageSize}
}

// Offset returns the row offset implied by the page and page size
func (f InvoiceFilter) Offset() int { return f.pagination().Offset() }

// Limit returns the effective page size
func (f InvoiceFilter) Limit() int { return f.pagination().Limit() }

// InvoiceRepository is the persistence port for the Invoice aggregate.
// Implementations must persist invoice, items and payments atomically.
type InvoiceRepository interface {
	// Create persists a new invoice with its items in one transaction.
	// The invoice number must already be assigned; a duplicate number
	// surfaces as shared.ErrAlreadyExists.
	Create(ctx context.Context, inv *Invoice) error

	// FindByID loads an invoice with its items and payments
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// List returns invoices matching the filter, ordered by creation
	// time descending, with the total count for pagination
	List(ctx context.Context, filter InvoiceFilter) ([]Invoice, int64, error)

	// Save persists aggregate changes with optimistic locking; a stale
	// version surfaces as shared.ErrConcurrencyConflict
	Save(ctx context.Context, inv *Invoice) error

	// NextInvoiceNumber returns the next sequential number for the
	// given year. The unique index on invoice_number is the backstop
	// against concurrent callers racing for the same number; callers
	// retry creation on shared.ErrAlreadyExists.
	NextInvoiceNumber(ctx context.Context, year int) (string, error)

	// SaveGenerated persists a spawned child invoice and the advanced
	// parent in one transaction
	SaveGenerated(ctx context.Context, child, parent *Invoice) error

	// FindOverdue returns non-terminal invoices past their due date
	FindOverdue(ctx context.Context, now time.Time) ([]Invoice, error)

	// FindDueRecurring returns recurring invoices whose next invoice
	// date is at or before now
	FindDueRecurring(ctx context.Context, now time.Time) ([]Invoice, error)

	// FindReminderCandidates returns SENT/OVERDUE invoices whose due
	// date is more than the grace period in the past
	FindReminderCandidates(ctx context.Context, now time.Time, grace time.Duration) ([]Invoice, error)

	// RecordPayment runs fn against the invoice inside one transaction
	// with the invoice row locked for update, then persists the invoice
	// and any payment appended by fn. This is the atomic unit of work
	// for the read-remaining-then-append path.
	RecordPayment(ctx context.Context, invoiceID uuid.UUID, fn func(inv *Invoice) (*Payment, error)) error
}

package invoicing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/invoicing"
	"github.com/mhpos/backend/internal/domain/invoicing/acl"
	"github.com/mhpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// createRetryAttempts bounds the retry loop when two creators race for
// the same invoice number and the unique index rejects one of them.
const createRetryAttempts = 3

// InvoiceService is the invoice lifecycle manager: creation, retrieval,
// administrative update and derived-status recomputation.
type InvoiceService struct {
	repo      invoicing.InvoiceRepository
	customers acl.CustomerDirectory
	products  acl.ProductCatalog
	events    shared.EventPublisher
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	repo invoicing.InvoiceRepository,
	customers acl.CustomerDirectory,
	products acl.ProductCatalog,
	events shared.EventPublisher,
) *InvoiceService {
	return &InvoiceService{
		repo:      repo,
		customers: customers,
		products:  products,
		events:    events,
	}
}

// CreateInvoice creates a DRAFT invoice with derived totals and a fresh
// sequential invoice number, persisting invoice and items atomically
func (s *InvoiceService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*InvoiceResponse, error) {
	customer, err := s.customers.FindCustomer(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer does not exist")
		}
		return nil, err
	}

	if len(input.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ITEMS", "Invoice must have at least one line item")
	}
	items := make([]invoicing.InvoiceItem, 0, len(input.Items))
	for _, in := range input.Items {
		if in.ProductID != nil && s.products != nil {
			exists, err := s.products.ProductExists(ctx, *in.ProductID)
			if err != nil {
				return nil, err
			}
			if !exists {
				return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Line item references an unknown product")
			}
		}
		item, err := invoicing.NewInvoiceItem(
			in.Description,
			decimal.NewFromFloat(in.Quantity),
			decimal.NewFromFloat(in.UnitPrice),
			decimal.NewFromFloat(in.TaxRate),
			in.ProductID,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	interval := invoicing.RecurringInterval(input.RecurringInterval)
	if input.IsRecurring && !interval.IsValid() {
		return nil, shared.NewDomainError("INVALID_INTERVAL", "Recurring interval is not valid")
	}

	var inv *invoicing.Invoice
	for attempt := 0; attempt < createRetryAttempts; attempt++ {
		number, err := s.repo.NextInvoiceNumber(ctx, time.Now().Year())
		if err != nil {
			return nil, err
		}
		inv, err = invoicing.NewInvoice(invoicing.NewInvoiceParams{
			InvoiceNumber:     number,
			CustomerID:        customer.ID,
			CustomerName:      customer.Name,
			Items:             items,
			DueDate:           input.DueDate,
			Notes:             input.Notes,
			Terms:             input.Terms,
			IsRecurring:       input.IsRecurring,
			RecurringInterval: interval,
		})
		if err != nil {
			return nil, err
		}

		err = s.repo.Create(ctx, inv)
		if err == nil {
			break
		}
		if errors.Is(err, shared.ErrAlreadyExists) && attempt < createRetryAttempts-1 {
			continue
		}
		return nil, err
	}

	s.publishEvents(ctx, inv)
	return toInvoiceResponse(inv), nil
}

// GetInvoice returns one invoice fully populated with items and payments
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// ListInvoices returns a filtered, paginated invoice list ordered by
// creation time descending
func (s *InvoiceService) ListInvoices(ctx context.Context, input ListInvoicesInput) (*shared.Paginated[InvoiceResponse], error) {
	filter := invoicing.InvoiceFilter{
		CustomerID: input.CustomerID,
		Page:       input.Page,
		PageSize:   input.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	if input.Status != nil {
		status := invoicing.InvoiceStatus(*input.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown invoice status filter")
		}
		filter.Status = &status
	}

	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(toInvoiceResponses(invoices), total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateInvoice applies allowed administrative changes: notes, terms,
// recurring flags and status overrides validated against the transition
// table
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Notes != nil || input.Terms != nil {
		inv.UpdateDetails(input.Notes, input.Terms)
	}
	if input.IsRecurring != nil {
		interval := ""
		if inv.RecurringInterval != nil {
			interval = inv.RecurringInterval.String()
		}
		if input.RecurringInterval != nil {
			interval = *input.RecurringInterval
		}
		if err := inv.SetRecurrence(*input.IsRecurring, invoicing.RecurringInterval(interval)); err != nil {
			return nil, err
		}
	} else if input.RecurringInterval != nil {
		if err := inv.SetRecurrence(inv.IsRecurring, invoicing.RecurringInterval(*input.RecurringInterval)); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		if err := inv.ChangeStatus(invoicing.InvoiceStatus(*input.Status)); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, inv)
	return toInvoiceResponse(inv), nil
}

// UpdateInvoiceStatus recomputes the derived status of one invoice.
// Idempotent: a repeat call with no new payments or time movement
// changes nothing.
func (s *InvoiceService) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.RecomputeStatus(time.Now()) {
		if err := s.repo.Save(ctx, inv); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, inv)
	}
	return toInvoiceResponse(inv), nil
}

// ListOverdueInvoices returns invoices currently past due and unsettled
func (s *InvoiceService) ListOverdueInvoices(ctx context.Context) ([]InvoiceResponse, error) {
	invoices, err := s.repo.FindOverdue(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return toInvoiceResponses(invoices), nil
}

// publishEvents drains and publishes the aggregate's pending events
func (s *InvoiceService) publishEvents(ctx context.Context, inv *invoicing.Invoice) {
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

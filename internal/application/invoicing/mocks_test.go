package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/invoicing"
	"github.com/mhpos/backend/internal/domain/invoicing/acl"
	"github.com/mhpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *invoicing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]invoicing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *invoicing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) NextInvoiceNumber(ctx context.Context, year int) (string, error) {
	args := m.Called(ctx, year)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) SaveGenerated(ctx context.Context, child, parent *invoicing.Invoice) error {
	args := m.Called(ctx, child, parent)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindOverdue(ctx context.Context, now time.Time) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindDueRecurring(ctx context.Context, now time.Time) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindReminderCandidates(ctx context.Context, now time.Time, grace time.Duration) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, now, grace)
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

// RecordPayment runs fn against the invoice configured as the first
// return value. Configure with .Return(inv, nil); an error in the first
// Return slot short-circuits fn the way a load failure would.
func (m *MockInvoiceRepository) RecordPayment(ctx context.Context, invoiceID uuid.UUID, fn func(inv *invoicing.Invoice) (*invoicing.Payment, error)) error {
	args := m.Called(ctx, invoiceID)
	if args.Error(1) != nil {
		return args.Error(1)
	}
	inv := args.Get(0).(*invoicing.Invoice)
	if _, err := fn(inv); err != nil {
		return err
	}
	return nil
}

// MockCustomerDirectory is a mock implementation of CustomerDirectory
type MockCustomerDirectory struct {
	mock.Mock
}

func (m *MockCustomerDirectory) FindCustomer(ctx context.Context, id uuid.UUID) (*acl.CustomerRef, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*acl.CustomerRef), args.Error(1)
}

// MockProductCatalog is a mock implementation of ProductCatalog
type MockProductCatalog struct {
	mock.Mock
}

func (m *MockProductCatalog) ProductExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendReminder(ctx context.Context, reminder acl.Reminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

// MockReportRepository is a mock implementation of ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) InvoiceSummaries(ctx context.Context, from, to time.Time) ([]invoicing.InvoiceSummary, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]invoicing.InvoiceSummary), args.Error(1)
}

func (m *MockReportRepository) PaymentTotalsByMethod(ctx context.Context, from, to time.Time) ([]invoicing.MethodTotal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]invoicing.MethodTotal), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// Test helper functions
func newTestCustomerID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func newTestInvoiceID() uuid.UUID {
	return uuid.MustParse("22222222-2222-2222-2222-222222222222")
}

func newTestCustomer() *acl.CustomerRef {
	return &acl.CustomerRef{
		ID:     newTestCustomerID(),
		Name:   "Acme Traders",
		Email:  "billing@acme.example",
		Active: true,
	}
}

func testItems() []invoicing.InvoiceItem {
	a, _ := invoicing.NewInvoiceItem("Widget", decimal.NewFromInt(2), decimal.RequireFromString("15.00"), decimal.NewFromInt(10), nil)
	b, _ := invoicing.NewInvoiceItem("Gadget", decimal.NewFromInt(1), decimal.RequireFromString("25.00"), decimal.NewFromInt(10), nil)
	return []invoicing.InvoiceItem{a, b}
}

// createTestInvoice builds a DRAFT invoice totalling 60.50
func createTestInvoice(number string) *invoicing.Invoice {
	inv, _ := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		InvoiceNumber: number,
		CustomerID:    newTestCustomerID(),
		CustomerName:  "Acme Traders",
		Items:         testItems(),
		DueDate:       time.Now().AddDate(0, 0, 14),
	})
	return inv
}

// createOverdueInvoice builds a SENT invoice whose due date passed
// daysPast days ago, recomputed into OVERDUE
func createOverdueInvoice(number string, daysPast int) *invoicing.Invoice {
	now := time.Now()
	inv, _ := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		InvoiceNumber: number,
		CustomerID:    newTestCustomerID(),
		CustomerName:  "Acme Traders",
		Items:         testItems(),
		IssueDate:     now.AddDate(0, 0, -daysPast-30),
		DueDate:       now.AddDate(0, 0, -daysPast),
	})
	_ = inv.MarkSent()
	inv.RecomputeStatus(now)
	inv.ClearDomainEvents()
	return inv
}

// createRecurringTestInvoice builds a monthly recurring invoice whose
// next invoice date is already due
func createRecurringTestInvoice(number string) *invoicing.Invoice {
	now := time.Now()
	inv, _ := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		InvoiceNumber:     number,
		CustomerID:        newTestCustomerID(),
		CustomerName:      "Acme Traders",
		Items:             testItems(),
		IssueDate:         now.AddDate(0, -2, 0),
		DueDate:           now.AddDate(0, 0, 14),
		IsRecurring:       true,
		RecurringInterval: invoicing.RecurringIntervalMonthly,
	})
	inv.ClearDomainEvents()
	return inv
}

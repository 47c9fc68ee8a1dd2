package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// InvoiceItemInput is one line item in a create request
type InvoiceItemInput struct {
	Description string     `json:"description" binding:"required"`
	Quantity    float64    `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64    `json:"unit_price" binding:"gte=0"`
	TaxRate     float64    `json:"tax_rate" binding:"gte=0"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
}

// CreateInvoiceInput carries the inputs for invoice creation
type CreateInvoiceInput struct {
	CustomerID        uuid.UUID          `json:"customer_id" binding:"required"`
	Items             []InvoiceItemInput `json:"items" binding:"required"`
	DueDate           time.Time          `json:"due_date" binding:"required"`
	Notes             string             `json:"notes"`
	Terms             string             `json:"terms"`
	IsRecurring       bool               `json:"is_recurring"`
	RecurringInterval string             `json:"recurring_interval"`
}

// UpdateInvoiceInput carries the allowed administrative field changes
type UpdateInvoiceInput struct {
	Status            *string `json:"status"`
	Notes             *string `json:"notes"`
	Terms             *string `json:"terms"`
	IsRecurring       *bool   `json:"is_recurring"`
	RecurringInterval *string `json:"recurring_interval"`
}

// RecordPaymentInput carries the inputs for recording a payment
type RecordPaymentInput struct {
	Amount      float64   `json:"amount" binding:"required"`
	Method      string    `json:"method" binding:"required"`
	Reference   string    `json:"reference"`
	Notes       string    `json:"notes"`
	PaymentDate time.Time `json:"payment_date"`
}

// ListInvoicesInput carries list filters and pagination
type ListInvoicesInput struct {
	CustomerID *uuid.UUID
	Status     *string
	Page       int
	PageSize   int
}

// InvoiceItemResponse represents a line item in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	PaymentDate time.Time       `json:"payment_date"`
}

// InvoiceResponse represents an invoice in API responses, fully
// populated with items and payments
type InvoiceResponse struct {
	ID                uuid.UUID             `json:"id"`
	InvoiceNumber     string                `json:"invoice_number"`
	CustomerID        uuid.UUID             `json:"customer_id"`
	CustomerName      string                `json:"customer_name,omitempty"`
	Items             []InvoiceItemResponse `json:"items"`
	Payments          []PaymentResponse     `json:"payments"`
	Subtotal          decimal.Decimal       `json:"subtotal"`
	TaxAmount         decimal.Decimal       `json:"tax_amount"`
	TotalAmount       decimal.Decimal       `json:"total_amount"`
	RemainingBalance  decimal.Decimal       `json:"remaining_balance"`
	Status            string                `json:"status"`
	IssueDate         time.Time             `json:"issue_date"`
	DueDate           time.Time             `json:"due_date"`
	PaidDate          *time.Time            `json:"paid_date,omitempty"`
	PaymentMethod     *string               `json:"payment_method,omitempty"`
	IsRecurring       bool                  `json:"is_recurring"`
	RecurringInterval *string               `json:"recurring_interval,omitempty"`
	NextInvoiceDate   *time.Time            `json:"next_invoice_date,omitempty"`
	Notes             string                `json:"notes,omitempty"`
	Terms             string                `json:"terms,omitempty"`
	LastReminderAt    *time.Time            `json:"last_reminder_at,omitempty"`
	ReminderCount     int                   `json:"reminder_count"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	Version           int                   `json:"version"`
}

// toInvoiceResponse maps a domain invoice to its response representation
func toInvoiceResponse(inv *invoicing.Invoice) *InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			ProductID:   it.ProductID,
		}
	}
	payments := make([]PaymentResponse, len(inv.Payments))
	for i, p := range inv.Payments {
		payments[i] = PaymentResponse{
			ID:          p.ID,
			InvoiceID:   p.InvoiceID,
			Amount:      p.Amount,
			Method:      p.Method.String(),
			Reference:   p.Reference,
			Notes:       p.Notes,
			PaymentDate: p.PaymentDate,
		}
	}

	resp := &InvoiceResponse{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		CustomerID:       inv.CustomerID,
		CustomerName:     inv.CustomerName,
		Items:            items,
		Payments:         payments,
		Subtotal:         inv.Subtotal,
		TaxAmount:        inv.TaxAmount,
		TotalAmount:      inv.TotalAmount,
		RemainingBalance: inv.RemainingBalance(),
		Status:           inv.Status.String(),
		IssueDate:        inv.IssueDate,
		DueDate:          inv.DueDate,
		PaidDate:         inv.PaidDate,
		IsRecurring:      inv.IsRecurring,
		NextInvoiceDate:  inv.NextInvoiceDate,
		Notes:            inv.Notes,
		Terms:            inv.Terms,
		LastReminderAt:   inv.LastReminderAt,
		ReminderCount:    inv.ReminderCount,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
		Version:          inv.Version,
	}
	if inv.PaymentMethod != nil {
		m := inv.PaymentMethod.String()
		resp.PaymentMethod = &m
	}
	if inv.RecurringInterval != nil {
		i := inv.RecurringInterval.String()
		resp.RecurringInterval = &i
	}
	return resp
}

// toInvoiceResponses maps a slice of domain invoices
func toInvoiceResponses(invoices []invoicing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = *toInvoiceResponse(&invoices[i])
	}
	return out
}

// SweepError is one per-invoice failure collected during a batch sweep
type SweepError struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	Error         string    `json:"error"`
}

// RecurringSweepResult is the outcome of one recurring-generation sweep
type RecurringSweepResult struct {
	GeneratedCount int               `json:"generated_count"`
	Generated      []InvoiceResponse `json:"generated,omitempty"`
	Errors         []SweepError      `json:"errors"`
}

// ReminderSweepResult is the outcome of one reminder-dispatch sweep
type ReminderSweepResult struct {
	SentCount int          `json:"sent_count"`
	Errors    []SweepError `json:"errors"`
}

// MethodBreakdown is the per-method aggregate of a reconciliation report
type MethodBreakdown struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int64           `json:"count"`
}

// ReconciliationReport cross-checks billed against collected amounts
// over a period
type ReconciliationReport struct {
	DateFrom                 time.Time                  `json:"date_from"`
	DateTo                   time.Time                  `json:"date_to"`
	TotalInvoices            int64                      `json:"total_invoices"`
	TotalInvoiceAmount       decimal.Decimal            `json:"total_invoice_amount"`
	TotalPaymentAmount       decimal.Decimal            `json:"total_payment_amount"`
	ReconciliationDifference decimal.Decimal            `json:"reconciliation_difference"`
	FullyPaidInvoices        int64                      `json:"fully_paid_invoices"`
	PartiallyPaidInvoices    int64                      `json:"partially_paid_invoices"`
	UnpaidInvoices           int64                      `json:"unpaid_invoices"`
	PaymentsByMethod         map[string]MethodBreakdown `json:"payments_by_method"`
}

// MonthlyTrendPoint is one month of the analytics trend series
type MonthlyTrendPoint struct {
	Month         string          `json:"month"` // YYYY-MM
	TotalInvoices int64           `json:"total_invoices"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
}

// AnalyticsReport summarizes invoicing activity over a period
type AnalyticsReport struct {
	DateFrom        time.Time           `json:"date_from"`
	DateTo          time.Time           `json:"date_to"`
	TotalInvoices   int64               `json:"total_invoices"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	PaidAmount      decimal.Decimal     `json:"paid_amount"`
	OverdueAmount   decimal.Decimal     `json:"overdue_amount"`
	StatusBreakdown map[string]int64    `json:"status_breakdown"`
	MonthlyTrend    []MonthlyTrendPoint `json:"monthly_trend"`
}

package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceSummary is a per-invoice aggregation row used by the reporting
// read path: invoice totals plus the sum of its recorded payments.
type InvoiceSummary struct {
	ID          uuid.UUID
	Status      InvoiceStatus
	IssueDate   time.Time
	DueDate     time.Time
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
}

// MethodTotal aggregates payments by method over a period
type MethodTotal struct {
	Method PaymentMethod
	Amount decimal.Decimal
	Count  int64
}

// ReportRepository is the read-only aggregation port for reconciliation
// and analytics. Implementations aggregate over the same invoice and
// payment tables the write path uses.
type ReportRepository interface {
	// InvoiceSummaries returns one row per invoice issued in
	// [from, to], with the payment sum folded in
	InvoiceSummaries(ctx context.Context, from, to time.Time) ([]InvoiceSummary, error)

	// PaymentTotalsByMethod groups payments made in [from, to] by method
	PaymentTotalsByMethod(ctx context.Context, from, to time.Time) ([]MethodTotal, error)
}

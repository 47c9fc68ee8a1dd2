package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository implements invoicing.ReportRepository using GORM.
// It aggregates over the same invoice and payment tables the write path
// uses, so reports are always consistent with recorded state.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// InvoiceSummaries returns one row per invoice issued in [from, to],
// with the payment sum folded in
func (r *GormReportRepository) InvoiceSummaries(ctx context.Context, from, to time.Time) ([]invoicing.InvoiceSummary, error) {
	type summaryRow struct {
		ID          uuid.UUID
		Status      string
		IssueDate   time.Time
		DueDate     time.Time
		TotalAmount decimal.Decimal
		PaidAmount  decimal.Decimal
	}

	var rows []summaryRow
	err := r.db.WithContext(ctx).
		Table("invoices i").
		Select(`
			i.id,
			i.status,
			i.issue_date,
			i.due_date,
			i.total_amount,
			COALESCE(SUM(p.amount), 0) as paid_amount
		`).
		Joins("LEFT JOIN payments p ON p.invoice_id = i.id").
		Where("i.issue_date BETWEEN ? AND ?", from, to).
		Group("i.id, i.status, i.issue_date, i.due_date, i.total_amount").
		Order("i.issue_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]invoicing.InvoiceSummary, len(rows))
	for i, row := range rows {
		summaries[i] = invoicing.InvoiceSummary{
			ID:          row.ID,
			Status:      invoicing.InvoiceStatus(row.Status),
			IssueDate:   row.IssueDate,
			DueDate:     row.DueDate,
			TotalAmount: row.TotalAmount,
			PaidAmount:  row.PaidAmount,
		}
	}
	return summaries, nil
}

// PaymentTotalsByMethod groups payments made in [from, to] by method
func (r *GormReportRepository) PaymentTotalsByMethod(ctx context.Context, from, to time.Time) ([]invoicing.MethodTotal, error) {
	type methodRow struct {
		Method string
		Amount decimal.Decimal
		Count  int64
	}

	var rows []methodRow
	err := r.db.WithContext(ctx).
		Table("payments").
		Select(`
			method,
			COALESCE(SUM(amount), 0) as amount,
			COUNT(*) as count
		`).
		Where("payment_date BETWEEN ? AND ?", from, to).
		Group("method").
		Order("method ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make([]invoicing.MethodTotal, len(rows))
	for i, row := range rows {
		totals[i] = invoicing.MethodTotal{
			Method: invoicing.PaymentMethod(row.Method),
			Amount: row.Amount,
			Count:  row.Count,
		}
	}
	return totals, nil
}

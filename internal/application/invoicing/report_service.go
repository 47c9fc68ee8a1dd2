package invoicing

import (
	"context"
	"sort"
	"time"

	"github.com/mhpos/backend/internal/domain/invoicing"
	"github.com/mhpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReportService is the read-only reconciliation and analytics reporter.
// Cancelled invoices are excluded from monetary aggregates; they still
// appear in the status breakdown.
type ReportService struct {
	reports invoicing.ReportRepository
}

// NewReportService creates a new ReportService
func NewReportService(reports invoicing.ReportRepository) *ReportService {
	return &ReportService{reports: reports}
}

// GetPaymentReconciliation cross-checks billed against collected
// amounts. Invoices count by issue_date in [from, to]; the payment
// total and its method breakdown count by payment_date in the same
// range, so collections against older invoices still show up. The
// paid/unpaid classification uses each invoice's lifetime payments.
func (s *ReportService) GetPaymentReconciliation(ctx context.Context, from, to time.Time) (*ReconciliationReport, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	summaries, err := s.reports.InvoiceSummaries(ctx, from, to)
	if err != nil {
		return nil, err
	}
	methodTotals, err := s.reports.PaymentTotalsByMethod(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		DateFrom:                 from,
		DateTo:                   to,
		TotalInvoiceAmount:       decimal.Zero,
		TotalPaymentAmount:       decimal.Zero,
		ReconciliationDifference: decimal.Zero,
		PaymentsByMethod:         make(map[string]MethodBreakdown, len(methodTotals)),
	}

	for _, row := range summaries {
		if row.Status == invoicing.InvoiceStatusCancelled {
			continue
		}
		report.TotalInvoices++
		report.TotalInvoiceAmount = report.TotalInvoiceAmount.Add(row.TotalAmount)

		switch {
		case row.PaidAmount.IsZero():
			report.UnpaidInvoices++
		case row.PaidAmount.GreaterThanOrEqual(row.TotalAmount):
			report.FullyPaidInvoices++
		default:
			report.PartiallyPaidInvoices++
		}
	}
	for _, mt := range methodTotals {
		report.TotalPaymentAmount = report.TotalPaymentAmount.Add(mt.Amount)
		report.PaymentsByMethod[mt.Method.String()] = MethodBreakdown{
			Amount: mt.Amount,
			Count:  mt.Count,
		}
	}
	report.ReconciliationDifference = report.TotalInvoiceAmount.Sub(report.TotalPaymentAmount)
	return report, nil
}

// GetInvoiceAnalytics summarizes invoicing activity for invoices issued
// in [from, to], including a chronologically sorted per-month trend
func (s *ReportService) GetInvoiceAnalytics(ctx context.Context, from, to time.Time) (*AnalyticsReport, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	summaries, err := s.reports.InvoiceSummaries(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &AnalyticsReport{
		DateFrom:        from,
		DateTo:          to,
		TotalAmount:     decimal.Zero,
		PaidAmount:      decimal.Zero,
		OverdueAmount:   decimal.Zero,
		StatusBreakdown: make(map[string]int64),
	}
	months := make(map[string]*MonthlyTrendPoint)

	for _, row := range summaries {
		report.StatusBreakdown[row.Status.String()]++
		if row.Status == invoicing.InvoiceStatusCancelled {
			continue
		}
		report.TotalInvoices++
		report.TotalAmount = report.TotalAmount.Add(row.TotalAmount)
		report.PaidAmount = report.PaidAmount.Add(row.PaidAmount)
		if row.Status == invoicing.InvoiceStatusOverdue {
			report.OverdueAmount = report.OverdueAmount.Add(row.TotalAmount.Sub(row.PaidAmount))
		}

		key := row.IssueDate.Format("2006-01")
		point, ok := months[key]
		if !ok {
			point = &MonthlyTrendPoint{
				Month:       key,
				TotalAmount: decimal.Zero,
				PaidAmount:  decimal.Zero,
			}
			months[key] = point
		}
		point.TotalInvoices++
		point.TotalAmount = point.TotalAmount.Add(row.TotalAmount)
		point.PaidAmount = point.PaidAmount.Add(row.PaidAmount)
	}

	report.MonthlyTrend = make([]MonthlyTrendPoint, 0, len(months))
	for _, point := range months {
		report.MonthlyTrend = append(report.MonthlyTrend, *point)
	}
	sort.Slice(report.MonthlyTrend, func(i, j int) bool {
		return report.MonthlyTrend[i].Month < report.MonthlyTrend[j].Month
	})
	return report, nil
}

// validateRange rejects malformed report date ranges
func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return shared.NewDomainError("INVALID_DATE_RANGE", "Both date_from and date_to are required")
	}
	if to.Before(from) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "date_to cannot be before date_from")
	}
	return nil
}

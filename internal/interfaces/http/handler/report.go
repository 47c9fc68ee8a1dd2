package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	appinvoicing "github.com/mhpos/backend/internal/application/invoicing"
)

// dateLayout is the wire format of report range boundaries
const dateLayout = "2006-01-02"

// ReportHandler handles reconciliation and analytics endpoints
type ReportHandler struct {
	BaseHandler
	reports *appinvoicing.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *appinvoicing.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// RegisterRoutes registers report routes on the API group
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("/reconciliation", h.Reconciliation)
		invoices.GET("/analytics", h.Analytics)
	}
}

// Reconciliation handles GET /invoices/reconciliation
func (h *ReportHandler) Reconciliation(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}

	report, err := h.reports.GetPaymentReconciliation(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Analytics handles GET /invoices/analytics
func (h *ReportHandler) Analytics(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}

	report, err := h.reports.GetInvoiceAnalytics(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// parseRange reads date_from and date_to query parameters. The upper
// bound is extended to the end of its day so the range is inclusive.
func (h *ReportHandler) parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	fromStr := c.Query("date_from")
	toStr := c.Query("date_to")
	if fromStr == "" || toStr == "" {
		h.BadRequest(c, "date_from and date_to are required (YYYY-MM-DD)")
		return time.Time{}, time.Time{}, false
	}

	from, err := time.Parse(dateLayout, fromStr)
	if err != nil {
		h.BadRequest(c, "Invalid date_from, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(dateLayout, toStr)
	if err != nil {
		h.BadRequest(c, "Invalid date_to, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}

	to = to.Add(24*time.Hour - time.Nanosecond)
	return from, to, true
}

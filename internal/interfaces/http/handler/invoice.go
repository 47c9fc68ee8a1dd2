package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appinvoicing "github.com/mhpos/backend/internal/application/invoicing"
	"github.com/mhpos/backend/internal/domain/shared"
	"github.com/mhpos/backend/internal/infrastructure/jobs"
)

// sweepLeaseKey mirrors the runner's key scheme so an on-demand trigger
// and a scheduled tick never run the same sweep concurrently.
const (
	recurringSweepLease = "jobs:recurring-invoices"
	reminderSweepLease  = "jobs:overdue-reminders"
)

// InvoiceHandler handles invoice lifecycle, payment and sweep endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices  *appinvoicing.InvoiceService
	payments  *appinvoicing.PaymentService
	recurring *appinvoicing.RecurringService
	reminders *appinvoicing.ReminderService
	locker    jobs.Locker
	leaseTTL  time.Duration
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(
	invoices *appinvoicing.InvoiceService,
	payments *appinvoicing.PaymentService,
	recurring *appinvoicing.RecurringService,
	reminders *appinvoicing.ReminderService,
	locker jobs.Locker,
	leaseTTL time.Duration,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoices:  invoices,
		payments:  payments,
		recurring: recurring,
		reminders: reminders,
		locker:    locker,
		leaseTTL:  leaseTTL,
	}
}

// RegisterRoutes registers invoice routes on the API group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/overdue", h.ListOverdue)
		invoices.POST("/generate-recurring", h.GenerateRecurring)
		invoices.POST("/reminders", h.SendReminders)
		invoices.GET("/:id", h.Get)
		invoices.PUT("/:id", h.Update)
		invoices.POST("/:id/payments", h.RecordPayment)
		invoices.POST("/:id/refresh-status", h.RefreshStatus)
	}
}

// listInvoicesQuery binds list filters from the query string
type listInvoicesQuery struct {
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Status     string `form:"status"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var input appinvoicing.CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.invoices.CreateInvoice(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var query listInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	input := appinvoicing.ListInvoicesInput{
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.CustomerID != "" {
		customerID, err := uuid.Parse(query.CustomerID)
		if err != nil {
			h.BadRequest(c, "Invalid customer_id")
			return
		}
		input.CustomerID = &customerID
	}
	if query.Status != "" {
		input.Status = &query.Status
	}

	page, err := h.invoices.ListInvoices(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	resp, err := h.invoices.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var input appinvoicing.UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.invoices.UpdateInvoice(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordPayment handles POST /invoices/:id/payments
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var input appinvoicing.RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.payments.RecordPayment(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RefreshStatus handles POST /invoices/:id/refresh-status
func (h *InvoiceHandler) RefreshStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	resp, err := h.invoices.UpdateInvoiceStatus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListOverdue handles GET /invoices/overdue
func (h *InvoiceHandler) ListOverdue(c *gin.Context) {
	invoices, err := h.invoices.ListOverdueInvoices(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// GenerateRecurring handles POST /invoices/generate-recurring. It takes
// the same lease as the scheduled sweep; a held lease means a sweep is
// already in flight.
func (h *InvoiceHandler) GenerateRecurring(c *gin.Context) {
	lease, err := h.locker.Obtain(c.Request.Context(), recurringSweepLease, h.leaseTTL)
	if err != nil {
		h.handleLeaseError(c, err)
		return
	}
	defer func() { _ = lease.Release(c.Request.Context()) }()

	result, err := h.recurring.GenerateRecurringInvoices(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SendReminders handles POST /invoices/reminders
func (h *InvoiceHandler) SendReminders(c *gin.Context) {
	lease, err := h.locker.Obtain(c.Request.Context(), reminderSweepLease, h.leaseTTL)
	if err != nil {
		h.handleLeaseError(c, err)
		return
	}
	defer func() { _ = lease.Release(c.Request.Context()) }()

	result, err := h.reminders.SendAutomatedReminders(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *InvoiceHandler) handleLeaseError(c *gin.Context, err error) {
	if errors.Is(err, jobs.ErrLeaseHeld) {
		h.HandleError(c, shared.NewDomainError("SWEEP_IN_PROGRESS", "A sweep for this job is already running"))
		return
	}
	h.HandleError(c, err)
}

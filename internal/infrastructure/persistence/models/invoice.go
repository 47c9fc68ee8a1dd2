package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/invoicing"
	"github.com/mhpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber     string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_number"`
	CustomerID        uuid.UUID               `gorm:"type:uuid;not null;index"`
	CustomerName      string                  `gorm:"type:varchar(200);not null"`
	Items             []InvoiceItemModel      `gorm:"foreignKey:InvoiceID;references:ID"`
	Payments          []PaymentModel          `gorm:"foreignKey:InvoiceID;references:ID"`
	Subtotal          decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	TaxAmount         decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	TotalAmount       decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Status            invoicing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	IssueDate         time.Time               `gorm:"not null;index"`
	DueDate           time.Time               `gorm:"not null;index"`
	PaidDate          *time.Time
	PaymentMethod     *string    `gorm:"type:varchar(20)"`
	IsRecurring       bool       `gorm:"not null;default:false;index"`
	RecurringInterval *string    `gorm:"type:varchar(20)"`
	NextInvoiceDate   *time.Time `gorm:"index"`
	Notes             string     `gorm:"type:text"`
	Terms             string     `gorm:"type:text"`
	LastReminderAt    *time.Time
	ReminderCount     int `gorm:"not null;default:0"`
	CancelledAt       *time.Time
	CancelReason      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is the persistence model for an invoice line item.
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// PaymentModel is the persistence model for a payment. Rows are
// append-only: never updated or deleted once written.
type PaymentModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method      string          `gorm:"type:varchar(20);not null;index"`
	Reference   string          `gorm:"type:varchar(100)"`
	Notes       string          `gorm:"type:text"`
	PaymentDate time.Time       `gorm:"not null;index"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		InvoiceNumber:   m.InvoiceNumber,
		CustomerID:      m.CustomerID,
		CustomerName:    m.CustomerName,
		Subtotal:        m.Subtotal,
		TaxAmount:       m.TaxAmount,
		TotalAmount:     m.TotalAmount,
		Status:          m.Status,
		IssueDate:       m.IssueDate,
		DueDate:         m.DueDate,
		PaidDate:        m.PaidDate,
		IsRecurring:     m.IsRecurring,
		NextInvoiceDate: m.NextInvoiceDate,
		Notes:           m.Notes,
		Terms:           m.Terms,
		LastReminderAt:  m.LastReminderAt,
		ReminderCount:   m.ReminderCount,
		CancelledAt:     m.CancelledAt,
		CancelReason:    m.CancelReason,
	}
	if m.PaymentMethod != nil {
		method := invoicing.PaymentMethod(*m.PaymentMethod)
		inv.PaymentMethod = &method
	}
	if m.RecurringInterval != nil {
		interval := invoicing.RecurringInterval(*m.RecurringInterval)
		inv.RecurringInterval = &interval
	}

	inv.Items = make([]invoicing.InvoiceItem, len(m.Items))
	for i, item := range m.Items {
		inv.Items[i] = item.ToDomain()
	}
	inv.Payments = make([]invoicing.Payment, len(m.Payments))
	for i, p := range m.Payments {
		inv.Payments[i] = p.ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice.
// Items and payments are mapped separately because GORM associations
// are saved explicitly by the repository.
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.Subtotal = inv.Subtotal
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.Status = inv.Status
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.PaidDate = inv.PaidDate
	m.IsRecurring = inv.IsRecurring
	m.NextInvoiceDate = inv.NextInvoiceDate
	m.Notes = inv.Notes
	m.Terms = inv.Terms
	m.LastReminderAt = inv.LastReminderAt
	m.ReminderCount = inv.ReminderCount
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
	if inv.PaymentMethod != nil {
		method := inv.PaymentMethod.String()
		m.PaymentMethod = &method
	} else {
		m.PaymentMethod = nil
	}
	if inv.RecurringInterval != nil {
		interval := inv.RecurringInterval.String()
		m.RecurringInterval = &interval
	} else {
		m.RecurringInterval = nil
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// ToDomain converts the persistence model to a domain InvoiceItem.
func (m *InvoiceItemModel) ToDomain() invoicing.InvoiceItem {
	return invoicing.InvoiceItem{
		ID:          m.ID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TaxRate:     m.TaxRate,
		ProductID:   m.ProductID,
	}
}

// InvoiceItemModelFromDomain creates a persistence model from a domain item.
func InvoiceItemModelFromDomain(invoiceID uuid.UUID, item invoicing.InvoiceItem) InvoiceItemModel {
	return InvoiceItemModel{
		ID:          item.ID,
		InvoiceID:   invoiceID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		TaxRate:     item.TaxRate,
		ProductID:   item.ProductID,
	}
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() invoicing.Payment {
	return invoicing.Payment{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Amount:      m.Amount,
		Method:      invoicing.PaymentMethod(m.Method),
		Reference:   m.Reference,
		Notes:       m.Notes,
		PaymentDate: m.PaymentDate,
		CreatedAt:   m.CreatedAt,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain payment.
func PaymentModelFromDomain(p invoicing.Payment) PaymentModel {
	return PaymentModel{
		ID:          p.ID,
		InvoiceID:   p.InvoiceID,
		Amount:      p.Amount,
		Method:      p.Method.String(),
		Reference:   p.Reference,
		Notes:       p.Notes,
		PaymentDate: p.PaymentDate,
		CreatedAt:   p.CreatedAt,
	}
}

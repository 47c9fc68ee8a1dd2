package invoicing

import (
	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceItem is one priced, taxed line on an invoice.
// Items are owned exclusively by their invoice and never shared.
type InvoiceItem struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"` // percentage, e.g. 10 for 10%
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
}

// NewInvoiceItem creates a validated invoice line item
func NewInvoiceItem(description string, quantity, unitPrice, taxRate decimal.Decimal, productID *uuid.UUID) (InvoiceItem, error) {
	if description == "" {
		return InvoiceItem{}, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if !quantity.IsPositive() {
		return InvoiceItem{}, shared.NewDomainError("INVALID_ITEM", "Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return InvoiceItem{}, shared.NewDomainError("INVALID_ITEM", "Item unit price cannot be negative")
	}
	if taxRate.IsNegative() {
		return InvoiceItem{}, shared.NewDomainError("INVALID_ITEM", "Item tax rate cannot be negative")
	}
	return InvoiceItem{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TaxRate:     taxRate,
		ProductID:   productID,
	}, nil
}

// LineSubtotal returns quantity * unit price
func (it InvoiceItem) LineSubtotal() decimal.Decimal {
	return it.Quantity.Mul(it.UnitPrice)
}

// LineTax returns quantity * unit price * tax rate / 100
func (it InvoiceItem) LineTax() decimal.Decimal {
	return it.LineSubtotal().Mul(it.TaxRate).Div(decimal.NewFromInt(100))
}

// Clone returns a copy of the item with a fresh identity, for recurring
// invoice generation. The priced content is carried over unchanged.
func (it InvoiceItem) Clone() InvoiceItem {
	clone := it
	clone.ID = uuid.New()
	return clone
}

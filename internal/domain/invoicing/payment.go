package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/shared"
	"github.com/mhpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Payment is one payment recorded against an invoice.
// Payments are append-only: once recorded they are never edited or deleted.
type Payment struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	PaymentDate time.Time       `json:"payment_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewPayment creates a validated payment record
func NewPayment(invoiceID uuid.UUID, amount valueobject.Money, method PaymentMethod, reference, notes string, paymentDate time.Time) (Payment, error) {
	if invoiceID == uuid.Nil {
		return Payment{}, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !amount.IsPositive() {
		return Payment{}, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return Payment{}, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	return Payment{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		Amount:      amount.Amount(),
		Method:      method,
		Reference:   reference,
		Notes:       notes,
		PaymentDate: paymentDate,
		CreatedAt:   time.Now(),
	}, nil
}

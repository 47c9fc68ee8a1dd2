package invoicing

import "time"

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"     // Created, not yet sent to the customer
	InvoiceStatusSent      InvoiceStatus = "SENT"      // Delivered, awaiting payment
	InvoiceStatusPaid      InvoiceStatus = "PAID"      // Fully paid
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"   // Past due date with outstanding balance
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED" // Administratively cancelled
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// CanAcceptPayment returns true if payments can be recorded in this status
func (s InvoiceStatus) CanAcceptPayment() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue:
		return true
	}
	return false
}

// statusTransitions is the closed transition table for invoice statuses.
// Terminal states have no outgoing transitions.
var statusTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:   {InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusSent:    {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusOverdue: {InvoiceStatusPaid},
}

// CanTransitionTo reports whether the transition from s to target is allowed
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "CASH"
	PaymentMethodCard    PaymentMethod = "CARD"
	PaymentMethodDigital PaymentMethod = "DIGITAL"
	PaymentMethodCredit  PaymentMethod = "CREDIT"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodDigital, PaymentMethodCredit:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// RecurringInterval represents the billing period of a recurring invoice
type RecurringInterval string

const (
	RecurringIntervalDaily   RecurringInterval = "daily"
	RecurringIntervalWeekly  RecurringInterval = "weekly"
	RecurringIntervalMonthly RecurringInterval = "monthly"
	RecurringIntervalYearly  RecurringInterval = "yearly"
)

// IsValid checks if the recurring interval is valid
func (i RecurringInterval) IsValid() bool {
	switch i {
	case RecurringIntervalDaily, RecurringIntervalWeekly,
		RecurringIntervalMonthly, RecurringIntervalYearly:
		return true
	}
	return false
}

// String returns the string representation of RecurringInterval
func (i RecurringInterval) String() string {
	return string(i)
}

// Next returns the given time advanced by one interval
func (i RecurringInterval) Next(from time.Time) time.Time {
	switch i {
	case RecurringIntervalDaily:
		return from.AddDate(0, 0, 1)
	case RecurringIntervalWeekly:
		return from.AddDate(0, 0, 7)
	case RecurringIntervalMonthly:
		return from.AddDate(0, 1, 0)
	case RecurringIntervalYearly:
		return from.AddDate(1, 0, 0)
	}
	return from
}

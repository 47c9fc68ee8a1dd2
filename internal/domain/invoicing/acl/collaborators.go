package acl

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRef is a read-only snapshot of a customer from the directory
type CustomerRef struct {
	ID     uuid.UUID
	Name   string
	Email  string
	Phone  string
	Active bool
}

// CustomerDirectory looks up customers by id. Returns
// shared.ErrNotFound when the customer does not exist.
type CustomerDirectory interface {
	FindCustomer(ctx context.Context, id uuid.UUID) (*CustomerRef, error)
}

// ProductCatalog validates optional line-item product references
type ProductCatalog interface {
	ProductExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Reminder is the message dispatched for an overdue invoice
type Reminder struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	CustomerID    uuid.UUID
	CustomerName  string
	AmountDue     string
	DueDate       string
	DaysOverdue   int
}

// Notifier sends reminder messages through the external notification
// service. Dispatch failures are non-fatal to the caller's sweep.
type Notifier interface {
	SendReminder(ctx context.Context, reminder Reminder) error
}

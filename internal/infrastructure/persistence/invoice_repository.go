package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/invoicing"
	"github.com/mhpos/backend/internal/domain/shared"
	"github.com/mhpos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create persists a new invoice with its items in one transaction. A
// duplicate invoice number surfaces as shared.ErrAlreadyExists.
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoicing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.InvoiceModelFromDomain(inv)
		if err := tx.Omit("Items", "Payments").Create(model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		for _, item := range inv.Items {
			itemModel := models.InvoiceItemModelFromDomain(inv.ID, item)
			if err := tx.Create(&itemModel).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID loads an invoice with its items and payments
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payments.created_at ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns invoices matching the filter with the total count
func (r *GormInvoiceRepository) List(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoiceModels []models.InvoiceModel
	if err := query.
		Preload("Items").
		Preload("Payments").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, total, nil
}

// Save persists aggregate changes with optimistic locking. A stale
// version surfaces as shared.ErrConcurrencyConflict.
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoicing.Invoice) error {
	return r.saveWithLock(r.db.WithContext(ctx), inv)
}

func (r *GormInvoiceRepository) saveWithLock(tx *gorm.DB, inv *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	result := tx.
		Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// NextInvoiceNumber returns the next sequential number for the year by
// scanning the current maximum. The unique index on invoice_number is
// the backstop against concurrent callers racing for the same number.
func (r *GormInvoiceRepository) NextInvoiceNumber(ctx context.Context, year int) (string, error) {
	prefix := invoicing.InvoiceNumberPrefixForYear(year)

	// Sequences widen past four digits, so order by length before value
	// instead of taking the lexicographic maximum.
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Order("LENGTH(invoice_number) DESC, invoice_number DESC").
		Limit(1).
		Pluck("invoice_number", &numbers).Error
	if err != nil {
		return "", err
	}

	sequence := 1
	if len(numbers) > 0 {
		suffix := strings.TrimPrefix(numbers[0], prefix)
		last, err := strconv.Atoi(suffix)
		if err != nil {
			return "", fmt.Errorf("malformed invoice number %q: %w", numbers[0], err)
		}
		sequence = last + 1
	}
	return invoicing.FormatInvoiceNumber(year, sequence), nil
}

// SaveGenerated persists a spawned child invoice and the advanced
// parent in one transaction
func (r *GormInvoiceRepository) SaveGenerated(ctx context.Context, child, parent *invoicing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		childModel := models.InvoiceModelFromDomain(child)
		if err := tx.Omit("Items", "Payments").Create(childModel).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		for _, item := range child.Items {
			itemModel := models.InvoiceItemModelFromDomain(child.ID, item)
			if err := tx.Create(&itemModel).Error; err != nil {
				return err
			}
		}
		return r.saveWithLock(tx, parent)
	})
}

// FindOverdue returns non-terminal invoices past their due date
func (r *GormInvoiceRepository) FindOverdue(ctx context.Context, now time.Time) ([]invoicing.Invoice, error) {
	return r.findAll(ctx, r.db.WithContext(ctx).
		Where("status IN ?", []string{
			invoicing.InvoiceStatusSent.String(),
			invoicing.InvoiceStatusOverdue.String(),
		}).
		Where("due_date < ?", now).
		Order("due_date ASC"))
}

// FindDueRecurring returns recurring invoices whose next invoice date
// is at or before now
func (r *GormInvoiceRepository) FindDueRecurring(ctx context.Context, now time.Time) ([]invoicing.Invoice, error) {
	return r.findAll(ctx, r.db.WithContext(ctx).
		Where("is_recurring = ?", true).
		Where("status NOT IN ?", []string{invoicing.InvoiceStatusCancelled.String()}).
		Where("next_invoice_date IS NOT NULL AND next_invoice_date <= ?", now).
		Order("next_invoice_date ASC"))
}

// FindReminderCandidates returns SENT/OVERDUE invoices whose due date
// is more than the grace period in the past
func (r *GormInvoiceRepository) FindReminderCandidates(ctx context.Context, now time.Time, grace time.Duration) ([]invoicing.Invoice, error) {
	cutoff := now.Add(-grace)
	return r.findAll(ctx, r.db.WithContext(ctx).
		Where("status IN ?", []string{
			invoicing.InvoiceStatusSent.String(),
			invoicing.InvoiceStatusOverdue.String(),
		}).
		Where("due_date < ?", cutoff).
		Order("due_date ASC"))
}

func (r *GormInvoiceRepository) findAll(ctx context.Context, query *gorm.DB) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := query.
		Preload("Items").
		Preload("Payments").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// RecordPayment loads the invoice with its row locked for update, runs
// fn against it, then persists the invoice and any payment fn appended.
// The lock serializes concurrent payments against one invoice so the
// remaining-balance check in fn always sees committed state.
func (r *GormInvoiceRepository) RecordPayment(ctx context.Context, invoiceID uuid.UUID, fn func(inv *invoicing.Invoice) (*invoicing.Payment, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.InvoiceModel
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&model, "id = ?", invoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		// Re-read into a fresh struct: reusing the locked model would make
		// gorm treat its populated primary key as an extra predicate.
		var loaded models.InvoiceModel
		if err := tx.
			Preload("Items").
			Preload("Payments").
			First(&loaded, "id = ?", invoiceID).Error; err != nil {
			return err
		}

		inv := loaded.ToDomain()
		payment, err := fn(inv)
		if err != nil {
			return err
		}

		if payment != nil {
			paymentModel := models.PaymentModelFromDomain(*payment)
			if err := tx.Create(&paymentModel).Error; err != nil {
				return err
			}
		}
		return r.saveWithLock(tx, inv)
	})
}

// isUniqueViolation reports whether err is a unique constraint violation.
// The GORM postgres driver translates these to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

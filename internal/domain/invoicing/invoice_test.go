package invoicing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mhpos/backend/internal/domain/shared"
	"github.com/mhpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(NewInvoiceParams{
		InvoiceNumber: "INV-2026-0001",
		CustomerID:    uuid.New(),
		CustomerName:  "Test Customer",
		Items: []InvoiceItem{
			mustItem(t, "Widget", 2, 15.00, 10),
			mustItem(t, "Gadget", 1, 25.00, 10),
		},
		DueDate: time.Now().AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	return inv
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

// ============================================
// Creation
// ============================================

func TestNewInvoice(t *testing.T) {
	t.Run("creates draft invoice with derived totals", func(t *testing.T) {
		inv := testInvoice(t)

		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.Equal(t, "55.00", inv.Subtotal.StringFixed(2))
		assert.Equal(t, "5.50", inv.TaxAmount.StringFixed(2))
		assert.Equal(t, "60.50", inv.TotalAmount.StringFixed(2))
		assert.Empty(t, inv.Payments)
		assert.Nil(t, inv.PaidDate)
		assert.False(t, inv.IsRecurring)
		assert.Equal(t, 1, inv.Version)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		_, err := NewInvoice(NewInvoiceParams{
			InvoiceNumber: "INV-2026-0002",
			CustomerID:    uuid.New(),
			DueDate:       time.Now().AddDate(0, 0, 30),
		})
		assert.Equal(t, "EMPTY_ITEMS", domainCode(t, err))
	})

	t.Run("rejects past due date", func(t *testing.T) {
		_, err := NewInvoice(NewInvoiceParams{
			InvoiceNumber: "INV-2026-0002",
			CustomerID:    uuid.New(),
			Items:         []InvoiceItem{mustItem(t, "Widget", 1, 10, 0)},
			DueDate:       time.Now().AddDate(0, 0, -1),
		})
		assert.Equal(t, "PAST_DUE_DATE", domainCode(t, err))
	})

	t.Run("rejects missing customer", func(t *testing.T) {
		_, err := NewInvoice(NewInvoiceParams{
			InvoiceNumber: "INV-2026-0002",
			Items:         []InvoiceItem{mustItem(t, "Widget", 1, 10, 0)},
			DueDate:       time.Now().AddDate(0, 0, 30),
		})
		assert.Equal(t, "INVALID_CUSTOMER", domainCode(t, err))
	})

	t.Run("rejects recurring without valid interval", func(t *testing.T) {
		_, err := NewInvoice(NewInvoiceParams{
			InvoiceNumber: "INV-2026-0002",
			CustomerID:    uuid.New(),
			Items:         []InvoiceItem{mustItem(t, "Widget", 1, 10, 0)},
			DueDate:       time.Now().AddDate(0, 0, 30),
			IsRecurring:   true,
		})
		assert.Equal(t, "INVALID_INTERVAL", domainCode(t, err))
	})

	t.Run("recurring invoice gets next invoice date one interval after issue", func(t *testing.T) {
		inv, err := NewInvoice(NewInvoiceParams{
			InvoiceNumber:     "INV-2026-0003",
			CustomerID:        uuid.New(),
			Items:             []InvoiceItem{mustItem(t, "Subscription", 1, 99, 16)},
			DueDate:           time.Now().AddDate(0, 0, 14),
			IsRecurring:       true,
			RecurringInterval: RecurringIntervalMonthly,
		})
		require.NoError(t, err)
		require.NotNil(t, inv.NextInvoiceDate)
		assert.Equal(t, inv.IssueDate.AddDate(0, 1, 0), *inv.NextInvoiceDate)
	})

	t.Run("raises created event", func(t *testing.T) {
		inv := testInvoice(t)
		events := inv.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoiceCreated, events[0].EventType())
	})
}

// ============================================
// Payments and conservation invariant
// ============================================

func TestInvoice_ApplyPayment(t *testing.T) {
	t.Run("partial then completing payment", func(t *testing.T) {
		inv := testInvoice(t)

		_, err := inv.ApplyPayment(valueobject.NewMoneyFromFloat(50.00), PaymentMethodCash, "", "", time.Now())
		require.NoError(t, err)
		assert.NotEqual(t, InvoiceStatusPaid, inv.Status)
		assert.Equal(t, "10.50", inv.RemainingBalance().StringFixed(2))
		assert.Nil(t, inv.PaidDate)

		paidAt := time.Now()
		p, err := inv.ApplyPayment(valueobject.NewMoneyFromFloat(10.50), PaymentMethodCard, "ref-1", "", paidAt)
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		require.NotNil(t, inv.PaidDate)
		assert.Equal(t, p.PaymentDate, *inv.PaidDate)
		require.NotNil(t, inv.PaymentMethod)
		assert.Equal(t, PaymentMethodCard, *inv.PaymentMethod)
		assert.True(t, inv.RemainingBalance().IsZero())
	})

	t.Run("overpayment is rejected and leaves invoice unchanged", func(t *testing.T) {
		inv := testInvoice(t)
		_, err := inv.ApplyPayment(valueobject.NewMoneyFromFloat(60.50), PaymentMethodCash, "", "", time.Now())
		require.NoError(t, err)

		before := len(inv.Payments)
		_, err = inv.ApplyPayment(valueobject.NewMoneyFromFloat(0.01), PaymentMethodCash, "", "", time.Now())
		assert.Equal(t, "EXCEEDS_BALANCE", domainCode(t, err))
		assert.Len(t, inv.Payments, before)
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("payment exceeding remaining balance fails with EXCEEDS_BALANCE", func(t *testing.T) {
		inv := testInvoice(t)
		_, err := inv.ApplyPayment(valueobject.NewMoneyFromFloat(50.00), PaymentMethodCash, "", "", time.Now())
		require.NoError(t, err)

		before := len(inv.Payments)
		beforeStatus := inv.Status
		_, err = inv.ApplyPayment(valueobject.NewMoneyFromFloat(10.51), PaymentMethodCash, "", "", time.Now())
		assert.Equal(t, "EXCEEDS_BALANCE", domainCode(t, err))
		assert.Len(t, inv.Payments, before)
		assert.Equal(t, beforeStatus, inv.Status)
	})

	t.Run("non-positive payment is rejected", func(t *testing.T) {
		inv := testInvoice(t)
		_, err := inv.ApplyPayment(valueobject.Zero(), PaymentMethodCash, "", "", time.Now())
		assert.Error(t, err)
		_, err = inv.ApplyPayment(valueobject.NewMoneyFromFloat(-5), PaymentMethodCash, "", "", time.Now())
		assert.Error(t, err)
		assert.Empty(t, inv.Payments)
	})

	t.Run("payment on cancelled invoice is rejected", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.Cancel("customer churned"))
		_, err := inv.ApplyPayment(valueobject.NewMoneyFromFloat(10), PaymentMethodCash, "", "", time.Now())
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
	})

	t.Run("conservation invariant holds after every payment", func(t *testing.T) {
		inv := testInvoice(t)
		for _, amount := range []float64{20, 20, 20, 0.50} {
			_, err := inv.ApplyPayment(valueobject.NewMoneyFromFloat(amount), PaymentMethodCash, "", "", time.Now())
			require.NoError(t, err)
			assert.True(t, inv.PaidAmount().LessThanOrEqual(inv.TotalAmount))
		}
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})
}

// ============================================
// Derived status recomputation
// ============================================

func TestInvoice_RecomputeStatus(t *testing.T) {
	t.Run("fully paid invoice becomes PAID and recompute is idempotent", func(t *testing.T) {
		inv := testInvoice(t)
		_, err := inv.ApplyPayment(valueobject.NewMoneyFromFloat(60.50), PaymentMethodCash, "", "", time.Now())
		require.NoError(t, err)
		require.Equal(t, InvoiceStatusPaid, inv.Status)

		versionBefore := inv.Version
		changed := inv.RecomputeStatus(time.Now())
		assert.False(t, changed)
		assert.Equal(t, versionBefore, inv.Version)
	})

	t.Run("sent invoice past due becomes OVERDUE", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.MarkSent())
		inv.DueDate = time.Now().AddDate(0, 0, -3)

		changed := inv.RecomputeStatus(time.Now())
		assert.True(t, changed)
		assert.Equal(t, InvoiceStatusOverdue, inv.Status)

		// repeat run is a no-op
		assert.False(t, inv.RecomputeStatus(time.Now()))
	})

	t.Run("draft invoice past due stays DRAFT", func(t *testing.T) {
		inv := testInvoice(t)
		inv.DueDate = time.Now().AddDate(0, 0, -3)
		assert.False(t, inv.RecomputeStatus(time.Now()))
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
	})

	t.Run("overdue invoice with full payment becomes PAID regardless of due date", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.MarkSent())
		inv.DueDate = time.Now().AddDate(0, 0, -3)
		require.True(t, inv.RecomputeStatus(time.Now()))
		require.Equal(t, InvoiceStatusOverdue, inv.Status)

		_, err := inv.ApplyPayment(valueobject.NewMoneyFromFloat(60.50), PaymentMethodDigital, "", "", time.Now())
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("sets paid date when full payment observed without one", func(t *testing.T) {
		inv := testInvoice(t)
		paymentDate := time.Now().Add(-time.Hour)
		payment, err := NewPayment(inv.ID, valueobject.NewMoneyFromFloat(60.50), PaymentMethodCash, "", "", paymentDate)
		require.NoError(t, err)
		inv.Payments = append(inv.Payments, payment)

		require.True(t, inv.RecomputeStatus(time.Now()))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		require.NotNil(t, inv.PaidDate)
		assert.Equal(t, paymentDate, *inv.PaidDate)
	})
}

// ============================================
// Administrative transitions
// ============================================

func TestInvoice_ChangeStatus(t *testing.T) {
	t.Run("draft to sent", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.ChangeStatus(InvoiceStatusSent))
		assert.Equal(t, InvoiceStatusSent, inv.Status)
	})

	t.Run("cannot leave terminal states", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.Cancel("duplicate"))
		err := inv.ChangeStatus(InvoiceStatusSent)
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
	})

	t.Run("rejects transitions outside the table", func(t *testing.T) {
		inv := testInvoice(t)
		err := inv.ChangeStatus(InvoiceStatusOverdue)
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		inv := testInvoice(t)
		err := inv.ChangeStatus(InvoiceStatus("ARCHIVED"))
		assert.Equal(t, "INVALID_STATUS", domainCode(t, err))
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		inv := testInvoice(t)
		versionBefore := inv.Version
		require.NoError(t, inv.ChangeStatus(InvoiceStatusDraft))
		assert.Equal(t, versionBefore, inv.Version)
	})

	t.Run("overdue cannot be cancelled", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.MarkSent())
		inv.DueDate = time.Now().AddDate(0, 0, -1)
		require.True(t, inv.RecomputeStatus(time.Now()))

		err := inv.Cancel("too late")
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
	})
}

// ============================================
// Recurring generation
// ============================================

func testRecurringInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(NewInvoiceParams{
		InvoiceNumber:     "INV-2026-0010",
		CustomerID:        uuid.New(),
		CustomerName:      "Subscriber",
		Items:             []InvoiceItem{mustItem(t, "Subscription", 1, 99.00, 16)},
		DueDate:           time.Now().AddDate(0, 0, 14),
		IsRecurring:       true,
		RecurringInterval: RecurringIntervalMonthly,
	})
	require.NoError(t, err)
	return inv
}

func TestInvoice_SpawnNextOccurrence(t *testing.T) {
	t.Run("spawns independent child and advances parent", func(t *testing.T) {
		parent := testRecurringInvoice(t)
		due := parent.NextInvoiceDate.Add(time.Hour)
		parentNextBefore := *parent.NextInvoiceDate

		child, err := parent.SpawnNextOccurrence("INV-2026-0011", due, 30)
		require.NoError(t, err)

		assert.Equal(t, "INV-2026-0011", child.InvoiceNumber)
		assert.Equal(t, InvoiceStatusDraft, child.Status)
		assert.Equal(t, parent.CustomerID, child.CustomerID)
		assert.Equal(t, due, child.IssueDate)
		assert.Equal(t, due.AddDate(0, 0, 30), child.DueDate)
		assert.False(t, child.IsRecurring)
		assert.True(t, child.TotalAmount.Equal(parent.TotalAmount))
		require.Len(t, child.Items, 1)
		assert.NotEqual(t, parent.Items[0].ID, child.Items[0].ID)

		assert.Equal(t, parentNextBefore.AddDate(0, 1, 0), *parent.NextInvoiceDate)
	})

	t.Run("not due means no spawn", func(t *testing.T) {
		parent := testRecurringInvoice(t)
		_, err := parent.SpawnNextOccurrence("INV-2026-0011", parent.NextInvoiceDate.Add(-time.Hour), 30)
		assert.Equal(t, "NOT_DUE", domainCode(t, err))
	})

	t.Run("second spawn in the same tick is skipped", func(t *testing.T) {
		parent := testRecurringInvoice(t)
		now := parent.NextInvoiceDate.Add(time.Hour)

		_, err := parent.SpawnNextOccurrence("INV-2026-0011", now, 30)
		require.NoError(t, err)

		// next invoice date moved past now, so the invoice is no longer due
		assert.False(t, parent.IsDueForRecurrence(now))
		_, err = parent.SpawnNextOccurrence("INV-2026-0012", now, 30)
		assert.Equal(t, "NOT_DUE", domainCode(t, err))
	})
}

func TestInvoice_SetRecurrence(t *testing.T) {
	inv := testInvoice(t)

	require.NoError(t, inv.SetRecurrence(true, RecurringIntervalWeekly))
	assert.True(t, inv.IsRecurring)
	require.NotNil(t, inv.NextInvoiceDate)

	require.NoError(t, inv.SetRecurrence(false, ""))
	assert.False(t, inv.IsRecurring)
	assert.Nil(t, inv.RecurringInterval)
	assert.Nil(t, inv.NextInvoiceDate)

	assert.Error(t, inv.SetRecurrence(true, RecurringInterval("hourly")))
}

// ============================================
// Reminders
// ============================================

func TestInvoice_IsReminderEligible(t *testing.T) {
	grace := 24 * time.Hour
	cooldown := 72 * time.Hour
	now := time.Now()

	t.Run("sent invoice past due plus grace is eligible", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.MarkSent())
		inv.DueDate = now.Add(-48 * time.Hour)
		assert.True(t, inv.IsReminderEligible(now, grace, cooldown))
	})

	t.Run("inside grace period is not eligible", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.MarkSent())
		inv.DueDate = now.Add(-12 * time.Hour)
		assert.False(t, inv.IsReminderEligible(now, grace, cooldown))
	})

	t.Run("recent reminder suppresses dispatch until cooldown elapses", func(t *testing.T) {
		inv := testInvoice(t)
		require.NoError(t, inv.MarkSent())
		inv.DueDate = now.Add(-48 * time.Hour)
		inv.MarkReminded(now.Add(-time.Hour))
		assert.False(t, inv.IsReminderEligible(now, grace, cooldown))

		old := now.Add(-100 * time.Hour)
		inv.LastReminderAt = &old
		assert.True(t, inv.IsReminderEligible(now, grace, cooldown))
	})

	t.Run("draft and terminal invoices are never eligible", func(t *testing.T) {
		draft := testInvoice(t)
		draft.DueDate = now.Add(-48 * time.Hour)
		assert.False(t, draft.IsReminderEligible(now, grace, cooldown))

		cancelled := testInvoice(t)
		require.NoError(t, cancelled.Cancel(""))
		cancelled.DueDate = now.Add(-48 * time.Hour)
		assert.False(t, cancelled.IsReminderEligible(now, grace, cooldown))
	})
}

func TestInvoice_MarkReminded(t *testing.T) {
	inv := testInvoice(t)
	now := time.Now()
	inv.MarkReminded(now)

	require.NotNil(t, inv.LastReminderAt)
	assert.Equal(t, now, *inv.LastReminderAt)
	assert.Equal(t, 1, inv.ReminderCount)
}

// ============================================
// Overdue helpers
// ============================================

func TestInvoice_DaysOverdue(t *testing.T) {
	now := time.Now()
	inv := testInvoice(t)
	inv.DueDate = now.Add(-50 * time.Hour)
	assert.Equal(t, 2, inv.DaysOverdue(now))

	paid := testInvoice(t)
	_, err := paid.ApplyPayment(valueobject.NewMoneyFromFloat(60.50), PaymentMethodCash, "", "", now)
	require.NoError(t, err)
	paid.DueDate = now.Add(-50 * time.Hour)
	assert.Equal(t, 0, paid.DaysOverdue(now))
}

func TestNewPayment_Validation(t *testing.T) {
	invoiceID := uuid.New()

	_, err := NewPayment(uuid.Nil, valueobject.NewMoneyFromFloat(10), PaymentMethodCash, "", "", time.Now())
	assert.Error(t, err)

	_, err = NewPayment(invoiceID, valueobject.NewMoneyFromFloat(10), PaymentMethod("IOU"), "", "", time.Now())
	assert.Error(t, err)

	p, err := NewPayment(invoiceID, valueobject.NewMoneyFromFloat(10), PaymentMethodCash, "", "", time.Time{})
	require.NoError(t, err)
	assert.False(t, p.PaymentDate.IsZero())
	assert.True(t, p.Amount.Equal(decimal.NewFromFloat(10)))
}

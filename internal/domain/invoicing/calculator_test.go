package invoicing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustItem(t *testing.T, desc string, qty, price, taxRate float64) InvoiceItem {
	t.Helper()
	item, err := NewInvoiceItem(desc,
		decimal.NewFromFloat(qty),
		decimal.NewFromFloat(price),
		decimal.NewFromFloat(taxRate),
		nil,
	)
	require.NoError(t, err)
	return item
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []InvoiceItem
		wantSubtotal string
		wantTax      string
		wantTotal    string
	}{
		{
			name: "two taxed lines",
			items: []InvoiceItem{
				mustItem(t, "Widget", 2, 15.00, 10),
				mustItem(t, "Gadget", 1, 25.00, 10),
			},
			wantSubtotal: "55.00",
			wantTax:      "5.50",
			wantTotal:    "60.50",
		},
		{
			name: "zero tax",
			items: []InvoiceItem{
				mustItem(t, "Service", 3, 100.00, 0),
			},
			wantSubtotal: "300.00",
			wantTax:      "0.00",
			wantTotal:    "300.00",
		},
		{
			name: "mixed rates",
			items: []InvoiceItem{
				mustItem(t, "A", 1, 10.00, 16),
				mustItem(t, "B", 2, 5.00, 8),
			},
			wantSubtotal: "20.00",
			wantTax:      "2.40",
			wantTotal:    "22.40",
		},
		{
			name: "fractional rounding",
			items: []InvoiceItem{
				mustItem(t, "C", 3, 3.33, 7.5),
			},
			wantSubtotal: "9.99",
			wantTax:      "0.75",
			wantTotal:    "10.74",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := ComputeTotals(tt.items)
			assert.Equal(t, tt.wantSubtotal, totals.Subtotal.StringFixed(2))
			assert.Equal(t, tt.wantTax, totals.TaxAmount.StringFixed(2))
			assert.Equal(t, tt.wantTotal, totals.Total.StringFixed(2))
		})
	}
}

func TestComputeTotals_Invariants(t *testing.T) {
	items := []InvoiceItem{
		mustItem(t, "A", 2, 15.00, 10),
		mustItem(t, "B", 1, 25.00, 10),
		mustItem(t, "C", 4, 7.25, 16),
	}
	totals := ComputeTotals(items)

	// subtotal == sum(qty * unit price)
	expected := decimal.Zero
	for _, it := range items {
		expected = expected.Add(it.Quantity.Mul(it.UnitPrice))
	}
	assert.True(t, totals.Subtotal.Equal(expected.Round(2)))

	// total == subtotal + tax
	assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.TaxAmount)))
}

func TestNewInvoiceItem_Validation(t *testing.T) {
	tests := []struct {
		name    string
		desc    string
		qty     float64
		price   float64
		taxRate float64
		wantErr bool
	}{
		{"valid", "Widget", 1, 10, 5, false},
		{"empty description", "", 1, 10, 5, true},
		{"zero quantity", "Widget", 0, 10, 5, true},
		{"negative quantity", "Widget", -1, 10, 5, true},
		{"zero price ok", "Freebie", 1, 0, 0, false},
		{"negative price", "Widget", 1, -5, 0, true},
		{"negative tax rate", "Widget", 1, 10, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInvoiceItem(tt.desc,
				decimal.NewFromFloat(tt.qty),
				decimal.NewFromFloat(tt.price),
				decimal.NewFromFloat(tt.taxRate),
				nil,
			)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInvoiceItem_Clone(t *testing.T) {
	item := mustItem(t, "Widget", 2, 15.00, 10)
	clone := item.Clone()

	assert.NotEqual(t, item.ID, clone.ID)
	assert.Equal(t, item.Description, clone.Description)
	assert.True(t, item.Quantity.Equal(clone.Quantity))
	assert.True(t, item.UnitPrice.Equal(clone.UnitPrice))
	assert.True(t, item.TaxRate.Equal(clone.TaxRate))
}

package invoicing

import "github.com/shopspring/decimal"

// Totals holds the derived monetary totals of an invoice
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals computes subtotal, tax and total from line items.
// Pure function: subtotal and tax are summed per line, then rounded to
// two decimal places at the invoice boundary.
func ComputeTotals(items []InvoiceItem) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineSubtotal())
		tax = tax.Add(it.LineTax())
	}
	subtotal = subtotal.Round(2)
	tax = tax.Round(2)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}

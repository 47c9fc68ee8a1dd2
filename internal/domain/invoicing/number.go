package invoicing

import (
	"fmt"
	"regexp"
)

// Invoice numbers follow the format INV-YYYY-NNNN where NNNN is the
// per-year sequence, zero-padded to at least four digits and widening
// beyond 9999. Numbers are globally unique and immutable after creation.
const invoiceNumberPrefix = "INV"

var invoiceNumberPattern = regexp.MustCompile(`^INV-\d{4}-\d{4,}$`)

// FormatInvoiceNumber renders an invoice number for a year and sequence
func FormatInvoiceNumber(year, sequence int) string {
	return fmt.Sprintf("%s-%04d-%04d", invoiceNumberPrefix, year, sequence)
}

// InvoiceNumberPrefixForYear returns the prefix shared by all numbers of
// a given year, for repository max-scans
func InvoiceNumberPrefixForYear(year int) string {
	return fmt.Sprintf("%s-%04d-", invoiceNumberPrefix, year)
}

// IsValidInvoiceNumber reports whether s matches the invoice number format
func IsValidInvoiceNumber(s string) bool {
	return invoiceNumberPattern.MatchString(s)
}

package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeUsage        = errors.New("amount used cannot be negative")
	ErrUsageExceedsDue      = errors.New("amount used exceeds amount due")
	ErrUsageExceedsReceived = errors.New("total amount used exceeds amount received")
)

// InvoiceUsage is one unpaid invoice row of a payment form.
type InvoiceUsage struct {
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNo     string          `json:"invoice_no"`
	InvoiceAmount decimal.Decimal `json:"invoice_amount"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	AmountUsed    decimal.Decimal `json:"amount_used"`
}

// PaymentSummary is the footer of a payment form.
type PaymentSummary struct {
	AmountReceived decimal.Decimal `json:"amount_received"`
	AmountUsed     decimal.Decimal `json:"amount_used"`
	AmountExcess   decimal.Decimal `json:"amount_excess"`
	AmountRefunded decimal.Decimal `json:"amount_refunded"`
}

// TotalUsed sums the usage of every row.
func TotalUsed(rows []InvoiceUsage) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.AmountUsed)
	}
	return sum
}

// TotalDue sums the amount due of every row.
func TotalDue(rows []InvoiceUsage) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.AmountDue)
	}
	return sum
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

// ApplyUsage sets the usage of the row at index from raw user input.
// The value is clamped to [0, due]; if the new total would exceed received,
// the edited row absorbs the overflow (never going below zero).
func ApplyUsage(rows []InvoiceUsage, index int, raw string, received decimal.Decimal) []InvoiceUsage {
	out := make([]InvoiceUsage, len(rows))
	copy(out, rows)
	if index < 0 || index >= len(out) {
		return out
	}

	due := decimal.Max(out[index].AmountDue, decimal.Zero)
	out[index].AmountUsed = clamp(ParseAmount(raw), decimal.Zero, due)

	if overflow := TotalUsed(out).Sub(received); overflow.IsPositive() {
		out[index].AmountUsed = decimal.Max(out[index].AmountUsed.Sub(overflow), decimal.Zero)
	}
	return out
}

// ApplyFullAmount uses every invoice in full and returns the amount that has
// to be received to cover them.
func ApplyFullAmount(rows []InvoiceUsage) ([]InvoiceUsage, decimal.Decimal) {
	out := make([]InvoiceUsage, len(rows))
	for i, r := range rows {
		r.AmountUsed = r.AmountDue
		out[i] = r
	}
	return out, TotalDue(out)
}

// ResetFullAmount zeroes every usage. The caller clears the received amount.
func ResetFullAmount(rows []InvoiceUsage) []InvoiceUsage {
	out := make([]InvoiceUsage, len(rows))
	for i, r := range rows {
		r.AmountUsed = decimal.Zero
		out[i] = r
	}
	return out
}

// Summarize builds the payment footer. Excess and refunded amounts are
// reported as zero.
func Summarize(rows []InvoiceUsage, received decimal.Decimal) PaymentSummary {
	return PaymentSummary{
		AmountReceived: received,
		AmountUsed:     TotalUsed(rows),
		AmountExcess:   decimal.Zero,
		AmountRefunded: decimal.Zero,
	}
}

// ValidateAllocations checks rows that did not pass through ApplyUsage,
// such as a submitted payload.
func ValidateAllocations(rows []InvoiceUsage, received decimal.Decimal) error {
	for _, r := range rows {
		if r.AmountUsed.IsNegative() {
			return fmt.Errorf("invoice %s: %w", r.InvoiceNo, ErrNegativeUsage)
		}
		if r.AmountUsed.GreaterThan(r.AmountDue) {
			return fmt.Errorf("invoice %s: %w (%s > %s)", r.InvoiceNo, ErrUsageExceedsDue,
				FormatAmount(r.AmountUsed), FormatAmount(r.AmountDue))
		}
	}
	if used := TotalUsed(rows); used.GreaterThan(received) {
		return fmt.Errorf("%w (%s > %s)", ErrUsageExceedsReceived, FormatAmount(used), FormatAmount(received))
	}
	return nil
}

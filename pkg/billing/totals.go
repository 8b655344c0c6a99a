package billing

import "github.com/shopspring/decimal"

// Totals is the aggregate of a document.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Adjustment decimal.Decimal `json:"adjustment"`
	GrandTotal decimal.Decimal `json:"grand_total"`

	deducted bool // TDS: tax is subtracted
}

// Subtotal sums the amount of every row. Rows with an empty or malformed
// amount contribute zero.
func Subtotal(rows []ItemRow) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(ParseAmount(r.Amount))
	}
	return sum
}

// Recompute derives totals from rows, the tax kind, the resolved rate and a
// manual adjustment. TDS is subtracted from the subtotal, TCS is added.
func Recompute(rows []ItemRow, kind TaxKind, ratePercent, adjustment decimal.Decimal) Totals {
	subtotal := Subtotal(rows)
	tax := Percent(subtotal, ratePercent)

	grand := subtotal.Add(tax)
	if kind == TaxTDS {
		grand = subtotal.Sub(tax)
	}

	return Totals{
		Subtotal:   subtotal,
		TaxAmount:  tax,
		Adjustment: adjustment,
		GrandTotal: grand.Add(adjustment),
		deducted:   kind == TaxTDS,
	}
}

// Rounded returns the totals rounded to two places for serialisation. The
// grand total is rebuilt from the rounded parts so the stored figures always
// add up.
func (t Totals) Rounded() Totals {
	r := Totals{
		Subtotal:   Round2(t.Subtotal),
		TaxAmount:  Round2(t.TaxAmount),
		Adjustment: Round2(t.Adjustment),
		deducted:   t.deducted,
	}
	if r.deducted {
		r.GrandTotal = r.Subtotal.Sub(r.TaxAmount).Add(r.Adjustment)
	} else {
		r.GrandTotal = r.Subtotal.Add(r.TaxAmount).Add(r.Adjustment)
	}
	return r
}

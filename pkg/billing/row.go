package billing

import "github.com/shopspring/decimal"

// ItemRow is one editable line of a challan, invoice or order. Numeric
// fields are kept as entered; Amount is derived.
type ItemRow struct {
	Description     string `json:"description"`
	Quantity        string `json:"quantity"`
	Rate            string `json:"rate"`
	DiscountPercent string `json:"discount"`
	Amount          string `json:"amount"`
}

// RowField names an editable column of an ItemRow.
type RowField string

const (
	FieldDescription RowField = "description"
	FieldQuantity    RowField = "quantity"
	FieldRate        RowField = "rate"
	FieldDiscount    RowField = "discount"
)

// NewRows returns the state of a freshly opened form: a single blank row.
func NewRows() []ItemRow {
	return []ItemRow{{}}
}

// LineAmount computes round2(q*r - q*r*discount/100).
func LineAmount(quantity, rate, discountPercent decimal.Decimal) decimal.Decimal {
	gross := quantity.Mul(rate)
	return Round2(gross.Sub(Percent(gross, discountPercent)))
}

// ComputeAmount returns the row's derived amount as display text.
// A zero amount is rendered as the empty string.
func (r ItemRow) ComputeAmount() string {
	amount := LineAmount(ParseAmount(r.Quantity), ParseAmount(r.Rate), ParseAmount(r.DiscountPercent))
	if amount.IsZero() {
		return ""
	}
	return FormatAmount(amount)
}

// UpdateRow returns a copy of rows with field set to value on the row at
// index, and that row's amount recomputed. Other rows are untouched.
// An out of range index or unknown field yields an unchanged copy.
func UpdateRow(rows []ItemRow, index int, field RowField, value string) []ItemRow {
	out := make([]ItemRow, len(rows))
	copy(out, rows)
	if index < 0 || index >= len(out) {
		return out
	}

	row := out[index]
	switch field {
	case FieldDescription:
		row.Description = value
	case FieldQuantity:
		row.Quantity = value
	case FieldRate:
		row.Rate = value
	case FieldDiscount:
		row.DiscountPercent = value
	default:
		return out
	}
	row.Amount = row.ComputeAmount()
	out[index] = row
	return out
}

// AddRow appends a blank row.
func AddRow(rows []ItemRow) []ItemRow {
	out := make([]ItemRow, len(rows), len(rows)+1)
	copy(out, rows)
	return append(out, ItemRow{})
}

// RemoveRow drops the row at index. The last remaining row is never removed.
func RemoveRow(rows []ItemRow, index int) []ItemRow {
	out := make([]ItemRow, 0, len(rows))
	if len(rows) <= 1 || index < 0 || index >= len(rows) {
		return append(out, rows...)
	}
	out = append(out, rows[:index]...)
	return append(out, rows[index+1:]...)
}

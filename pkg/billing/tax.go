package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TaxKind selects how the resolved tax rate affects the grand total.
type TaxKind string

const (
	TaxNone TaxKind = ""
	// TaxTDS is withheld from the amount: it is subtracted.
	TaxTDS TaxKind = "TDS"
	// TaxTCS is collected on top of the amount: it is added.
	TaxTCS TaxKind = "TCS"
)

// ParseTaxKind accepts "TDS", "TCS" (any case) or empty.
func ParseTaxKind(s string) (TaxKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return TaxNone, true
	case string(TaxTDS):
		return TaxTDS, true
	case string(TaxTCS):
		return TaxTCS, true
	}
	return TaxNone, false
}

// TaxOption is a named rate. TDS and TCS share this shape.
type TaxOption struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	RatePercent decimal.Decimal `json:"rate"`
}

// TaxSelection is the tax state of a document form.
type TaxSelection struct {
	Kind        TaxKind
	OptionID    string
	RatePercent decimal.Decimal
	Adjustment  decimal.Decimal
}

// FindOption looks an option up by id.
func FindOption(options []TaxOption, id string) (TaxOption, bool) {
	for _, o := range options {
		if o.ID == id {
			return o, true
		}
	}
	return TaxOption{}, false
}

// ResolveRate returns the rate of the option with optionID in the list that
// belongs to kind. Unknown ids and an empty kind resolve to zero.
func ResolveRate(kind TaxKind, optionID string, tds, tcs []TaxOption) decimal.Decimal {
	var options []TaxOption
	switch kind {
	case TaxTDS:
		options = tds
	case TaxTCS:
		options = tcs
	default:
		return decimal.Zero
	}
	if opt, ok := FindOption(options, optionID); ok {
		return opt.RatePercent
	}
	return decimal.Zero
}

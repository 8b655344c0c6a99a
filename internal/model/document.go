package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentTax holds the tax selection and derived totals shared by every
// invoice-like document. GrandTotal is the only total; there is no
// separate "total" column.
type DocumentTax struct {
	TaxKind     string          `gorm:"type:varchar(10)" json:"tax_kind"` // TDS, TCS or empty
	TaxOptionID *uuid.UUID      `gorm:"type:uuid" json:"tax_option_id"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"tax_rate"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	Adjustment  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"adjustment"`
	GrandTotal  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"grand_total"`
}

// LineItem columns shared by challan and recurring invoice items
type LineItem struct {
	Position        int             `gorm:"not null" json:"position"`
	Description     string          `gorm:"type:text" json:"description"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Rate            decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"rate"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"discount"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxKind enum constants
const (
	TaxKindTDS = "TDS" // withheld, read-only options
	TaxKindTCS = "TCS" // collected, user-extensible options
)

// TaxOption is a named withholding/collection rate
type TaxOption struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Kind        string          `gorm:"type:varchar(10);not null;index" json:"kind"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	RatePercent decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"rate"` // e.g. 10 = 10%
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (o *TaxOption) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

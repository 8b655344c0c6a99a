package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is the buyer on challans, invoices and payments
type Customer struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(255);not null;index" json:"name"`
	CompanyName     string         `gorm:"type:varchar(255)" json:"company_name"`
	Email           string         `gorm:"type:varchar(255)" json:"email"`
	Phone           string         `gorm:"type:varchar(50)" json:"phone"`
	TaxCode         string         `gorm:"type:varchar(50)" json:"tax_code"` // PAN / GSTIN
	BillingAddress  string         `gorm:"type:text" json:"billing_address"`
	ShippingAddress string         `gorm:"type:text" json:"shipping_address"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// SalesPerson is attached to recurring invoices for commission reporting
type SalesPerson struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *SalesPerson) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentMode enum constants
const (
	PaymentModeCash         = "CASH"
	PaymentModeBankTransfer = "BANK_TRANSFER"
	PaymentModeCheque       = "CHEQUE"
	PaymentModeUPI          = "UPI"
)

// Payment is money received from a customer and applied to invoices
type Payment struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentNo      string              `gorm:"type:varchar(40);uniqueIndex;not null" json:"payment_no"`
	CustomerID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer       *Customer           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	PaymentDate    time.Time           `gorm:"type:date;not null;index" json:"payment_date"`
	PaymentMode    string              `gorm:"type:varchar(20);not null" json:"payment_mode"`
	ReferenceNo    string              `gorm:"type:varchar(100)" json:"reference_no"`
	DepositTo      string              `gorm:"type:varchar(100)" json:"deposit_to"`
	AmountReceived decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"amount_received"`
	BankCharges    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"bank_charges"`
	AmountUsed     decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"amount_used"`
	AmountExcess   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"amount_excess"`
	AmountRefunded decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"amount_refunded"`
	Allocations    []PaymentAllocation `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE" json:"allocations"`
	Notes          string              `gorm:"type:text" json:"notes"`
	CreatedBy      *uuid.UUID          `gorm:"type:uuid" json:"created_by"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// PaymentAllocation is the share of a payment used against one invoice
type PaymentAllocation struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"payment_id"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Invoice    *Invoice        `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
	AmountUsed decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount_used"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (a *PaymentAllocation) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

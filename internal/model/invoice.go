package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus enum constants
const (
	InvoiceUnpaid  = "UNPAID"
	InvoicePartial = "PARTIAL"
	InvoicePaid    = "PAID"
)

// Invoice is a receivable. AmountDue shrinks as payments are applied;
// only invoices with AmountDue > 0 are offered on the payment form.
type Invoice struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNo          string            `gorm:"type:varchar(40);uniqueIndex;not null" json:"invoice_no"`
	CustomerID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer           *Customer         `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	RecurringInvoiceID *uuid.UUID        `gorm:"type:uuid;index" json:"recurring_invoice_id"`
	RecurringInvoice   *RecurringInvoice `gorm:"foreignKey:RecurringInvoiceID" json:"-"`
	InvoiceDate        time.Time         `gorm:"not null;index" json:"invoice_date"`
	DueDate            time.Time         `gorm:"not null" json:"due_date"`
	DocumentTax        `gorm:"embedded"`
	Items              []InvoiceItem     `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	AmountDue          decimal.Decimal   `gorm:"type:decimal(18,4);not null" json:"amount_due"`
	Status             string            `gorm:"type:varchar(20);not null;default:'UNPAID';index" json:"status"`
	Note               string            `gorm:"type:text" json:"note"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// ApplyPayment reduces the amount due and moves the status along.
func (i *Invoice) ApplyPayment(amount decimal.Decimal) {
	i.AmountDue = i.AmountDue.Sub(amount)
	switch {
	case !i.AmountDue.IsPositive():
		i.AmountDue = decimal.Zero
		i.Status = InvoicePaid
	case i.AmountDue.LessThan(i.GrandTotal):
		i.Status = InvoicePartial
	default:
		i.Status = InvoiceUnpaid
	}
}

// InvoiceItem is one line of an invoice
type InvoiceItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	LineItem  `gorm:"embedded"`
}

func (i *InvoiceItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

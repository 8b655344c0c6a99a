package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateCustomer         = "CREATE_CUSTOMER"
	ActionCreateSalesPerson      = "CREATE_SALES_PERSON"
	ActionCreateTaxOption        = "CREATE_TAX_OPTION"
	ActionCreateDeliveryChallan  = "CREATE_DELIVERY_CHALLAN"
	ActionCreateRecurringInvoice = "CREATE_RECURRING_INVOICE"
	ActionGenerateInvoice        = "GENERATE_INVOICE"
	ActionCreateInvoice          = "CREATE_INVOICE"
	ActionRecordPayment          = "RECORD_PAYMENT"
)

// AuditLog tracks Who, What, and When for document changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for the scheduler
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // document number
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

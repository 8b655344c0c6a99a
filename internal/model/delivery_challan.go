package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallanType enum constants
const (
	ChallanTypeSupplyOfLiquidGas = "SUPPLY_OF_LIQUID_GAS"
	ChallanTypeJobWork           = "JOB_WORK"
	ChallanTypeSupplyOnApproval  = "SUPPLY_ON_APPROVAL"
	ChallanTypeOthers            = "OTHERS"
)

// ChallanStatus enum constants
const (
	ChallanStatusDraft     = "DRAFT"
	ChallanStatusOpen      = "OPEN"
	ChallanStatusDelivered = "DELIVERED"
)

// DeliveryChallan records goods leaving the premises without an invoice
type DeliveryChallan struct {
	ID                 uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	ChallanNo          string                `gorm:"type:varchar(40);uniqueIndex;not null" json:"challan_no"`
	ReferenceNo        string                `gorm:"type:varchar(100)" json:"reference_no"`
	CustomerID         uuid.UUID             `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer           *Customer             `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ChallanDate        time.Time             `gorm:"type:date;not null;index" json:"challan_date"`
	ChallanType        string                `gorm:"type:varchar(30);not null" json:"challan_type"`
	Status             string                `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	DocumentTax        `gorm:"embedded"`
	Items              []DeliveryChallanItem `gorm:"foreignKey:ChallanID;constraint:OnDelete:CASCADE" json:"items"`
	CustomerNotes      string                `gorm:"type:text" json:"customer_notes"`
	TermsAndConditions string                `gorm:"type:text" json:"terms_and_conditions"`
	CreatedBy          *uuid.UUID            `gorm:"type:uuid" json:"created_by"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

func (d *DeliveryChallan) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

// DeliveryChallanItem is one line of a challan
type DeliveryChallanItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChallanID uuid.UUID `gorm:"type:uuid;not null;index" json:"challan_id"`
	LineItem  `gorm:"embedded"`
}

func (i *DeliveryChallanItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

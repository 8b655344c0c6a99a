package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RepeatEvery enum constants
const (
	RepeatWeek  = "WEEK"
	RepeatMonth = "MONTH"
	RepeatYear  = "YEAR"
)

// RecurringStatus enum constants
const (
	RecurringActive  = "ACTIVE"
	RecurringStopped = "STOPPED"
	RecurringExpired = "EXPIRED"
)

// RecurringInvoice is a template that the scheduler turns into invoices
type RecurringInvoice struct {
	ID               uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileNo        string                 `gorm:"type:varchar(40);uniqueIndex;not null" json:"profile_no"`
	ProfileName      string                 `gorm:"type:varchar(255);not null" json:"profile_name"`
	CustomerID       uuid.UUID              `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer         *Customer              `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	SalesPersonID    *uuid.UUID             `gorm:"type:uuid;index" json:"sales_person_id"`
	SalesPerson      *SalesPerson           `gorm:"foreignKey:SalesPersonID" json:"sales_person,omitempty"`
	OrderNumber      string                 `gorm:"type:varchar(100)" json:"order_number"`
	RepeatEvery      string                 `gorm:"type:varchar(10);not null" json:"repeat_every"` // WEEK, MONTH, YEAR
	StartDate        time.Time              `gorm:"not null" json:"start_date"`
	EndDate          *time.Time             `json:"end_date"`
	NeverExpires     bool                   `gorm:"default:false" json:"never_expires"`
	NextRunAt        time.Time              `gorm:"not null;index" json:"next_run_at"`
	LastRunAt        *time.Time             `json:"last_run_at"`
	PaymentTermsDays int                    `gorm:"not null;default:0" json:"payment_terms_days"`
	InvoicePattern   string                 `gorm:"type:varchar(30)" json:"invoice_pattern"` // numbering pattern of generated invoices
	Status           string                 `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	DocumentTax      `gorm:"embedded"`
	Items            []RecurringInvoiceItem `gorm:"foreignKey:RecurringInvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	CustomerNotes    string                 `gorm:"type:text" json:"customer_notes"`
	CreatedBy        *uuid.UUID             `gorm:"type:uuid" json:"created_by"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

func (r *RecurringInvoice) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// RunAt returns the n-th scheduled run, the start date being run 0. Month
// and year steps keep the start day, clamped to the end of shorter months.
func (r *RecurringInvoice) RunAt(n int) time.Time {
	switch r.RepeatEvery {
	case RepeatWeek:
		return r.StartDate.AddDate(0, 0, 7*n)
	case RepeatYear:
		return addMonthsClamped(r.StartDate, 12*n)
	default:
		return addMonthsClamped(r.StartDate, n)
	}
}

// NextAfter returns the first scheduled run strictly after t.
func (r *RecurringInvoice) NextAfter(t time.Time) time.Time {
	start := r.StartDate
	var n int
	switch r.RepeatEvery {
	case RepeatWeek:
		n = int(t.Sub(start).Hours()/24/7) - 1
	case RepeatYear:
		n = t.Year() - start.Year() - 1
	default:
		n = (t.Year()-start.Year())*12 + int(t.Month()-start.Month()) - 1
	}
	if n < 0 {
		n = 0
	}
	for !r.RunAt(n).After(t) {
		n++
	}
	return r.RunAt(n)
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// RecurringInvoiceItem is one line of a recurring invoice profile
type RecurringInvoiceItem struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecurringInvoiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"recurring_invoice_id"`
	LineItem           `gorm:"embedded"`
}

func (i *RecurringInvoiceItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

package repository

import (
	"context"
	"time"

	"salesdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	Update(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.Invoice, error)
	ListUnpaid(ctx context.Context, customerID uuid.UUID) ([]model.Invoice, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]model.Invoice, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Omit("Customer", "RecurringInvoice").Create(invoice).Error
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Omit("Customer", "RecurringInvoice", "Items").Save(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByIDsForUpdate row-locks the invoices for the rest of the transaction.
func (r *invoiceRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Find(&invoices).Error
	return invoices, err
}

// ListUnpaid returns a customer's invoices that still have an amount due, oldest first.
func (r *invoiceRepository) ListUnpaid(ctx context.Context, customerID uuid.UUID) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := GetDB(ctx, r.db).
		Where("customer_id = ? AND status <> ? AND amount_due > 0", customerID, model.InvoicePaid).
		Order("invoice_date ASC, invoice_no ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) ListInRange(ctx context.Context, from, to time.Time) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := GetDB(ctx, r.db).Preload("Customer").
		Where("invoice_date >= ? AND invoice_date <= ?", from, to).
		Order("invoice_date ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	return countByPrefix(ctx, r.db, &model.Invoice{}, "invoice_no", prefix)
}

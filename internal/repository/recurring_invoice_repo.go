package repository

import (
	"context"
	"time"

	"salesdesk/internal/model"
	"salesdesk/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecurringInvoiceRepository interface {
	Create(ctx context.Context, profile *model.RecurringInvoice) error
	Update(ctx context.Context, profile *model.RecurringInvoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RecurringInvoice, error)
	List(ctx context.Context, status string, page, limit int) ([]model.RecurringInvoice, int64, error)
	FindDue(ctx context.Context, now time.Time) ([]model.RecurringInvoice, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type recurringInvoiceRepository struct {
	db *gorm.DB
}

func NewRecurringInvoiceRepository(db *gorm.DB) RecurringInvoiceRepository {
	return &recurringInvoiceRepository{db: db}
}

func (r *recurringInvoiceRepository) Create(ctx context.Context, profile *model.RecurringInvoice) error {
	return GetDB(ctx, r.db).Omit("Customer", "SalesPerson").Create(profile).Error
}

// Update saves the profile's own columns; items are immutable once created.
func (r *recurringInvoiceRepository) Update(ctx context.Context, profile *model.RecurringInvoice) error {
	return GetDB(ctx, r.db).Omit("Items", "Customer", "SalesPerson").Save(profile).Error
}

func (r *recurringInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RecurringInvoice, error) {
	var profile model.RecurringInvoice
	err := GetDB(ctx, r.db).
		Preload("Customer").
		Preload("SalesPerson").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *recurringInvoiceRepository) List(ctx context.Context, status string, page, limit int) ([]model.RecurringInvoice, int64, error) {
	var profiles []model.RecurringInvoice
	var total int64

	query := GetDB(ctx, r.db).Model(&model.RecurringInvoice{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Customer").Order("created_at DESC").Scopes(pagination.Scope(page, limit)).Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// FindDue returns active profiles whose next run is at or before now.
func (r *recurringInvoiceRepository) FindDue(ctx context.Context, now time.Time) ([]model.RecurringInvoice, error) {
	var profiles []model.RecurringInvoice
	err := GetDB(ctx, r.db).
		Where("status = ? AND next_run_at <= ?", model.RecurringActive, now).
		Order("next_run_at ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *recurringInvoiceRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	return countByPrefix(ctx, r.db, &model.RecurringInvoice{}, "profile_no", prefix)
}

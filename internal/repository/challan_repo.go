package repository

import (
	"context"
	"time"

	"salesdesk/internal/model"
	"salesdesk/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeliveryChallanRepository interface {
	Create(ctx context.Context, challan *model.DeliveryChallan) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DeliveryChallan, error)
	List(ctx context.Context, customerID *uuid.UUID, page, limit int) ([]model.DeliveryChallan, int64, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]model.DeliveryChallan, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type deliveryChallanRepository struct {
	db *gorm.DB
}

func NewDeliveryChallanRepository(db *gorm.DB) DeliveryChallanRepository {
	return &deliveryChallanRepository{db: db}
}

func (r *deliveryChallanRepository) Create(ctx context.Context, challan *model.DeliveryChallan) error {
	return GetDB(ctx, r.db).Omit("Customer").Create(challan).Error
}

func (r *deliveryChallanRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DeliveryChallan, error) {
	var challan model.DeliveryChallan
	err := GetDB(ctx, r.db).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&challan, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &challan, nil
}

func (r *deliveryChallanRepository) List(ctx context.Context, customerID *uuid.UUID, page, limit int) ([]model.DeliveryChallan, int64, error) {
	var challans []model.DeliveryChallan
	var total int64

	query := GetDB(ctx, r.db).Model(&model.DeliveryChallan{})
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Customer").Order("created_at DESC").Scopes(pagination.Scope(page, limit)).Find(&challans).Error; err != nil {
		return nil, 0, err
	}
	return challans, total, nil
}

func (r *deliveryChallanRepository) ListInRange(ctx context.Context, from, to time.Time) ([]model.DeliveryChallan, error) {
	var challans []model.DeliveryChallan
	err := GetDB(ctx, r.db).Preload("Customer").
		Where("challan_date >= ? AND challan_date <= ?", from, to).
		Order("challan_date ASC").
		Find(&challans).Error
	return challans, err
}

func (r *deliveryChallanRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	return countByPrefix(ctx, r.db, &model.DeliveryChallan{}, "challan_no", prefix)
}

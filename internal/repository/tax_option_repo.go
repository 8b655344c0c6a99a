package repository

import (
	"context"

	"salesdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaxOptionRepository interface {
	Create(ctx context.Context, option *model.TaxOption) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxOption, error)
	ListByKind(ctx context.Context, kind string) ([]model.TaxOption, error)
	CountByKind(ctx context.Context, kind string) (int64, error)
}

type taxOptionRepository struct {
	db *gorm.DB
}

func NewTaxOptionRepository(db *gorm.DB) TaxOptionRepository {
	return &taxOptionRepository{db: db}
}

func (r *taxOptionRepository) Create(ctx context.Context, option *model.TaxOption) error {
	return GetDB(ctx, r.db).Create(option).Error
}

func (r *taxOptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxOption, error) {
	var option model.TaxOption
	if err := GetDB(ctx, r.db).First(&option, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

func (r *taxOptionRepository) ListByKind(ctx context.Context, kind string) ([]model.TaxOption, error) {
	var options []model.TaxOption
	if err := GetDB(ctx, r.db).Where("kind = ?", kind).Order("rate_percent ASC, name ASC").Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

func (r *taxOptionRepository) CountByKind(ctx context.Context, kind string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.TaxOption{}).Where("kind = ?", kind).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

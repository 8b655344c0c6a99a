package repository

import (
	"context"
	"time"

	"salesdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]model.Payment, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create inserts the payment and its allocations.
func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Omit("Customer").Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := GetDB(ctx, r.db).
		Preload("Customer").
		Preload("Allocations.Invoice").
		First(&payment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) ListInRange(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	var payments []model.Payment
	err := GetDB(ctx, r.db).Preload("Customer").
		Where("payment_date >= ? AND payment_date <= ?", from, to).
		Order("payment_date ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	return countByPrefix(ctx, r.db, &model.Payment{}, "payment_no", prefix)
}

package repository

import (
	"context"
	"strings"

	"salesdesk/internal/model"
	"salesdesk/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error)
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Customer{})
	if search != "" {
		// LOWER/LIKE instead of ILIKE keeps the query portable to SQLite
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(company_name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?",
			like, like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("name ASC").Scopes(pagination.Scope(page, limit)).Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

type SalesPersonRepository interface {
	Create(ctx context.Context, person *model.SalesPerson) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SalesPerson, error)
	FindByEmail(ctx context.Context, email string) (*model.SalesPerson, error)
	List(ctx context.Context) ([]model.SalesPerson, error)
}

type salesPersonRepository struct {
	db *gorm.DB
}

func NewSalesPersonRepository(db *gorm.DB) SalesPersonRepository {
	return &salesPersonRepository{db: db}
}

func (r *salesPersonRepository) Create(ctx context.Context, person *model.SalesPerson) error {
	return GetDB(ctx, r.db).Create(person).Error
}

func (r *salesPersonRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SalesPerson, error) {
	var person model.SalesPerson
	if err := GetDB(ctx, r.db).First(&person, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *salesPersonRepository) FindByEmail(ctx context.Context, email string) (*model.SalesPerson, error) {
	var person model.SalesPerson
	if err := GetDB(ctx, r.db).First(&person, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *salesPersonRepository) List(ctx context.Context) ([]model.SalesPerson, error) {
	var persons []model.SalesPerson
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&persons).Error; err != nil {
		return nil, err
	}
	return persons, nil
}

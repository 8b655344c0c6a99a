package service

import (
	"context"
	"fmt"
	"strings"

	"salesdesk/internal/model"
	"salesdesk/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateCustomerRequest struct {
	Name            string `json:"name" binding:"required"`
	CompanyName     string `json:"company_name"`
	Email           string `json:"email" binding:"omitempty,email"`
	Phone           string `json:"phone"`
	TaxCode         string `json:"tax_code"`
	BillingAddress  string `json:"billing_address"`
	ShippingAddress string `json:"shipping_address"`
}

type CustomerResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	CompanyName     string `json:"company_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	TaxCode         string `json:"tax_code"`
	BillingAddress  string `json:"billing_address"`
	ShippingAddress string `json:"shipping_address"`
	IsActive        bool   `json:"is_active"`
	CreatedAt       string `json:"created_at"`
}

type CreateSalesPersonRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type SalesPersonResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// --- Interface ---

type CustomerService interface {
	ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error)
	CreateCustomer(ctx context.Context, req CreateCustomerRequest, userID *uuid.UUID) (CustomerResponse, error)
	ListSalesPersons(ctx context.Context) ([]SalesPersonResponse, error)
	CreateSalesPerson(ctx context.Context, req CreateSalesPersonRequest, userID *uuid.UUID) (SalesPersonResponse, error)
}

type customerService struct {
	customerRepo    repository.CustomerRepository
	salesPersonRepo repository.SalesPersonRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	notifier        Notifier
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	salesPersonRepo repository.SalesPersonRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) CustomerService {
	return &customerService{
		customerRepo:    customerRepo,
		salesPersonRepo: salesPersonRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		notifier:        notifierOrNop(notifier),
	}
}

// --- Implementation ---

func mapCustomer(c model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID.String(),
		Name:            c.Name,
		CompanyName:     c.CompanyName,
		Email:           c.Email,
		Phone:           c.Phone,
		TaxCode:         c.TaxCode,
		BillingAddress:  c.BillingAddress,
		ShippingAddress: c.ShippingAddress,
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *customerService) ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error) {
	customers, total, err := s.customerRepo.List(ctx, strings.TrimSpace(search), page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}
	res := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		res = append(res, mapCustomer(c))
	}
	return res, total, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest, userID *uuid.UUID) (CustomerResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return CustomerResponse{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	customer := model.Customer{
		Name:            name,
		CompanyName:     strings.TrimSpace(req.CompanyName),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		TaxCode:         strings.TrimSpace(req.TaxCode),
		BillingAddress:  req.BillingAddress,
		ShippingAddress: req.ShippingAddress,
		IsActive:        true,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.customerRepo.Create(txCtx, &customer); err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateCustomer,
			customer.ID.String(), customer.Name, map[string]string{"company_name": customer.CompanyName})
	})
	if err != nil {
		return CustomerResponse{}, err
	}

	res := mapCustomer(customer)
	s.notifier.Publish(EventCustomerCreated, res)
	return res, nil
}

func (s *customerService) ListSalesPersons(ctx context.Context) ([]SalesPersonResponse, error) {
	persons, err := s.salesPersonRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales persons: %w", err)
	}
	res := make([]SalesPersonResponse, 0, len(persons))
	for _, p := range persons {
		res = append(res, SalesPersonResponse{ID: p.ID.String(), Name: p.Name, Email: p.Email})
	}
	return res, nil
}

func (s *customerService) CreateSalesPerson(ctx context.Context, req CreateSalesPersonRequest, userID *uuid.UUID) (SalesPersonResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.salesPersonRepo.FindByEmail(ctx, email); err == nil {
		return SalesPersonResponse{}, fmt.Errorf("sales person %s: %w", email, ErrConflict)
	} else if !repository.IsNotFound(err) {
		return SalesPersonResponse{}, fmt.Errorf("failed to check sales person: %w", err)
	}

	person := model.SalesPerson{Name: strings.TrimSpace(req.Name), Email: email}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.salesPersonRepo.Create(txCtx, &person); err != nil {
			return fmt.Errorf("failed to create sales person: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateSalesPerson,
			person.ID.String(), person.Name, map[string]string{"email": email})
	})
	if err != nil {
		return SalesPersonResponse{}, err
	}
	return SalesPersonResponse{ID: person.ID.String(), Name: person.Name, Email: person.Email}, nil
}

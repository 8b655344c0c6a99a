package service

import (
	"context"
	"fmt"
	"time"

	"salesdesk/internal/model"
	"salesdesk/internal/repository"
	"salesdesk/pkg/billing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateInvoiceRequest struct {
	CustomerID       string      `json:"customer_id" binding:"required"`
	InvoiceNo        string      `json:"invoice_no"` // client suggestion
	NumberPattern    string      `json:"number_pattern"`
	InvoiceDate      string      `json:"invoice_date"` // YYYY-MM-DD
	PaymentTermsDays int         `json:"payment_terms_days" binding:"gte=0"`
	Items            []ItemInput `json:"items" binding:"required,min=1"`
	TaxInput
	Note string `json:"note"`
}

type InvoiceResponse struct {
	ID                 string         `json:"id"`
	InvoiceNo          string         `json:"invoice_no"`
	CustomerID         string         `json:"customer_id"`
	CustomerName       string         `json:"customer_name"`
	RecurringInvoiceID *string        `json:"recurring_invoice_id"`
	InvoiceDate        string         `json:"invoice_date"`
	DueDate            string         `json:"due_date"`
	Items              []ItemResponse `json:"items"`
	TotalsResponse
	AmountDue string `json:"amount_due"`
	Status    string `json:"status"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

// UnpaidInvoiceResponse is one row offered on the payment form
type UnpaidInvoiceResponse struct {
	ID          string `json:"id"`
	InvoiceNo   string `json:"invoice_no"`
	InvoiceDate string `json:"invoice_date"`
	DueDate     string `json:"due_date"`
	GrandTotal  string `json:"grand_total"`
	AmountDue   string `json:"amount_due"`
	Status      string `json:"status"`
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest, userID *uuid.UUID) (InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (InvoiceResponse, error)
	ListUnpaid(ctx context.Context, customerID string) ([]UnpaidInvoiceResponse, error)
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	taxRepo      repository.TaxOptionRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	notifier     Notifier
	now          func() time.Time
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	taxRepo repository.TaxOptionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		taxRepo:      taxRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		notifier:     notifierOrNop(notifier),
		now:          time.Now,
	}
}

// --- Implementation ---

func mapInvoice(inv model.Invoice) InvoiceResponse {
	items := make([]ItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, mapItem(it.LineItem))
	}
	customerName := ""
	if inv.Customer != nil {
		customerName = inv.Customer.Name
	}
	var recurringID *string
	if inv.RecurringInvoiceID != nil {
		s := inv.RecurringInvoiceID.String()
		recurringID = &s
	}
	return InvoiceResponse{
		ID:                 inv.ID.String(),
		InvoiceNo:          inv.InvoiceNo,
		CustomerID:         inv.CustomerID.String(),
		CustomerName:       customerName,
		RecurringInvoiceID: recurringID,
		InvoiceDate:        inv.InvoiceDate.Format(dateLayout),
		DueDate:            inv.DueDate.Format(dateLayout),
		Items:              items,
		TotalsResponse:     mapTotals(inv.DocumentTax),
		AmountDue:          billing.FormatAmount(inv.AmountDue),
		Status:             inv.Status,
		Note:               inv.Note,
		CreatedAt:          inv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// issueInvoice numbers, opens and stores an invoice inside the caller's transaction.
func issueInvoice(
	ctx context.Context,
	invoiceRepo repository.InvoiceRepository,
	auditRepo repository.AuditRepository,
	inv *model.Invoice,
	pattern string,
	now time.Time,
	userID *uuid.UUID,
	action string,
) error {
	number, err := assignNumber(ctx, invoiceRepo.CountByPrefix, billing.PrefixInvoice, pattern, now)
	if err != nil {
		return err
	}
	inv.InvoiceNo = number
	inv.AmountDue = inv.GrandTotal
	inv.Status = model.InvoiceUnpaid
	if !inv.AmountDue.IsPositive() {
		inv.AmountDue = decimal.Zero
		inv.Status = model.InvoicePaid
	}
	if err := invoiceRepo.Create(ctx, inv); err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return writeAudit(ctx, auditRepo, userID, action, inv.ID.String(), inv.InvoiceNo, map[string]string{
		"grand_total": billing.FormatAmount(inv.GrandTotal),
		"due_date":    inv.DueDate.Format(dateLayout),
	})
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest, userID *uuid.UUID) (InvoiceResponse, error) {
	customerID, err := parseUUID("customer_id", req.CustomerID)
	if err != nil {
		return InvoiceResponse{}, err
	}
	if req.PaymentTermsDays < 0 {
		return InvoiceResponse{}, fmt.Errorf("%w: payment terms cannot be negative", ErrInvalidInput)
	}
	now := s.now()
	invoiceDate, err := parseDate(req.InvoiceDate, now)
	if err != nil {
		return InvoiceResponse{}, err
	}

	var inv model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, err := s.customerRepo.FindByID(txCtx, customerID)
		if err != nil {
			return notFound("customer", err)
		}
		priced, err := priceDocument(txCtx, s.taxRepo, req.Items, req.TaxInput)
		if err != nil {
			return err
		}

		items := make([]model.InvoiceItem, len(priced.Items))
		for i, li := range priced.Items {
			items[i] = model.InvoiceItem{LineItem: li}
		}
		inv = model.Invoice{
			CustomerID:  customer.ID,
			InvoiceDate: invoiceDate,
			DueDate:     invoiceDate.AddDate(0, 0, req.PaymentTermsDays),
			DocumentTax: priced.Tax,
			Items:       items,
			Note:        req.Note,
		}
		if err := issueInvoice(txCtx, s.invoiceRepo, s.auditRepo, &inv, req.NumberPattern, now, userID, model.ActionCreateInvoice); err != nil {
			return err
		}
		inv.Customer = customer
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	res := mapInvoice(inv)
	s.notifier.Publish(EventInvoiceCreated, map[string]string{
		"id": res.ID, "invoice_no": res.InvoiceNo, "customer": res.CustomerName, "grand_total": res.GrandTotal,
	})
	return res, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (InvoiceResponse, error) {
	invoiceID, err := parseUUID("invoice", id)
	if err != nil {
		return InvoiceResponse{}, err
	}
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, notFound("invoice", err)
	}
	return mapInvoice(*inv), nil
}

func (s *invoiceService) ListUnpaid(ctx context.Context, customerID string) ([]UnpaidInvoiceResponse, error) {
	id, err := parseUUID("customer", customerID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.ListUnpaid(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unpaid invoices: %w", err)
	}
	res := make([]UnpaidInvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		res = append(res, UnpaidInvoiceResponse{
			ID:          inv.ID.String(),
			InvoiceNo:   inv.InvoiceNo,
			InvoiceDate: inv.InvoiceDate.Format(dateLayout),
			DueDate:     inv.DueDate.Format(dateLayout),
			GrandTotal:  billing.FormatAmount(inv.GrandTotal),
			AmountDue:   billing.FormatAmount(inv.AmountDue),
			Status:      inv.Status,
		})
	}
	return res, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"salesdesk/internal/model"
	"salesdesk/internal/repository"
	"salesdesk/pkg/billing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type AllocationInput struct {
	InvoiceID  string `json:"invoice_id" binding:"required"`
	AmountUsed string `json:"amount_used" binding:"amount"`
}

type RecordPaymentRequest struct {
	CustomerID     string            `json:"customer_id" binding:"required"`
	PaymentNo      string            `json:"payment_no"` // client suggestion
	NumberPattern  string            `json:"number_pattern"`
	PaymentDate    string            `json:"payment_date"` // YYYY-MM-DD
	PaymentMode    string            `json:"payment_mode" binding:"required,oneof=CASH BANK_TRANSFER CHEQUE UPI"`
	ReferenceNo    string            `json:"reference_no"`
	DepositTo      string            `json:"deposit_to"`
	AmountReceived string            `json:"amount_received" binding:"required,amount"`
	BankCharges    string            `json:"bank_charges" binding:"amount"`
	Notes          string            `json:"notes"`
	Allocations    []AllocationInput `json:"allocations" binding:"dive"`
}

type AllocationResponse struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNo     string `json:"invoice_no"`
	AmountUsed    string `json:"amount_used"`
	RemainingDue  string `json:"remaining_due"`
	InvoiceStatus string `json:"invoice_status"`
}

type PaymentResponse struct {
	ID             string               `json:"id"`
	PaymentNo      string               `json:"payment_no"`
	CustomerID     string               `json:"customer_id"`
	CustomerName   string               `json:"customer_name"`
	PaymentDate    string               `json:"payment_date"`
	PaymentMode    string               `json:"payment_mode"`
	ReferenceNo    string               `json:"reference_no"`
	DepositTo      string               `json:"deposit_to"`
	AmountReceived string               `json:"amount_received"`
	BankCharges    string               `json:"bank_charges"`
	AmountUsed     string               `json:"amount_used"`
	AmountExcess   string               `json:"amount_excess"`
	AmountRefunded string               `json:"amount_refunded"`
	Allocations    []AllocationResponse `json:"allocations"`
	Notes          string               `json:"notes"`
	CreatedAt      string               `json:"created_at"`
}

// --- Interface ---

type PaymentService interface {
	RecordPayment(ctx context.Context, req RecordPaymentRequest, userID *uuid.UUID) (PaymentResponse, error)
}

type paymentService struct {
	paymentRepo  repository.PaymentRepository
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	notifier     Notifier
	now          func() time.Time
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) PaymentService {
	return &paymentService{
		paymentRepo:  paymentRepo,
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		notifier:     notifierOrNop(notifier),
		now:          time.Now,
	}
}

// --- Implementation ---

func validPaymentMode(mode string) bool {
	switch mode {
	case model.PaymentModeCash, model.PaymentModeBankTransfer, model.PaymentModeCheque, model.PaymentModeUPI:
		return true
	}
	return false
}

func parseMoney(field, raw string, allowEmpty bool) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" && allowEmpty {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s must be a number", ErrInvalidInput, field)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s cannot be negative", ErrInvalidInput, field)
	}
	return d, nil
}

// RecordPayment stores a payment and applies it to the customer's unpaid
// invoices. Allocations are re-validated against the locked invoice rows.
func (s *paymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest, userID *uuid.UUID) (PaymentResponse, error) {
	if !validPaymentMode(req.PaymentMode) {
		return PaymentResponse{}, fmt.Errorf("%w: unknown payment mode %q", ErrInvalidInput, req.PaymentMode)
	}
	customerID, err := parseUUID("customer_id", req.CustomerID)
	if err != nil {
		return PaymentResponse{}, err
	}
	received, err := parseMoney("amount_received", req.AmountReceived, false)
	if err != nil {
		return PaymentResponse{}, err
	}
	if !received.IsPositive() {
		return PaymentResponse{}, fmt.Errorf("%w: amount_received must be greater than zero", ErrInvalidInput)
	}
	bankCharges, err := parseMoney("bank_charges", req.BankCharges, true)
	if err != nil {
		return PaymentResponse{}, err
	}
	now := s.now()
	paymentDate, err := parseDate(req.PaymentDate, now)
	if err != nil {
		return PaymentResponse{}, err
	}

	requested := make(map[uuid.UUID]decimal.Decimal, len(req.Allocations))
	ids := make([]uuid.UUID, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		id, err := parseUUID("invoice_id", a.InvoiceID)
		if err != nil {
			return PaymentResponse{}, err
		}
		if _, dup := requested[id]; dup {
			return PaymentResponse{}, fmt.Errorf("%w: invoice %s allocated twice", ErrInvalidAllocation, id)
		}
		used := billing.ParseAmount(a.AmountUsed)
		requested[id] = used
		ids = append(ids, id)
	}

	var payment model.Payment
	var invoices []model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, err := s.customerRepo.FindByID(txCtx, customerID)
		if err != nil {
			return notFound("customer", err)
		}

		if len(ids) > 0 {
			invoices, err = s.invoiceRepo.FindByIDsForUpdate(txCtx, ids)
			if err != nil {
				return fmt.Errorf("failed to lock invoices: %w", err)
			}
		}
		byID := make(map[uuid.UUID]*model.Invoice, len(invoices))
		for i := range invoices {
			byID[invoices[i].ID] = &invoices[i]
		}

		usages := make([]billing.InvoiceUsage, 0, len(ids))
		for _, id := range ids {
			inv, ok := byID[id]
			if !ok {
				return fmt.Errorf("invoice %s: %w", id, ErrNotFound)
			}
			if inv.CustomerID != customer.ID {
				return fmt.Errorf("%w: invoice %s belongs to another customer", ErrInvalidAllocation, inv.InvoiceNo)
			}
			usages = append(usages, billing.InvoiceUsage{
				InvoiceID:     inv.ID.String(),
				InvoiceNo:     inv.InvoiceNo,
				InvoiceAmount: inv.GrandTotal,
				AmountDue:     inv.AmountDue,
				AmountUsed:    requested[id],
			})
		}
		if err := billing.ValidateAllocations(usages, received); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidAllocation, err)
		}
		summary := billing.Summarize(usages, received)

		number, err := assignNumber(txCtx, s.paymentRepo.CountByPrefix, billing.PrefixPayment, req.NumberPattern, now)
		if err != nil {
			return err
		}

		allocations := make([]model.PaymentAllocation, 0, len(usages))
		for _, u := range usages {
			if u.AmountUsed.IsZero() {
				continue
			}
			id := uuid.MustParse(u.InvoiceID)
			inv := byID[id]
			inv.ApplyPayment(u.AmountUsed)
			if err := s.invoiceRepo.Update(txCtx, inv); err != nil {
				return fmt.Errorf("failed to update invoice %s: %w", inv.InvoiceNo, err)
			}
			allocations = append(allocations, model.PaymentAllocation{InvoiceID: id, AmountUsed: u.AmountUsed})
		}

		payment = model.Payment{
			PaymentNo:      number,
			CustomerID:     customer.ID,
			PaymentDate:    paymentDate,
			PaymentMode:    req.PaymentMode,
			ReferenceNo:    strings.TrimSpace(req.ReferenceNo),
			DepositTo:      strings.TrimSpace(req.DepositTo),
			AmountReceived: summary.AmountReceived,
			BankCharges:    bankCharges,
			AmountUsed:     summary.AmountUsed,
			AmountExcess:   summary.AmountExcess,
			AmountRefunded: summary.AmountRefunded,
			Allocations:    allocations,
			Notes:          req.Notes,
			CreatedBy:      userID,
		}
		if err := s.paymentRepo.Create(txCtx, &payment); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		payment.Customer = customer

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionRecordPayment,
			payment.ID.String(), payment.PaymentNo, map[string]interface{}{
				"amount_received": billing.FormatAmount(payment.AmountReceived),
				"amount_used":     billing.FormatAmount(payment.AmountUsed),
				"invoices":        len(allocations),
			})
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	res := mapPayment(payment, invoices)
	s.notifier.Publish(EventPaymentRecorded, map[string]string{
		"id": res.ID, "payment_no": res.PaymentNo, "customer": res.CustomerName, "amount_received": res.AmountReceived,
	})
	return res, nil
}

func mapPayment(p model.Payment, invoices []model.Invoice) PaymentResponse {
	byID := make(map[uuid.UUID]model.Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
	}
	allocations := make([]AllocationResponse, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		inv := byID[a.InvoiceID]
		allocations = append(allocations, AllocationResponse{
			InvoiceID:     a.InvoiceID.String(),
			InvoiceNo:     inv.InvoiceNo,
			AmountUsed:    billing.FormatAmount(a.AmountUsed),
			RemainingDue:  billing.FormatAmount(inv.AmountDue),
			InvoiceStatus: inv.Status,
		})
	}
	customerName := ""
	if p.Customer != nil {
		customerName = p.Customer.Name
	}
	return PaymentResponse{
		ID:             p.ID.String(),
		PaymentNo:      p.PaymentNo,
		CustomerID:     p.CustomerID.String(),
		CustomerName:   customerName,
		PaymentDate:    p.PaymentDate.Format(dateLayout),
		PaymentMode:    p.PaymentMode,
		ReferenceNo:    p.ReferenceNo,
		DepositTo:      p.DepositTo,
		AmountReceived: billing.FormatAmount(p.AmountReceived),
		BankCharges:    billing.FormatAmount(p.BankCharges),
		AmountUsed:     billing.FormatAmount(p.AmountUsed),
		AmountExcess:   billing.FormatAmount(p.AmountExcess),
		AmountRefunded: billing.FormatAmount(p.AmountRefunded),
		Allocations:    allocations,
		Notes:          p.Notes,
		CreatedAt:      p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

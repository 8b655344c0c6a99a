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
	"go.uber.org/zap"
)

// maxCatchUpRuns bounds how many missed periods one profile replays per tick.
const maxCatchUpRuns = 24

// --- DTOs ---

type CreateRecurringInvoiceRequest struct {
	CustomerID       string      `json:"customer_id" binding:"required"`
	ProfileNo        string      `json:"profile_no"` // client suggestion
	NumberPattern    string      `json:"number_pattern"`
	ProfileName      string      `json:"profile_name" binding:"required"`
	SalesPersonID    string      `json:"sales_person_id"`
	OrderNumber      string      `json:"order_number"`
	RepeatEvery      string      `json:"repeat_every" binding:"required,oneof=WEEK MONTH YEAR"`
	StartDate        string      `json:"start_date"` // YYYY-MM-DD
	EndDate          string      `json:"end_date"`
	NeverExpires     bool        `json:"never_expires"`
	PaymentTermsDays int         `json:"payment_terms_days" binding:"gte=0"`
	InvoicePattern   string      `json:"invoice_pattern"`
	Items            []ItemInput `json:"items" binding:"required,min=1"`
	TaxInput
	CustomerNotes string `json:"customer_notes"`
}

type RecurringInvoiceResponse struct {
	ID               string         `json:"id"`
	ProfileNo        string         `json:"profile_no"`
	ProfileName      string         `json:"profile_name"`
	CustomerID       string         `json:"customer_id"`
	CustomerName     string         `json:"customer_name"`
	SalesPersonID    *string        `json:"sales_person_id"`
	OrderNumber      string         `json:"order_number"`
	RepeatEvery      string         `json:"repeat_every"`
	StartDate        string         `json:"start_date"`
	EndDate          *string        `json:"end_date"`
	NeverExpires     bool           `json:"never_expires"`
	NextRunAt        string         `json:"next_run_at"`
	LastRunAt        *string        `json:"last_run_at"`
	PaymentTermsDays int            `json:"payment_terms_days"`
	InvoicePattern   string         `json:"invoice_pattern"`
	Status           string         `json:"status"`
	Items            []ItemResponse `json:"items"`
	TotalsResponse
	CustomerNotes string `json:"customer_notes"`
	CreatedAt     string `json:"created_at"`
}

// --- Interface ---

type RecurringInvoiceService interface {
	ListProfiles(ctx context.Context, status string, page, limit int) ([]RecurringInvoiceResponse, int64, error)
	CreateProfile(ctx context.Context, req CreateRecurringInvoiceRequest, userID *uuid.UUID) (RecurringInvoiceResponse, error)
	GenerateNow(ctx context.Context, id string, userID *uuid.UUID) (InvoiceResponse, error)
	GenerateDue(ctx context.Context) (int, error)
}

type recurringInvoiceService struct {
	repo            repository.RecurringInvoiceRepository
	invoiceRepo     repository.InvoiceRepository
	customerRepo    repository.CustomerRepository
	salesPersonRepo repository.SalesPersonRepository
	taxRepo         repository.TaxOptionRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	notifier        Notifier
	log             *zap.Logger
	loc             *time.Location
	now             func() time.Time
}

func NewRecurringInvoiceService(
	repo repository.RecurringInvoiceRepository,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	salesPersonRepo repository.SalesPersonRepository,
	taxRepo repository.TaxOptionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
	log *zap.Logger,
	loc *time.Location,
) RecurringInvoiceService {
	if loc == nil {
		loc = time.Local
	}
	return &recurringInvoiceService{
		repo:            repo,
		invoiceRepo:     invoiceRepo,
		customerRepo:    customerRepo,
		salesPersonRepo: salesPersonRepo,
		taxRepo:         taxRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		notifier:        notifierOrNop(notifier),
		log:             log,
		loc:             loc,
		now:             time.Now,
	}
}

// --- Implementation ---

// localNow returns the current time in the schedule's location; run and invoice
// dates are calendar days in that zone.
func (s *recurringInvoiceService) localNow() time.Time {
	return s.now().In(s.loc)
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func mapRecurringInvoice(p model.RecurringInvoice) RecurringInvoiceResponse {
	items := make([]ItemResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, mapItem(it.LineItem))
	}
	customerName := ""
	if p.Customer != nil {
		customerName = p.Customer.Name
	}
	var salesPersonID *string
	if p.SalesPersonID != nil {
		s := p.SalesPersonID.String()
		salesPersonID = &s
	}
	var lastRun *string
	if p.LastRunAt != nil {
		s := p.LastRunAt.Format(time.RFC3339)
		lastRun = &s
	}
	return RecurringInvoiceResponse{
		ID:               p.ID.String(),
		ProfileNo:        p.ProfileNo,
		ProfileName:      p.ProfileName,
		CustomerID:       p.CustomerID.String(),
		CustomerName:     customerName,
		SalesPersonID:    salesPersonID,
		OrderNumber:      p.OrderNumber,
		RepeatEvery:      p.RepeatEvery,
		StartDate:        p.StartDate.Format(dateLayout),
		EndDate:          formatOptionalDate(p.EndDate),
		NeverExpires:     p.NeverExpires,
		NextRunAt:        p.NextRunAt.Format(dateLayout),
		LastRunAt:        lastRun,
		PaymentTermsDays: p.PaymentTermsDays,
		InvoicePattern:   p.InvoicePattern,
		Status:           p.Status,
		Items:            items,
		TotalsResponse:   mapTotals(p.DocumentTax),
		CustomerNotes:    p.CustomerNotes,
		CreatedAt:        p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *recurringInvoiceService) ListProfiles(ctx context.Context, status string, page, limit int) ([]RecurringInvoiceResponse, int64, error) {
	profiles, total, err := s.repo.List(ctx, strings.ToUpper(status), page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch recurring invoices: %w", err)
	}
	res := make([]RecurringInvoiceResponse, 0, len(profiles))
	for _, p := range profiles {
		res = append(res, mapRecurringInvoice(p))
	}
	return res, total, nil
}

func (s *recurringInvoiceService) CreateProfile(ctx context.Context, req CreateRecurringInvoiceRequest, userID *uuid.UUID) (RecurringInvoiceResponse, error) {
	switch req.RepeatEvery {
	case model.RepeatWeek, model.RepeatMonth, model.RepeatYear:
	default:
		return RecurringInvoiceResponse{}, fmt.Errorf("%w: repeat_every must be WEEK, MONTH or YEAR", ErrInvalidInput)
	}
	name := strings.TrimSpace(req.ProfileName)
	if name == "" {
		return RecurringInvoiceResponse{}, fmt.Errorf("%w: profile_name is required", ErrInvalidInput)
	}
	if req.PaymentTermsDays < 0 {
		return RecurringInvoiceResponse{}, fmt.Errorf("%w: payment terms cannot be negative", ErrInvalidInput)
	}
	customerID, err := parseUUID("customer_id", req.CustomerID)
	if err != nil {
		return RecurringInvoiceResponse{}, err
	}
	var salesPersonID *uuid.UUID
	if req.SalesPersonID != "" {
		id, err := parseUUID("sales_person_id", req.SalesPersonID)
		if err != nil {
			return RecurringInvoiceResponse{}, err
		}
		salesPersonID = &id
	}

	now := s.localNow()
	start, err := parseDate(req.StartDate, now)
	if err != nil {
		return RecurringInvoiceResponse{}, err
	}
	var end *time.Time
	if !req.NeverExpires {
		if strings.TrimSpace(req.EndDate) == "" {
			return RecurringInvoiceResponse{}, fmt.Errorf("%w: end_date is required unless never_expires is set", ErrInvalidInput)
		}
		e, err := parseDate(req.EndDate, now)
		if err != nil {
			return RecurringInvoiceResponse{}, err
		}
		if e.Before(start) {
			return RecurringInvoiceResponse{}, fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
		}
		end = &e
	}

	var profile model.RecurringInvoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, err := s.customerRepo.FindByID(txCtx, customerID)
		if err != nil {
			return notFound("customer", err)
		}
		if salesPersonID != nil {
			if _, err := s.salesPersonRepo.FindByID(txCtx, *salesPersonID); err != nil {
				return notFound("sales person", err)
			}
		}
		priced, err := priceDocument(txCtx, s.taxRepo, req.Items, req.TaxInput)
		if err != nil {
			return err
		}
		number, err := assignNumber(txCtx, s.repo.CountByPrefix, billing.PrefixRecurringInvoice, req.NumberPattern, now)
		if err != nil {
			return err
		}
		// validated here so a bad pattern fails at creation, not at the first run
		if _, err := assignNumber(txCtx, noCount, billing.PrefixInvoice, req.InvoicePattern, now); err != nil {
			return err
		}

		items := make([]model.RecurringInvoiceItem, len(priced.Items))
		for i, li := range priced.Items {
			items[i] = model.RecurringInvoiceItem{LineItem: li}
		}
		profile = model.RecurringInvoice{
			ProfileNo:        number,
			ProfileName:      name,
			CustomerID:       customer.ID,
			SalesPersonID:    salesPersonID,
			OrderNumber:      strings.TrimSpace(req.OrderNumber),
			RepeatEvery:      req.RepeatEvery,
			StartDate:        start,
			EndDate:          end,
			NeverExpires:     req.NeverExpires,
			NextRunAt:        start,
			PaymentTermsDays: req.PaymentTermsDays,
			InvoicePattern:   req.InvoicePattern,
			Status:           model.RecurringActive,
			DocumentTax:      priced.Tax,
			Items:            items,
			CustomerNotes:    req.CustomerNotes,
			CreatedBy:        userID,
		}
		if err := s.repo.Create(txCtx, &profile); err != nil {
			return fmt.Errorf("failed to create recurring invoice: %w", err)
		}
		profile.Customer = customer

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateRecurringInvoice,
			profile.ID.String(), profile.ProfileNo, map[string]string{
				"profile_name": profile.ProfileName,
				"repeat_every": profile.RepeatEvery,
				"grand_total":  billing.FormatAmount(profile.GrandTotal),
			})
	})
	if err != nil {
		return RecurringInvoiceResponse{}, err
	}

	res := mapRecurringInvoice(profile)
	s.notifier.Publish(EventRecurringInvoiceCreated, map[string]string{
		"id": res.ID, "profile_no": res.ProfileNo, "profile_name": res.ProfileName,
	})
	return res, nil
}

func noCount(context.Context, string) (int64, error) { return 0, nil }

// GenerateNow issues an invoice from the profile immediately. The schedule is
// left untouched.
func (s *recurringInvoiceService) GenerateNow(ctx context.Context, id string, userID *uuid.UUID) (InvoiceResponse, error) {
	profileID, err := parseUUID("recurring invoice", id)
	if err != nil {
		return InvoiceResponse{}, err
	}
	now := s.localNow()

	var inv model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		profile, err := s.repo.FindByID(txCtx, profileID)
		if err != nil {
			return notFound("recurring invoice", err)
		}
		if profile.Status != model.RecurringActive {
			return fmt.Errorf("%s: %w", profile.ProfileNo, ErrProfileInactive)
		}
		inv, err = s.issueFromProfile(txCtx, profile, now, now, userID)
		if err != nil {
			return err
		}
		profile.LastRunAt = &now
		if err := s.repo.Update(txCtx, profile); err != nil {
			return fmt.Errorf("failed to update recurring invoice: %w", err)
		}
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

// GenerateDue issues every invoice whose run date has passed. Each run is its
// own transaction; a failing profile is logged and skipped.
func (s *recurringInvoiceService) GenerateDue(ctx context.Context) (int, error) {
	now := s.localNow()
	due, err := s.repo.FindDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch due recurring invoices: %w", err)
	}

	generated := 0
	for _, p := range due {
		for run := 0; run < maxCatchUpRuns; run++ {
			if err := ctx.Err(); err != nil {
				return generated, err
			}
			more, err := s.runOnce(ctx, p.ID, now)
			if err != nil {
				s.log.Error("recurring invoice generation failed",
					zap.String("profile_no", p.ProfileNo), zap.Error(err))
				break
			}
			if more >= 0 {
				generated++
			}
			if more <= 0 {
				break
			}
		}
	}
	if generated > 0 {
		s.log.Info("recurring invoices generated", zap.Int("count", generated))
	}
	return generated, nil
}

// runOnce generates the profile's next scheduled invoice. It returns 1 when
// another run is still due, 0 when the profile is caught up, and -1 when
// nothing was generated.
func (s *recurringInvoiceService) runOnce(ctx context.Context, profileID uuid.UUID, now time.Time) (int, error) {
	result := -1
	var inv model.Invoice
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		profile, err := s.repo.FindByID(txCtx, profileID)
		if err != nil {
			return notFound("recurring invoice", err)
		}
		if profile.Status != model.RecurringActive || profile.NextRunAt.After(now) {
			return nil
		}
		profile.StartDate = profile.StartDate.In(s.loc)
		profile.NextRunAt = profile.NextRunAt.In(s.loc)

		runAt := profile.NextRunAt
		if profile.EndDate != nil && runAt.After(*profile.EndDate) {
			profile.Status = model.RecurringExpired
			return s.repo.Update(txCtx, profile)
		}

		inv, err = s.issueFromProfile(txCtx, profile, runAt, now, nil)
		if err != nil {
			return err
		}

		profile.LastRunAt = &runAt
		profile.NextRunAt = profile.NextAfter(runAt)
		if !profile.NeverExpires && profile.EndDate != nil && profile.NextRunAt.After(*profile.EndDate) {
			profile.Status = model.RecurringExpired
		}
		if err := s.repo.Update(txCtx, profile); err != nil {
			return fmt.Errorf("failed to advance recurring invoice: %w", err)
		}

		result = 0
		if profile.Status == model.RecurringActive && !profile.NextRunAt.After(now) {
			result = 1
		}
		return nil
	})
	if err != nil {
		return -1, err
	}
	if result >= 0 {
		s.notifier.Publish(EventInvoiceCreated, map[string]string{
			"id": inv.ID.String(), "invoice_no": inv.InvoiceNo, "grand_total": billing.FormatAmount(inv.GrandTotal),
		})
	}
	return result, nil
}

// issueFromProfile copies the profile's lines and totals into a new invoice dated runAt.
func (s *recurringInvoiceService) issueFromProfile(ctx context.Context, p *model.RecurringInvoice, runAt, now time.Time, userID *uuid.UUID) (model.Invoice, error) {
	items := make([]model.InvoiceItem, len(p.Items))
	for i, it := range p.Items {
		items[i] = model.InvoiceItem{LineItem: it.LineItem}
	}
	y, m, d := runAt.In(s.loc).Date()
	invoiceDate := time.Date(y, m, d, 0, 0, 0, 0, s.loc)

	profileID := p.ID
	inv := model.Invoice{
		CustomerID:         p.CustomerID,
		RecurringInvoiceID: &profileID,
		InvoiceDate:        invoiceDate,
		DueDate:            invoiceDate.AddDate(0, 0, p.PaymentTermsDays),
		DocumentTax:        p.DocumentTax,
		Items:              items,
		Note:               p.CustomerNotes,
	}
	if err := issueInvoice(ctx, s.invoiceRepo, s.auditRepo, &inv, p.InvoicePattern, now, userID, model.ActionGenerateInvoice); err != nil {
		return model.Invoice{}, err
	}
	inv.Customer = p.Customer
	return inv, nil
}

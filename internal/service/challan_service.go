package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"salesdesk/internal/model"
	"salesdesk/internal/repository"
	"salesdesk/pkg/billing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- DTOs ---

type CreateDeliveryChallanRequest struct {
	CustomerID    string      `json:"customer_id" binding:"required"`
	ChallanNo     string      `json:"challan_no"` // client suggestion; the stored number is assigned here
	NumberPattern string      `json:"number_pattern"`
	ReferenceNo   string      `json:"reference_no"`
	ChallanDate   string      `json:"challan_date"` // YYYY-MM-DD
	ChallanType   string      `json:"challan_type" binding:"required,oneof=SUPPLY_OF_LIQUID_GAS JOB_WORK SUPPLY_ON_APPROVAL OTHERS"`
	Items         []ItemInput `json:"items" binding:"required,min=1"`
	TaxInput
	CustomerNotes string `json:"customer_notes"`
	Terms         string `json:"terms"`
}

type DeliveryChallanResponse struct {
	ID           string         `json:"id"`
	ChallanNo    string         `json:"challan_no"`
	ReferenceNo  string         `json:"reference_no"`
	CustomerID   string         `json:"customer_id"`
	CustomerName string         `json:"customer_name"`
	ChallanDate  string         `json:"challan_date"`
	ChallanType  string         `json:"challan_type"`
	Status       string         `json:"status"`
	Items        []ItemResponse `json:"items"`
	TotalsResponse
	CustomerNotes string `json:"customer_notes"`
	Terms         string `json:"terms"`
	CreatedAt     string `json:"created_at"`
}

// --- Interface ---

type DeliveryChallanService interface {
	ListChallans(ctx context.Context, customerID string, page, limit int) ([]DeliveryChallanResponse, int64, error)
	GetChallan(ctx context.Context, id string) (DeliveryChallanResponse, error)
	CreateChallan(ctx context.Context, req CreateDeliveryChallanRequest, userID *uuid.UUID) (DeliveryChallanResponse, error)
	RenderPDF(ctx context.Context, id string, w io.Writer) (string, error)
}

type deliveryChallanService struct {
	repo         repository.DeliveryChallanRepository
	customerRepo repository.CustomerRepository
	taxRepo      repository.TaxOptionRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	notifier     Notifier
	log          *zap.Logger
	now          func() time.Time
}

func NewDeliveryChallanService(
	repo repository.DeliveryChallanRepository,
	customerRepo repository.CustomerRepository,
	taxRepo repository.TaxOptionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
	log *zap.Logger,
) DeliveryChallanService {
	return &deliveryChallanService{
		repo:         repo,
		customerRepo: customerRepo,
		taxRepo:      taxRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		notifier:     notifierOrNop(notifier),
		log:          log,
		now:          time.Now,
	}
}

// --- Implementation ---

func validChallanType(t string) bool {
	switch t {
	case model.ChallanTypeSupplyOfLiquidGas, model.ChallanTypeJobWork,
		model.ChallanTypeSupplyOnApproval, model.ChallanTypeOthers:
		return true
	}
	return false
}

func mapChallan(c model.DeliveryChallan) DeliveryChallanResponse {
	items := make([]ItemResponse, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, mapItem(it.LineItem))
	}
	customerName := ""
	if c.Customer != nil {
		customerName = c.Customer.Name
	}
	return DeliveryChallanResponse{
		ID:             c.ID.String(),
		ChallanNo:      c.ChallanNo,
		ReferenceNo:    c.ReferenceNo,
		CustomerID:     c.CustomerID.String(),
		CustomerName:   customerName,
		ChallanDate:    c.ChallanDate.Format(dateLayout),
		ChallanType:    c.ChallanType,
		Status:         c.Status,
		Items:          items,
		TotalsResponse: mapTotals(c.DocumentTax),
		CustomerNotes:  c.CustomerNotes,
		Terms:          c.TermsAndConditions,
		CreatedAt:      c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *deliveryChallanService) ListChallans(ctx context.Context, customerID string, page, limit int) ([]DeliveryChallanResponse, int64, error) {
	var filter *uuid.UUID
	if customerID != "" {
		id, err := parseUUID("customer", customerID)
		if err != nil {
			return nil, 0, err
		}
		filter = &id
	}

	challans, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch delivery challans: %w", err)
	}
	res := make([]DeliveryChallanResponse, 0, len(challans))
	for _, c := range challans {
		res = append(res, mapChallan(c))
	}
	return res, total, nil
}

func (s *deliveryChallanService) GetChallan(ctx context.Context, id string) (DeliveryChallanResponse, error) {
	challan, err := s.load(ctx, id)
	if err != nil {
		return DeliveryChallanResponse{}, err
	}
	return mapChallan(*challan), nil
}

func (s *deliveryChallanService) load(ctx context.Context, id string) (*model.DeliveryChallan, error) {
	challanID, err := parseUUID("delivery challan", id)
	if err != nil {
		return nil, err
	}
	challan, err := s.repo.FindByID(ctx, challanID)
	if err != nil {
		return nil, notFound("delivery challan", err)
	}
	return challan, nil
}

func (s *deliveryChallanService) CreateChallan(ctx context.Context, req CreateDeliveryChallanRequest, userID *uuid.UUID) (DeliveryChallanResponse, error) {
	if !validChallanType(req.ChallanType) {
		return DeliveryChallanResponse{}, fmt.Errorf("%w: unknown challan type %q", ErrInvalidInput, req.ChallanType)
	}
	customerID, err := parseUUID("customer_id", req.CustomerID)
	if err != nil {
		return DeliveryChallanResponse{}, err
	}
	now := s.now()
	challanDate, err := parseDate(req.ChallanDate, now)
	if err != nil {
		return DeliveryChallanResponse{}, err
	}

	var challan model.DeliveryChallan
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, err := s.customerRepo.FindByID(txCtx, customerID)
		if err != nil {
			return notFound("customer", err)
		}

		priced, err := priceDocument(txCtx, s.taxRepo, req.Items, req.TaxInput)
		if err != nil {
			return err
		}

		number, err := assignNumber(txCtx, s.repo.CountByPrefix, billing.PrefixDeliveryChallan, req.NumberPattern, now)
		if err != nil {
			return err
		}

		items := make([]model.DeliveryChallanItem, len(priced.Items))
		for i, li := range priced.Items {
			items[i] = model.DeliveryChallanItem{LineItem: li}
		}

		challan = model.DeliveryChallan{
			ChallanNo:          number,
			ReferenceNo:        strings.TrimSpace(req.ReferenceNo),
			CustomerID:         customer.ID,
			ChallanDate:        challanDate,
			ChallanType:        req.ChallanType,
			Status:             model.ChallanStatusOpen,
			DocumentTax:        priced.Tax,
			Items:              items,
			CustomerNotes:      req.CustomerNotes,
			TermsAndConditions: req.Terms,
			CreatedBy:          userID,
		}
		if err := s.repo.Create(txCtx, &challan); err != nil {
			return fmt.Errorf("failed to create delivery challan: %w", err)
		}
		challan.Customer = customer

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateDeliveryChallan,
			challan.ID.String(), challan.ChallanNo, map[string]string{
				"customer":    customer.Name,
				"grand_total": billing.FormatAmount(challan.GrandTotal),
				"suggested":   req.ChallanNo,
			})
	})
	if err != nil {
		return DeliveryChallanResponse{}, err
	}

	if req.ChallanNo != "" && req.ChallanNo != challan.ChallanNo {
		s.log.Debug("challan number reassigned",
			zap.String("suggested", req.ChallanNo), zap.String("assigned", challan.ChallanNo))
	}

	res := mapChallan(challan)
	s.notifier.Publish(EventDeliveryChallanCreated, map[string]string{
		"id": res.ID, "challan_no": res.ChallanNo, "customer": res.CustomerName, "grand_total": res.GrandTotal,
	})
	return res, nil
}

// RenderPDF writes the printable challan to w and returns its number.
func (s *deliveryChallanService) RenderPDF(ctx context.Context, id string, w io.Writer) (string, error) {
	challan, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if err := writeChallanPDF(challan, w); err != nil {
		return "", fmt.Errorf("failed to render challan %s: %w", challan.ChallanNo, err)
	}
	return challan.ChallanNo, nil
}

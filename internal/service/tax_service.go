package service

import (
	"context"
	"fmt"
	"strings"

	"salesdesk/internal/model"
	"salesdesk/internal/repository"
	"salesdesk/pkg/billing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- DTOs ---

type CreateTaxOptionRequest struct {
	Name string `json:"name" binding:"required"`
	Rate string `json:"rate" binding:"required,amount"` // percent, e.g. "1" for 1%
}

type TaxOptionResponse struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
	Rate string `json:"rate"`
}

// defaultTDSOptions are seeded once; TDS options cannot be created through the API.
var defaultTDSOptions = []struct {
	Name string
	Rate string
}{
	{"Commission or Brokerage", "5"},
	{"Commission or Brokerage (Reduced)", "3.75"},
	{"Dividend", "10"},
	{"Other Interest than securities", "10"},
	{"Payment of contractors for Others", "2"},
	{"Payment of contractors HUF/Indiv", "1"},
	{"Professional Fees", "10"},
	{"Rent on land or furniture etc", "10"},
	{"Technical Fees (2%)", "2"},
}

// --- Interface ---

type TaxService interface {
	ListOptions(ctx context.Context, kind string) ([]TaxOptionResponse, error)
	CreateOption(ctx context.Context, kind string, req CreateTaxOptionRequest, userID *uuid.UUID) (TaxOptionResponse, error)
	SeedDefaults(ctx context.Context) error
}

type taxService struct {
	repo      repository.TaxOptionRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	notifier  Notifier
	log       *zap.Logger
}

func NewTaxService(
	repo repository.TaxOptionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
	log *zap.Logger,
) TaxService {
	return &taxService{
		repo:      repo,
		auditRepo: auditRepo,
		txManager: txManager,
		notifier:  notifierOrNop(notifier),
		log:       log,
	}
}

// --- Implementation ---

func normalizeKind(kind string) (string, error) {
	k, ok := billing.ParseTaxKind(kind)
	if !ok || k == billing.TaxNone {
		return "", fmt.Errorf("%w: tax kind must be TDS or TCS", ErrInvalidInput)
	}
	return string(k), nil
}

func mapTaxOption(o model.TaxOption) TaxOptionResponse {
	return TaxOptionResponse{
		ID:   o.ID.String(),
		Kind: o.Kind,
		Name: o.Name,
		Rate: o.RatePercent.String(),
	}
}

func (s *taxService) ListOptions(ctx context.Context, kind string) ([]TaxOptionResponse, error) {
	k, err := normalizeKind(kind)
	if err != nil {
		return nil, err
	}
	options, err := s.repo.ListByKind(ctx, k)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s options: %w", k, err)
	}
	res := make([]TaxOptionResponse, 0, len(options))
	for _, o := range options {
		res = append(res, mapTaxOption(o))
	}
	return res, nil
}

func (s *taxService) CreateOption(ctx context.Context, kind string, req CreateTaxOptionRequest, userID *uuid.UUID) (TaxOptionResponse, error) {
	k, err := normalizeKind(kind)
	if err != nil {
		return TaxOptionResponse{}, err
	}
	if k == model.TaxKindTDS {
		return TaxOptionResponse{}, fmt.Errorf("%s options: %w", k, ErrReadOnlyTaxKind)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return TaxOptionResponse{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(req.Rate))
	if err != nil {
		return TaxOptionResponse{}, fmt.Errorf("%w: rate must be a number", ErrInvalidInput)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return TaxOptionResponse{}, fmt.Errorf("%w: rate must be between 0 and 100", ErrInvalidInput)
	}

	option := model.TaxOption{Kind: k, Name: name, RatePercent: rate}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, &option); err != nil {
			return fmt.Errorf("failed to create %s option: %w", k, err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateTaxOption,
			option.ID.String(), option.Name, map[string]string{"kind": k, "rate": rate.String()})
	})
	if err != nil {
		return TaxOptionResponse{}, err
	}

	res := mapTaxOption(option)
	s.notifier.Publish(EventTaxOptionCreated, res)
	return res, nil
}

// SeedDefaults inserts the standard TDS options when none exist.
func (s *taxService) SeedDefaults(ctx context.Context) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		count, err := s.repo.CountByKind(txCtx, model.TaxKindTDS)
		if err != nil {
			return fmt.Errorf("failed to count TDS options: %w", err)
		}
		if count > 0 {
			return nil
		}
		for _, d := range defaultTDSOptions {
			option := model.TaxOption{
				Kind:        model.TaxKindTDS,
				Name:        d.Name,
				RatePercent: decimal.RequireFromString(d.Rate),
			}
			if err := s.repo.Create(txCtx, &option); err != nil {
				return fmt.Errorf("failed to seed TDS option %q: %w", d.Name, err)
			}
		}
		s.log.Info("seeded default TDS options", zap.Int("count", len(defaultTDSOptions)))
		return nil
	})
}

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

const dateLayout = "2006-01-02"

// ItemInput is one line as entered on a form. Numbers are decimal strings.
type ItemInput struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Rate        string `json:"rate"`
	Discount    string `json:"discount"`
}

// ItemResponse is a stored line with its computed amount.
type ItemResponse struct {
	Position    int    `json:"position"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Rate        string `json:"rate"`
	Discount    string `json:"discount"`
	Amount      string `json:"amount"`
}

// TaxInput is the tax part of a document request.
type TaxInput struct {
	TaxKind     string `json:"tax_kind"`      // TDS, TCS or empty
	TaxOptionID string `json:"tax_option_id"` // id from the matching list
	Adjustment  string `json:"adjustment"`
}

// TotalsResponse mirrors billing.Totals with fixed two-decimal strings.
type TotalsResponse struct {
	TaxKind     string  `json:"tax_kind"`
	TaxOptionID *string `json:"tax_option_id"`
	TaxRate     string  `json:"tax_rate"`
	Subtotal    string  `json:"subtotal"`
	TaxAmount   string  `json:"tax_amount"`
	Adjustment  string  `json:"adjustment"`
	GrandTotal  string  `json:"grand_total"`
}

// pricedDocument is the server-side recomputation of a submitted form.
type pricedDocument struct {
	Items []model.LineItem
	Tax   model.DocumentTax
}

// priceDocument recomputes every derived value of a document from its raw
// inputs. Client-side amounts are never trusted.
func priceDocument(ctx context.Context, taxRepo repository.TaxOptionRepository, items []ItemInput, tax TaxInput) (*pricedDocument, error) {
	kind, ok := billing.ParseTaxKind(tax.TaxKind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown tax kind %q", ErrInvalidInput, tax.TaxKind)
	}

	rows := make([]billing.ItemRow, 0, len(items))
	for _, in := range items {
		if isBlankItem(in) {
			continue
		}
		row := billing.ItemRow{
			Description:     strings.TrimSpace(in.Description),
			Quantity:        in.Quantity,
			Rate:            in.Rate,
			DiscountPercent: in.Discount,
		}
		row.Amount = row.ComputeAmount()
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}

	rate := decimal.Zero
	var optionID *uuid.UUID
	if kind != billing.TaxNone && tax.TaxOptionID != "" {
		options, err := taxRepo.ListByKind(ctx, string(kind))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s options: %w", kind, err)
		}
		opts := toBillingOptions(options)
		if _, found := billing.FindOption(opts, tax.TaxOptionID); !found {
			return nil, fmt.Errorf("%w: unknown %s option %s", ErrInvalidInput, kind, tax.TaxOptionID)
		}
		if kind == billing.TaxTDS {
			rate = billing.ResolveRate(kind, tax.TaxOptionID, opts, nil)
		} else {
			rate = billing.ResolveRate(kind, tax.TaxOptionID, nil, opts)
		}
		id, _ := uuid.Parse(tax.TaxOptionID)
		optionID = &id
	}

	totals := billing.Recompute(rows, kind, rate, billing.ParseAmount(tax.Adjustment)).Rounded()

	lines := make([]model.LineItem, len(rows))
	for i, r := range rows {
		lines[i] = model.LineItem{
			Position:        i + 1,
			Description:     r.Description,
			Quantity:        billing.ParseAmount(r.Quantity),
			Rate:            billing.ParseAmount(r.Rate),
			DiscountPercent: billing.ParseAmount(r.DiscountPercent),
			Amount:          billing.ParseAmount(r.Amount),
		}
	}

	return &pricedDocument{
		Items: lines,
		Tax: model.DocumentTax{
			TaxKind:     string(kind),
			TaxOptionID: optionID,
			TaxRate:     rate,
			Subtotal:    totals.Subtotal,
			TaxAmount:   totals.TaxAmount,
			Adjustment:  totals.Adjustment,
			GrandTotal:  totals.GrandTotal,
		},
	}, nil
}

func isBlankItem(in ItemInput) bool {
	return strings.TrimSpace(in.Description) == "" &&
		strings.TrimSpace(in.Quantity) == "" &&
		strings.TrimSpace(in.Rate) == ""
}

func toBillingOptions(options []model.TaxOption) []billing.TaxOption {
	out := make([]billing.TaxOption, len(options))
	for i, o := range options {
		out[i] = billing.TaxOption{ID: o.ID.String(), Name: o.Name, RatePercent: o.RatePercent}
	}
	return out
}

func mapItem(li model.LineItem) ItemResponse {
	return ItemResponse{
		Position:    li.Position,
		Description: li.Description,
		Quantity:    li.Quantity.String(),
		Rate:        billing.FormatAmount(li.Rate),
		Discount:    li.DiscountPercent.String(),
		Amount:      billing.FormatAmount(li.Amount),
	}
}

func mapTotals(t model.DocumentTax) TotalsResponse {
	var optionID *string
	if t.TaxOptionID != nil {
		s := t.TaxOptionID.String()
		optionID = &s
	}
	return TotalsResponse{
		TaxKind:     t.TaxKind,
		TaxOptionID: optionID,
		TaxRate:     t.TaxRate.String(),
		Subtotal:    billing.FormatAmount(t.Subtotal),
		TaxAmount:   billing.FormatAmount(t.TaxAmount),
		Adjustment:  billing.FormatAmount(t.Adjustment),
		GrandTotal:  billing.FormatAmount(t.GrandTotal),
	}
}

// parseDate reads YYYY-MM-DD, defaulting to today when empty.
func parseDate(value string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	}
	t, err := time.ParseInLocation(dateLayout, value, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, value)
	}
	return t, nil
}

func parseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a valid id", ErrInvalidInput, field)
	}
	return id, nil
}

// notFound converts gorm's record-not-found into ErrNotFound.
func notFound(what string, err error) error {
	if repository.IsNotFound(err) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"salesdesk/internal/repository"
	"salesdesk/pkg/billing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// Sheet names of the documents export
const (
	SheetChallans = "Delivery Challans"
	SheetInvoices = "Invoices"
	SheetPayments = "Payments"
)

type DocumentTotals struct {
	Count int    `json:"count"`
	Total string `json:"total"`
}

type SummaryResponse struct {
	From        string         `json:"from"`
	To          string         `json:"to"`
	Challans    DocumentTotals `json:"delivery_challans"`
	Invoices    DocumentTotals `json:"invoices"`
	Outstanding string         `json:"outstanding"`
	Payments    DocumentTotals `json:"payments"`
	AmountUsed  string         `json:"amount_used"`
}

type ReportService interface {
	Summary(ctx context.Context, from, to time.Time) (SummaryResponse, error)
	ExportXLSX(ctx context.Context, from, to time.Time, w io.Writer) error
}

type reportService struct {
	challanRepo repository.DeliveryChallanRepository
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
}

func NewReportService(
	challanRepo repository.DeliveryChallanRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
) ReportService {
	return &reportService{challanRepo: challanRepo, invoiceRepo: invoiceRepo, paymentRepo: paymentRepo}
}

// documents is every document dated inside a report range.
type documents struct {
	challans []reportRow
	invoices []reportRow
	payments []reportRow
}

type reportRow struct {
	Number   string
	Date     time.Time
	Customer string
	Status   string
	Amount   decimal.Decimal
	Extra    decimal.Decimal // amount due for invoices, amount used for payments
}

// load fetches the three document kinds concurrently.
func (s *reportService) load(ctx context.Context, from, to time.Time) (*documents, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: report range ends before it starts", ErrInvalidInput)
	}
	docs := &documents{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		challans, err := s.challanRepo.ListInRange(gctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to load delivery challans: %w", err)
		}
		for _, c := range challans {
			name := ""
			if c.Customer != nil {
				name = c.Customer.Name
			}
			docs.challans = append(docs.challans, reportRow{c.ChallanNo, c.ChallanDate, name, c.Status, c.GrandTotal, decimal.Zero})
		}
		return nil
	})
	g.Go(func() error {
		invoices, err := s.invoiceRepo.ListInRange(gctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to load invoices: %w", err)
		}
		for _, inv := range invoices {
			name := ""
			if inv.Customer != nil {
				name = inv.Customer.Name
			}
			docs.invoices = append(docs.invoices, reportRow{inv.InvoiceNo, inv.InvoiceDate, name, inv.Status, inv.GrandTotal, inv.AmountDue})
		}
		return nil
	})
	g.Go(func() error {
		payments, err := s.paymentRepo.ListInRange(gctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}
		for _, p := range payments {
			name := ""
			if p.Customer != nil {
				name = p.Customer.Name
			}
			docs.payments = append(docs.payments, reportRow{p.PaymentNo, p.PaymentDate, name, p.PaymentMode, p.AmountReceived, p.AmountUsed})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func sumRows(rows []reportRow) (decimal.Decimal, decimal.Decimal) {
	amount, extra := decimal.Zero, decimal.Zero
	for _, r := range rows {
		amount = amount.Add(r.Amount)
		extra = extra.Add(r.Extra)
	}
	return amount, extra
}

func (s *reportService) Summary(ctx context.Context, from, to time.Time) (SummaryResponse, error) {
	docs, err := s.load(ctx, from, to)
	if err != nil {
		return SummaryResponse{}, err
	}
	challanTotal, _ := sumRows(docs.challans)
	invoiceTotal, outstanding := sumRows(docs.invoices)
	received, used := sumRows(docs.payments)

	return SummaryResponse{
		From:        from.Format(dateLayout),
		To:          to.Format(dateLayout),
		Challans:    DocumentTotals{Count: len(docs.challans), Total: billing.FormatAmount(challanTotal)},
		Invoices:    DocumentTotals{Count: len(docs.invoices), Total: billing.FormatAmount(invoiceTotal)},
		Outstanding: billing.FormatAmount(outstanding),
		Payments:    DocumentTotals{Count: len(docs.payments), Total: billing.FormatAmount(received)},
		AmountUsed:  billing.FormatAmount(used),
	}, nil
}

// ExportXLSX writes one sheet per document kind, each ending in a totals row.
func (s *reportService) ExportXLSX(ctx context.Context, from, to time.Time, w io.Writer) error {
	docs, err := s.load(ctx, from, to)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []struct {
		name    string
		headers []string
		rows    []reportRow
	}{
		{SheetChallans, []string{"Challan No", "Date", "Customer", "Status", "Grand Total"}, docs.challans},
		{SheetInvoices, []string{"Invoice No", "Date", "Customer", "Status", "Grand Total", "Amount Due"}, docs.invoices},
		{SheetPayments, []string{"Payment No", "Date", "Customer", "Mode", "Amount Received", "Amount Used"}, docs.payments},
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return fmt.Errorf("failed to name sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sh.name, err)
		}
		if err := writeSheet(f, sh.name, sh.headers, sh.rows, bold); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", sh.name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows []reportRow, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	withExtra := len(headers) == 6
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{r.Number, r.Date.Format(dateLayout), r.Customer, r.Status, r.Amount.InexactFloat64()}
		if withExtra {
			values = append(values, r.Extra.InexactFloat64())
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	amount, extra := sumRows(rows)
	totalRow := len(rows) + 2
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	totals := []interface{}{"Total", "", "", "", amount.InexactFloat64()}
	if withExtra {
		totals = append(totals, extra.InexactFloat64())
	}
	if err := f.SetSheetRow(sheet, cell, &totals); err != nil {
		return err
	}
	end, _ := excelize.CoordinatesToCellName(len(headers), totalRow)
	if err := f.SetCellStyle(sheet, cell, end, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "F", 18)
}

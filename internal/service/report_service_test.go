package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"salesdesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// seedReportDocuments creates one challan, one invoice and one payment on fixedNow.
func seedReportDocuments(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	customer := env.customer(t, "Acme")

	req := challanRequest(customer.ID.String())
	req.NumberPattern = ""
	_, err := env.challanService().CreateChallan(ctx, req, nil)
	require.NoError(t, err)

	inv := createInvoice(t, env.invoiceService(), customer.ID, "500")
	_, err = env.paymentService().RecordPayment(ctx, RecordPaymentRequest{
		CustomerID:     customer.ID.String(),
		PaymentMode:    model.PaymentModeCash,
		AmountReceived: "300",
		Allocations:    []AllocationInput{{InvoiceID: inv.ID, AmountUsed: "200"}},
	}, nil)
	require.NoError(t, err)
}

func (e *testEnv) reportService() ReportService {
	return NewReportService(e.challans, e.invoices, e.payments)
}

func TestReportService_Summary(t *testing.T) {
	env := newTestEnv(t)
	seedReportDocuments(t, env)
	svc := env.reportService()
	ctx := context.Background()

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
	sum, err := svc.Summary(ctx, from, to)
	require.NoError(t, err)

	assert.Equal(t, "2025-03-01", sum.From)
	assert.Equal(t, "2025-03-31", sum.To)
	assert.Equal(t, DocumentTotals{Count: 1, Total: "1000.00"}, sum.Challans)
	assert.Equal(t, DocumentTotals{Count: 1, Total: "500.00"}, sum.Invoices)
	assert.Equal(t, "300.00", sum.Outstanding)
	assert.Equal(t, DocumentTotals{Count: 1, Total: "300.00"}, sum.Payments)
	assert.Equal(t, "200.00", sum.AmountUsed)

	empty, err := svc.Summary(ctx, from.AddDate(0, -1, 0), from.Add(-time.Second))
	require.NoError(t, err)
	assert.Zero(t, empty.Challans.Count)
	assert.Equal(t, "0.00", empty.Invoices.Total)

	_, err = svc.Summary(ctx, to, from)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReportService_ExportXLSX(t *testing.T) {
	env := newTestEnv(t)
	seedReportDocuments(t, env)

	var buf bytes.Buffer
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
	require.NoError(t, env.reportService().ExportXLSX(context.Background(), from, to, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetChallans, SheetInvoices, SheetPayments}, f.GetSheetList())

	rows, err := f.GetRows(SheetInvoices)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Invoice No", rows[0][0])
	assert.Equal(t, "INV-001", rows[1][0])
	assert.Equal(t, model.InvoicePartial, rows[1][3])
	assert.Equal(t, "Total", rows[2][0])

	rows, err = f.GetRows(SheetPayments)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "PID-001", rows[1][0])
	assert.Equal(t, model.PaymentModeCash, rows[1][3])
}

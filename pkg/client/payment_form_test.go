package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentAPI(t *testing.T, got *map[string]interface{}) *fakeAPI {
	t.Helper()
	api := newFakeAPI(t)
	api.mux.HandleFunc("/api/v1/sales/invoices/unpaid/", api.authed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("customer") != "c1" {
			writeEnvelope(w, http.StatusOK, []interface{}{}, "")
			return
		}
		writeEnvelope(w, http.StatusOK, []map[string]string{
			{"id": "i1", "invoice_no": "INV-001", "grand_total": "500.00", "amount_due": "500.00", "status": "UNPAID"},
			{"id": "i2", "invoice_no": "INV-002", "grand_total": "300.00", "amount_due": "200.00", "status": "PARTIAL"},
		}, "")
	}))
	api.mux.HandleFunc("/api/v1/sales/payments/create/", api.authed(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(got)
		writeEnvelope(w, http.StatusCreated, map[string]interface{}{
			"id": "p1", "payment_no": "PID-002", "amount_received": "700.00", "amount_used": "700.00",
		}, "")
	}))
	return api
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPaymentForm_UsageIsClamped(t *testing.T) {
	var got map[string]interface{}
	api := paymentAPI(t, &got)
	form := NewPaymentForm(context.Background(), authedClient(t, api), nil)
	defer form.Close()

	require.NoError(t, form.SelectCustomer("c1"))
	require.Len(t, form.Rows, 2)
	assert.True(t, form.Rows[1].InvoiceAmount.Equal(dec("300")))

	form.SetReceived("600")
	form.ApplyUsage(0, "550")
	assert.True(t, form.Rows[0].AmountUsed.Equal(dec("500")), "clamped to due")

	form.ApplyUsage(1, "200")
	assert.True(t, form.Rows[1].AmountUsed.Equal(dec("100")), "overflow absorbed by edited row")

	summary := form.Summary()
	assert.True(t, summary.AmountUsed.Equal(dec("600")))
	assert.True(t, summary.AmountExcess.IsZero())
}

func TestPaymentForm_FullAmountToggleAndSubmit(t *testing.T) {
	var got map[string]interface{}
	api := paymentAPI(t, &got)
	handoff := NewHandoff()
	form := NewPaymentForm(context.Background(), authedClient(t, api), handoff)
	defer form.Close()

	require.NoError(t, form.SelectCustomer("c1"))
	form.SetFullAmount(true)
	assert.True(t, form.Received.Equal(dec("700")))
	assert.True(t, form.Rows[0].AmountUsed.Equal(dec("500")))
	assert.True(t, form.Rows[1].AmountUsed.Equal(dec("200")))

	form.SetFullAmount(false)
	assert.True(t, form.Received.IsZero())
	assert.True(t, form.Summary().AmountUsed.IsZero())

	form.SetFullAmount(true)
	payment, err := form.Submit()
	require.NoError(t, err)
	assert.Equal(t, "p1", payment.ID)
	assert.Equal(t, "PID-002", form.Number)

	assert.Equal(t, "700.00", got["amount_received"])
	assert.Equal(t, "CASH", got["payment_mode"])
	allocations, ok := got["allocations"].([]interface{})
	require.True(t, ok)
	assert.Len(t, allocations, 2)

	v, ok := handoff.Take(SignalFormSuccess)
	assert.True(t, ok)
	assert.Equal(t, "PID-002", v)
}

func TestPaymentForm_SkipsUnusedInvoices(t *testing.T) {
	var got map[string]interface{}
	api := paymentAPI(t, &got)
	form := NewPaymentForm(context.Background(), authedClient(t, api), nil)
	defer form.Close()

	require.NoError(t, form.SelectCustomer("c1"))
	form.SetReceived("100")
	form.ApplyUsage(1, "100")

	payload := form.Payload()
	allocations := payload["allocations"].([]map[string]string)
	require.Len(t, allocations, 1)
	assert.Equal(t, "i2", allocations[0]["invoice_id"])
	assert.Equal(t, "100.00", allocations[0]["amount_used"])
}

func TestPaymentForm_FailedSubmitKeepsNumberEmpty(t *testing.T) {
	api := newFakeAPI(t)
	var got map[string]interface{}
	api.mux.HandleFunc("/api/v1/sales/payments/create/", api.authed(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeEnvelope(w, http.StatusConflict, nil, "conflict: payment number already used")
	}))
	form := NewPaymentForm(context.Background(), authedClient(t, api), nil)
	defer form.Close()
	form.Sequence = "9"
	form.SetReceived("100")

	_, err := form.Submit()
	require.Error(t, err)
	assert.Empty(t, form.Number)
	assert.Equal(t, "PID-9", got["payment_no"])
}

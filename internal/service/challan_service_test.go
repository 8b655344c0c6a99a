package service

import (
	"bytes"
	"context"
	"testing"

	"salesdesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func challanRequest(customerID string) CreateDeliveryChallanRequest {
	return CreateDeliveryChallanRequest{
		CustomerID:    customerID,
		NumberPattern: "YEAR_MONTH",
		ChallanType:   model.ChallanTypeJobWork,
		Items: []ItemInput{
			{Description: "Gear box", Quantity: "10", Rate: "100", Discount: "10"},
			{}, // blank rows are dropped
			{Description: "Shaft", Quantity: "2", Rate: "50"},
		},
	}
}

func TestDeliveryChallanService_CreateRecomputesTotals(t *testing.T) {
	env := newTestEnv(t)
	customer := env.customer(t, "Acme")
	tds := env.taxOption(t, model.TaxKindTDS, "Contractors", "2")
	svc := env.challanService()

	req := challanRequest(customer.ID.String())
	req.TaxKind = "TDS"
	req.TaxOptionID = tds.ID.String()
	req.Adjustment = "-5"

	res, err := svc.CreateChallan(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, "DC-202503-001", res.ChallanNo)
	assert.Equal(t, "Acme", res.CustomerName)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "900.00", res.Items[0].Amount)
	assert.Equal(t, "100.00", res.Items[1].Amount)
	assert.Equal(t, "1000.00", res.Subtotal)
	assert.Equal(t, "20.00", res.TaxAmount)
	assert.Equal(t, "-5.00", res.Adjustment)
	assert.Equal(t, "975.00", res.GrandTotal)
	assert.Equal(t, "2025-03-14", res.ChallanDate)
	assert.Equal(t, []string{EventDeliveryChallanCreated}, env.notifier.Events())
}

func TestDeliveryChallanService_ServerAssignsNumbers(t *testing.T) {
	env := newTestEnv(t)
	customer := env.customer(t, "Acme")
	svc := env.challanService()
	ctx := context.Background()

	req := challanRequest(customer.ID.String())
	req.ChallanNo = "DC-202503-001"

	first, err := svc.CreateChallan(ctx, req, nil)
	require.NoError(t, err)
	second, err := svc.CreateChallan(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "DC-202503-001", first.ChallanNo)
	assert.Equal(t, "DC-202503-002", second.ChallanNo)

	req.NumberPattern = "YEAR_SLASH_MONTH"
	third, err := svc.CreateChallan(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "DC-2025/03-001", third.ChallanNo)

	req.NumberPattern = "WEEKLY"
	_, err = svc.CreateChallan(ctx, req, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeliveryChallanService_CreateRejects(t *testing.T) {
	env := newTestEnv(t)
	customer := env.customer(t, "Acme")
	tcs := env.taxOption(t, model.TaxKindTCS, "Scrap", "1")
	svc := env.challanService()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateDeliveryChallanRequest)
		want   error
	}{
		{
			name:   "unknown customer",
			mutate: func(r *CreateDeliveryChallanRequest) { r.CustomerID = tcs.ID.String() },
			want:   ErrNotFound,
		},
		{
			name:   "only blank rows",
			mutate: func(r *CreateDeliveryChallanRequest) { r.Items = []ItemInput{{}, {}} },
			want:   ErrInvalidInput,
		},
		{
			name: "option of the other kind",
			mutate: func(r *CreateDeliveryChallanRequest) {
				r.TaxKind = "TDS"
				r.TaxOptionID = tcs.ID.String()
			},
			want: ErrInvalidInput,
		},
		{
			name:   "bad date",
			mutate: func(r *CreateDeliveryChallanRequest) { r.ChallanDate = "14/03/2025" },
			want:   ErrInvalidInput,
		},
		{
			name:   "unknown challan type",
			mutate: func(r *CreateDeliveryChallanRequest) { r.ChallanType = "LOAN" },
			want:   ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := challanRequest(customer.ID.String())
			tt.mutate(&req)
			_, err := svc.CreateChallan(ctx, req, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	list, total, err := svc.ListChallans(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestDeliveryChallanService_ListAndPDF(t *testing.T) {
	env := newTestEnv(t)
	acme := env.customer(t, "Acme")
	globex := env.customer(t, "Globex")
	svc := env.challanService()
	ctx := context.Background()

	created, err := svc.CreateChallan(ctx, challanRequest(acme.ID.String()), nil)
	require.NoError(t, err)
	_, err = svc.CreateChallan(ctx, challanRequest(globex.ID.String()), nil)
	require.NoError(t, err)

	list, total, err := svc.ListChallans(ctx, acme.ID.String(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	var buf bytes.Buffer
	number, err := svc.RenderPDF(ctx, created.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, created.ChallanNo, number)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	_, err = svc.GetChallan(ctx, acme.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCodeLabel(t *testing.T) {
	assert.Equal(t, "Job Work", codeLabel(model.ChallanTypeJobWork))
	assert.Equal(t, "Supply Of Liquid Gas", codeLabel(model.ChallanTypeSupplyOfLiquidGas))
	assert.Equal(t, "Others", codeLabel(model.ChallanTypeOthers))
}

package service

import (
	"context"
	"testing"
	"time"

	"salesdesk/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileRequest(customerID uuid.UUID) CreateRecurringInvoiceRequest {
	return CreateRecurringInvoiceRequest{
		CustomerID:       customerID.String(),
		ProfileName:      "Monthly maintenance",
		RepeatEvery:      model.RepeatMonth,
		StartDate:        "2025-01-10",
		NeverExpires:     true,
		PaymentTermsDays: 7,
		Items:            []ItemInput{{Description: "AMC", Quantity: "1", Rate: "1000"}},
	}
}

func TestRecurringInvoiceService_CreateProfileValidates(t *testing.T) {
	env := newTestEnv(t)
	customer := env.customer(t, "Acme")
	svc := env.recurringService(clock)
	ctx := context.Background()

	req := profileRequest(customer.ID)
	req.NeverExpires = false
	_, err := svc.CreateProfile(ctx, req, nil)
	assert.ErrorIs(t, err, ErrInvalidInput, "end date required")

	req.EndDate = "2024-12-31"
	_, err = svc.CreateProfile(ctx, req, nil)
	assert.ErrorIs(t, err, ErrInvalidInput, "end before start")

	req = profileRequest(customer.ID)
	req.InvoicePattern = "FORTNIGHT"
	_, err = svc.CreateProfile(ctx, req, nil)
	assert.ErrorIs(t, err, ErrInvalidInput, "bad invoice pattern")

	req = profileRequest(customer.ID)
	req.SalesPersonID = uuid.NewString()
	_, err = svc.CreateProfile(ctx, req, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	res, err := svc.CreateProfile(ctx, profileRequest(customer.ID), nil)
	require.NoError(t, err)
	assert.Equal(t, "RINV-001", res.ProfileNo)
	assert.Equal(t, "2025-01-10", res.StartDate)
	assert.Nil(t, res.EndDate)
	assert.Equal(t, model.RecurringActive, res.Status)
	assert.Equal(t, "1000.00", res.GrandTotal)
}

func TestRecurringInvoiceService_GenerateDueCatchesUp(t *testing.T) {
	env := newTestEnv(t)
	customer := env.customer(t, "Acme")
	svc := env.recurringService(clock)
	ctx := context.Background()

	profile, err := svc.CreateProfile(ctx, profileRequest(customer.ID), nil)
	require.NoError(t, err)

	n, err := svc.GenerateDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n) // Jan 10, Feb 10, Mar 10

	n, err = svc.GenerateDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	unpaid, err := env.invoiceService().ListUnpaid(ctx, customer.ID.String())
	require.NoError(t, err)
	require.Len(t, unpaid, 3)
	assert.Equal(t, "2025-01-10", unpaid[0].InvoiceDate)
	assert.Equal(t, "2025-01-17", unpaid[0].DueDate)
	assert.Equal(t, "2025-03-10", unpaid[2].InvoiceDate)
	assert.Equal(t, "1000.00", unpaid[2].AmountDue)

	stored, err := env.profiles.FindByID(ctx, uuid.MustParse(profile.ID))
	require.NoError(t, err)
	assert.Equal(t, "2025-04-10", stored.NextRunAt.Format(dateLayout))
	require.NotNil(t, stored.LastRunAt)
	assert.Equal(t, "2025-03-10", stored.LastRunAt.Format(dateLayout))
}

func TestRecurringInvoiceService_ExpiresAfterEndDate(t *testing.T) {
	env := newTestEnv(t)
	customer := env.customer(t, "Acme")
	svc := env.recurringService(clock)
	ctx := context.Background()

	req := profileRequest(customer.ID)
	req.NeverExpires = false
	req.EndDate = "2025-02-15"
	req.InvoicePattern = "YEAR"
	profile, err := svc.CreateProfile(ctx, req, nil)
	require.NoError(t, err)

	n, err := svc.GenerateDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stored, err := env.profiles.FindByID(ctx, uuid.MustParse(profile.ID))
	require.NoError(t, err)
	assert.Equal(t, model.RecurringExpired, stored.Status)

	unpaid, err := env.invoiceService().ListUnpaid(ctx, customer.ID.String())
	require.NoError(t, err)
	require.Len(t, unpaid, 2)
	assert.Equal(t, "INV-2025-001", unpaid[0].InvoiceNo)
	assert.Equal(t, "INV-2025-002", unpaid[1].InvoiceNo)

	_, err = svc.GenerateNow(ctx, profile.ID, nil)
	assert.ErrorIs(t, err, ErrProfileInactive)
}

func TestRecurringInvoiceService_GenerateNowKeepsSchedule(t *testing.T) {
	env := newTestEnv(t)
	customer := env.customer(t, "Acme")
	// before the first scheduled run
	svc := env.recurringService(func() time.Time { return time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC) })
	ctx := context.Background()

	profile, err := svc.CreateProfile(ctx, profileRequest(customer.ID), nil)
	require.NoError(t, err)

	inv, err := svc.GenerateNow(ctx, profile.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "INV-001", inv.InvoiceNo)
	require.NotNil(t, inv.RecurringInvoiceID)
	assert.Equal(t, profile.ID, *inv.RecurringInvoiceID)
	assert.Equal(t, "2025-01-05", inv.InvoiceDate)

	stored, err := env.profiles.FindByID(ctx, uuid.MustParse(profile.ID))
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", stored.NextRunAt.Format(dateLayout))
	assert.NotNil(t, stored.LastRunAt)

	_, err = svc.GenerateNow(ctx, uuid.NewString(), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecurringInvoiceService_MonthEndStartKeepsFebruary(t *testing.T) {
	env := newTestEnv(t)
	customer := env.customer(t, "Acme")
	now := fixedNow
	svc := env.recurringService(func() time.Time { return now })
	ctx := context.Background()

	req := profileRequest(customer.ID)
	req.StartDate = "2025-01-31"
	profile, err := svc.CreateProfile(ctx, req, nil)
	require.NoError(t, err)

	n, err := svc.GenerateDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	now = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	n, err = svc.GenerateDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	unpaid, err := env.invoiceService().ListUnpaid(ctx, customer.ID.String())
	require.NoError(t, err)
	dates := make([]string, 0, len(unpaid))
	for _, inv := range unpaid {
		dates = append(dates, inv.InvoiceDate)
	}
	assert.Equal(t, []string{"2025-01-31", "2025-02-28", "2025-03-31", "2025-04-30"}, dates)

	stored, err := env.profiles.FindByID(ctx, uuid.MustParse(profile.ID))
	require.NoError(t, err)
	assert.Equal(t, "2025-05-31", stored.NextRunAt.Format(dateLayout))
}

func TestRecurringInvoiceService_DatesRunsInScheduleZone(t *testing.T) {
	env := newTestEnv(t)
	customer := env.customer(t, "Acme")
	kolkata := time.FixedZone("IST", 5*3600+1800)
	svc := NewRecurringInvoiceService(env.profiles, env.invoices, env.customers, env.sales, env.taxes,
		env.audit, env.tx, env.notifier, env.log, kolkata)
	// 20:00 UTC on the 14th is already the 15th in the schedule's zone
	svc.(*recurringInvoiceService).now = func() time.Time { return time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	req := profileRequest(customer.ID)
	req.StartDate = ""
	profile, err := svc.CreateProfile(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", profile.StartDate)

	n, err := svc.GenerateDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	unpaid, err := env.invoiceService().ListUnpaid(ctx, customer.ID.String())
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, "2025-03-15", unpaid[0].InvoiceDate)
}

package service

import (
	"context"
	"testing"

	"salesdesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxService_SeedDefaultsOnce(t *testing.T) {
	env := newTestEnv(t)
	svc := env.taxService()
	ctx := context.Background()

	require.NoError(t, svc.SeedDefaults(ctx))
	require.NoError(t, svc.SeedDefaults(ctx))

	options, err := svc.ListOptions(ctx, "TDS")
	require.NoError(t, err)
	assert.Len(t, options, len(defaultTDSOptions))
	for _, o := range options {
		assert.Equal(t, model.TaxKindTDS, o.Kind)
	}
}

func TestTaxService_CreateOption(t *testing.T) {
	env := newTestEnv(t)
	svc := env.taxService()
	ctx := context.Background()

	_, err := svc.CreateOption(ctx, "TDS", CreateTaxOptionRequest{Name: "Rent", Rate: "10"}, nil)
	assert.ErrorIs(t, err, ErrReadOnlyTaxKind)

	_, err = svc.CreateOption(ctx, "TCS", CreateTaxOptionRequest{Name: "Scrap", Rate: "120"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateOption(ctx, "GST", CreateTaxOptionRequest{Name: "Scrap", Rate: "1"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	created, err := svc.CreateOption(ctx, "tcs", CreateTaxOptionRequest{Name: " Scrap ", Rate: "1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Scrap", created.Name)
	assert.Equal(t, model.TaxKindTCS, created.Kind)

	options, err := svc.ListOptions(ctx, "TCS")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, created.ID, options[0].ID)

	assert.Equal(t, []string{EventTaxOptionCreated}, env.notifier.Events())

	logs, total, err := env.audit.List(ctx, model.ActionCreateTaxOption, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Scrap", logs[0].EntityName)
}

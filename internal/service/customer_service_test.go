package service

import (
	"context"
	"testing"

	"salesdesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) customerService() CustomerService {
	return NewCustomerService(e.customers, e.sales, e.audit, e.tx, e.notifier)
}

func TestCustomerService_CreateAndSearch(t *testing.T) {
	env := newTestEnv(t)
	svc := env.customerService()
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "   "}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	acme, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: " Acme ", CompanyName: "Acme Traders"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme", acme.Name)
	assert.True(t, acme.IsActive)
	_, err = svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Globex", Email: "ap@globex.test"}, nil)
	require.NoError(t, err)

	found, total, err := svc.ListCustomers(ctx, "TRADERS", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, acme.ID, found[0].ID)

	_, total, err = svc.ListCustomers(ctx, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	assert.Equal(t, []string{EventCustomerCreated, EventCustomerCreated}, env.notifier.Events())
}

func TestCustomerService_SalesPersonEmailIsUnique(t *testing.T) {
	env := newTestEnv(t)
	svc := env.customerService()
	ctx := context.Background()

	person, err := svc.CreateSalesPerson(ctx, CreateSalesPersonRequest{Name: "Ravi", Email: "Ravi@Example.com"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", person.Email)

	_, err = svc.CreateSalesPerson(ctx, CreateSalesPersonRequest{Name: "Ravi K", Email: "ravi@example.com "}, nil)
	assert.ErrorIs(t, err, ErrConflict)

	persons, err := svc.ListSalesPersons(ctx)
	require.NoError(t, err)
	assert.Len(t, persons, 1)
}

func TestAuditService_ListsDocumentChanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.customerService().CreateCustomer(ctx, CreateCustomerRequest{Name: "Acme"}, nil)
	require.NoError(t, err)
	_, err = env.customerService().CreateSalesPerson(ctx, CreateSalesPersonRequest{Name: "Ravi", Email: "ravi@example.com"}, nil)
	require.NoError(t, err)

	audit := NewAuditService(env.audit)
	logs, total, err := audit.GetAuditLogs(ctx, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, logs, 2)

	logs, total, err = audit.GetAuditLogs(ctx, model.ActionCreateCustomer, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, logs, 1)
	assert.Equal(t, "Acme", logs[0].EntityName)
	assert.Equal(t, "System", logs[0].Username)
	assert.JSONEq(t, `{"company_name":""}`, logs[0].Details)
}

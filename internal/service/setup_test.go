package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"salesdesk/internal/database"
	"salesdesk/internal/model"
	"salesdesk/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(event string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

// testEnv wires every repository against a private in-memory database.
type testEnv struct {
	db        *gorm.DB
	tx        repository.TransactionManager
	users     repository.UserRepository
	tokens    repository.RefreshTokenRepository
	audit     repository.AuditRepository
	customers repository.CustomerRepository
	sales     repository.SalesPersonRepository
	taxes     repository.TaxOptionRepository
	challans  repository.DeliveryChallanRepository
	profiles  repository.RecurringInvoiceRepository
	invoices  repository.InvoiceRepository
	payments  repository.PaymentRepository
	notifier  *recordingNotifier
	log       *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenInMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &testEnv{
		db:        db,
		tx:        repository.NewTransactionManager(db),
		users:     repository.NewUserRepository(db),
		tokens:    repository.NewRefreshTokenRepository(db),
		audit:     repository.NewAuditRepository(db),
		customers: repository.NewCustomerRepository(db),
		sales:     repository.NewSalesPersonRepository(db),
		taxes:     repository.NewTaxOptionRepository(db),
		challans:  repository.NewDeliveryChallanRepository(db),
		profiles:  repository.NewRecurringInvoiceRepository(db),
		invoices:  repository.NewInvoiceRepository(db),
		payments:  repository.NewPaymentRepository(db),
		notifier:  &recordingNotifier{},
		log:       zap.NewNop(),
	}
}

func (e *testEnv) customer(t *testing.T, name string) *model.Customer {
	t.Helper()
	c := &model.Customer{Name: name, IsActive: true}
	require.NoError(t, e.customers.Create(context.Background(), c))
	return c
}

func (e *testEnv) taxOption(t *testing.T, kind, name, rate string) *model.TaxOption {
	t.Helper()
	o := &model.TaxOption{Kind: kind, Name: name, RatePercent: decimal.RequireFromString(rate)}
	require.NoError(t, e.taxes.Create(context.Background(), o))
	return o
}

func (e *testEnv) challanService() DeliveryChallanService {
	svc := NewDeliveryChallanService(e.challans, e.customers, e.taxes, e.audit, e.tx, e.notifier, e.log)
	svc.(*deliveryChallanService).now = clock
	return svc
}

func (e *testEnv) invoiceService() InvoiceService {
	svc := NewInvoiceService(e.invoices, e.customers, e.taxes, e.audit, e.tx, e.notifier)
	svc.(*invoiceService).now = clock
	return svc
}

func (e *testEnv) paymentService() PaymentService {
	svc := NewPaymentService(e.payments, e.invoices, e.customers, e.audit, e.tx, e.notifier)
	svc.(*paymentService).now = clock
	return svc
}

func (e *testEnv) recurringService(now func() time.Time) RecurringInvoiceService {
	svc := NewRecurringInvoiceService(e.profiles, e.invoices, e.customers, e.sales, e.taxes, e.audit, e.tx, e.notifier, e.log, time.UTC)
	svc.(*recurringInvoiceService).now = now
	return svc
}

func (e *testEnv) taxService() TaxService {
	return NewTaxService(e.taxes, e.audit, e.tx, e.notifier, e.log)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

package client

import (
	"context"
	"time"

	"salesdesk/pkg/billing"

	"github.com/shopspring/decimal"
)

// PaymentForm is the record-payment screen: the customer's unpaid invoices
// and how much of the received amount goes to each.
type PaymentForm struct {
	client  *Client
	handoff *Handoff
	ctx     context.Context
	cancel  context.CancelFunc
	now     func() time.Time

	CustomerID  string
	Pattern     billing.NumberPattern
	Sequence    string
	Number      string
	PaymentDate string
	PaymentMode string
	ReferenceNo string
	DepositTo   string
	BankCharges string
	Notes       string

	Received   decimal.Decimal
	FullAmount bool
	Rows       []billing.InvoiceUsage
}

func NewPaymentForm(ctx context.Context, c *Client, handoff *Handoff) *PaymentForm {
	ctx, cancel := context.WithCancel(ctx)
	return &PaymentForm{
		client:      c,
		handoff:     handoff,
		ctx:         ctx,
		cancel:      cancel,
		now:         time.Now,
		PaymentMode: "CASH",
		Received:    decimal.Zero,
	}
}

func (f *PaymentForm) Close() { f.cancel() }

// SelectCustomer loads the customer's unpaid invoices and resets the usage.
func (f *PaymentForm) SelectCustomer(customerID string) error {
	rows, err := f.client.ListUnpaidInvoices(f.ctx, customerID)
	if err != nil {
		return err
	}
	f.CustomerID = customerID
	f.Rows = rows
	f.FullAmount = false
	f.Received = decimal.Zero
	return nil
}

// SetReceived changes the amount received. Usages already entered stay
// as they are.
func (f *PaymentForm) SetReceived(raw string) {
	f.Received = billing.ParseAmount(raw)
}

// ApplyUsage sets how much of the payment goes to the invoice at index.
func (f *PaymentForm) ApplyUsage(index int, raw string) {
	f.Rows = billing.ApplyUsage(f.Rows, index, raw, f.Received)
}

// SetFullAmount toggles "receive the full amount": every invoice is settled
// and the received amount becomes the total due. Switching it off clears both.
func (f *PaymentForm) SetFullAmount(on bool) {
	f.FullAmount = on
	if on {
		f.Rows, f.Received = billing.ApplyFullAmount(f.Rows)
		return
	}
	f.Rows = billing.ResetFullAmount(f.Rows)
	f.Received = decimal.Zero
}

func (f *PaymentForm) Summary() billing.PaymentSummary {
	return billing.Summarize(f.Rows, f.Received)
}

func (f *PaymentForm) SuggestNumber() string {
	f.Number = f.buildNumber()
	return f.Number
}

func (f *PaymentForm) buildNumber() string {
	return billing.BuildNumber(billing.PrefixPayment, f.Pattern, f.Sequence, f.now())
}

// Payload maps the form to the record-payment body. Invoices with nothing
// used are left out.
func (f *PaymentForm) Payload() map[string]interface{} {
	return f.payload(f.Number)
}

func (f *PaymentForm) payload(number string) map[string]interface{} {
	allocations := make([]map[string]string, 0, len(f.Rows))
	for _, r := range f.Rows {
		if !r.AmountUsed.IsPositive() {
			continue
		}
		allocations = append(allocations, map[string]string{
			"invoice_id":  r.InvoiceID,
			"amount_used": billing.FormatAmount(r.AmountUsed),
		})
	}
	return map[string]interface{}{
		"customer_id":     f.CustomerID,
		"payment_no":      number,
		"number_pattern":  string(f.Pattern),
		"payment_date":    f.PaymentDate,
		"payment_mode":    f.PaymentMode,
		"reference_no":    f.ReferenceNo,
		"deposit_to":      f.DepositTo,
		"amount_received": billing.FormatAmount(f.Received),
		"bank_charges":    f.BankCharges,
		"notes":           f.Notes,
		"allocations":     allocations,
	}
}

// Submit records the payment and adopts the server's payment number.
func (f *PaymentForm) Submit() (Payment, error) {
	number := f.Number
	if number == "" {
		number = f.buildNumber()
	}
	payment, err := f.client.RecordPayment(f.ctx, f.payload(number))
	if err != nil {
		return Payment{}, err
	}
	f.Number = number
	if payment.PaymentNo != "" {
		f.Number = payment.PaymentNo
	}
	if f.handoff != nil {
		f.handoff.Set(SignalFormSuccess, f.Number)
	}
	return payment, nil
}

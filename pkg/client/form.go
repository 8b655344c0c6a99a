package client

import (
	"context"
	"time"

	"salesdesk/pkg/billing"

	"golang.org/x/sync/errgroup"
)

// DocumentKind selects the create endpoint and number prefix of a form.
type DocumentKind int

const (
	DeliveryChallan DocumentKind = iota
	RecurringInvoice
	Invoice
)

func (k DocumentKind) createPath() string {
	switch k {
	case RecurringInvoice:
		return "recurring-invoices/create/"
	case Invoice:
		return "invoices/create/"
	default:
		return "delivery-challans/create/"
	}
}

func (k DocumentKind) prefix() string {
	switch k {
	case RecurringInvoice:
		return billing.PrefixRecurringInvoice
	case Invoice:
		return billing.PrefixInvoice
	default:
		return billing.PrefixDeliveryChallan
	}
}

func (k DocumentKind) numberField() string {
	switch k {
	case RecurringInvoice:
		return "profile_no"
	case Invoice:
		return "invoice_no"
	default:
		return "challan_no"
	}
}

// DocumentForm is the state of an open challan, recurring invoice or invoice
// form. Requests it issues are cancelled by Close.
type DocumentForm struct {
	client  *Client
	handoff *Handoff
	kind    DocumentKind
	ctx     context.Context
	cancel  context.CancelFunc
	now     func() time.Time

	CustomerID string
	Pattern    billing.NumberPattern
	Sequence   string
	Number     string
	Rows       []billing.ItemRow
	Tax        billing.TaxSelection
	// Fields holds the kind-specific inputs, e.g. challan_type or repeat_every.
	Fields map[string]interface{}

	Customers    []Customer
	SalesPersons []SalesPerson
	TDS          []billing.TaxOption
	TCS          []billing.TaxOption
}

// NewDocumentForm opens a form with one blank row. handoff may be nil.
func NewDocumentForm(ctx context.Context, c *Client, kind DocumentKind, handoff *Handoff) *DocumentForm {
	ctx, cancel := context.WithCancel(ctx)
	return &DocumentForm{
		client:  c,
		handoff: handoff,
		kind:    kind,
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
		Rows:    billing.NewRows(),
		Fields:  make(map[string]interface{}),
	}
}

// Close cancels every request still in flight for this form.
func (f *DocumentForm) Close() { f.cancel() }

// Load fetches the reference lists concurrently and fails if any of them fails.
func (f *DocumentForm) Load() error {
	var (
		customers    []Customer
		salesPersons []SalesPerson
		tds, tcs     []billing.TaxOption
	)
	g, ctx := errgroup.WithContext(f.ctx)
	g.Go(func() (err error) {
		customers, err = f.client.ListCustomers(ctx, "")
		return err
	})
	if f.kind == RecurringInvoice {
		g.Go(func() (err error) {
			salesPersons, err = f.client.ListSalesPersons(ctx)
			return err
		})
	}
	g.Go(func() (err error) {
		tds, err = f.client.ListTaxOptions(ctx, billing.TaxTDS)
		return err
	})
	g.Go(func() (err error) {
		tcs, err = f.client.ListTaxOptions(ctx, billing.TaxTCS)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	f.Customers, f.SalesPersons, f.TDS, f.TCS = customers, salesPersons, tds, tcs
	f.Tax.RatePercent = billing.ResolveRate(f.Tax.Kind, f.Tax.OptionID, f.TDS, f.TCS)
	return nil
}

// ReloadCustomersIfReturning refreshes the customer list when the user comes
// back from the add-customer screen.
func (f *DocumentForm) ReloadCustomersIfReturning() (bool, error) {
	if f.handoff == nil {
		return false, nil
	}
	if _, ok := f.handoff.Take(SignalReturnAfterCustomer); !ok {
		return false, nil
	}
	customers, err := f.client.ListCustomers(f.ctx, "")
	if err != nil {
		return true, err
	}
	f.Customers = customers
	return true, nil
}

func (f *DocumentForm) UpdateRow(index int, field billing.RowField, value string) {
	f.Rows = billing.UpdateRow(f.Rows, index, field, value)
}

func (f *DocumentForm) AddRow() { f.Rows = billing.AddRow(f.Rows) }

func (f *DocumentForm) RemoveRow(index int) { f.Rows = billing.RemoveRow(f.Rows, index) }

// SelectTax picks an option of kind by id. An empty kind clears the tax.
func (f *DocumentForm) SelectTax(kind billing.TaxKind, optionID string) {
	if kind == billing.TaxNone {
		optionID = ""
	}
	f.Tax.Kind = kind
	f.Tax.OptionID = optionID
	f.Tax.RatePercent = billing.ResolveRate(kind, optionID, f.TDS, f.TCS)
}

func (f *DocumentForm) SetAdjustment(raw string) {
	f.Tax.Adjustment = billing.ParseAmount(raw)
}

// Totals recomputes the footer from the current rows and tax selection.
func (f *DocumentForm) Totals() billing.Totals {
	return billing.Recompute(f.Rows, f.Tax.Kind, f.Tax.RatePercent, f.Tax.Adjustment)
}

// AddTCSOption creates a TCS rate, appends it to the list and selects it.
func (f *DocumentForm) AddTCSOption(name, rate string) (billing.TaxOption, error) {
	opt, err := f.client.CreateTCSOption(f.ctx, name, rate)
	if err != nil {
		return billing.TaxOption{}, err
	}
	f.TCS = append(f.TCS, opt)
	f.SelectTax(billing.TaxTCS, opt.ID)
	return opt, nil
}

// SuggestNumber fills Number from the pattern and sequence. The server may
// store a different number.
func (f *DocumentForm) SuggestNumber() string {
	f.Number = f.buildNumber()
	return f.Number
}

func (f *DocumentForm) buildNumber() string {
	return billing.BuildNumber(f.kind.prefix(), f.Pattern, f.Sequence, f.now())
}

// Reconcile adopts the number the server assigned.
func (f *DocumentForm) Reconcile(doc Document) {
	if n := doc.Number(); n != "" {
		f.Number = n
	}
}

// Payload maps the form to the create request body.
func (f *DocumentForm) Payload() map[string]interface{} {
	return f.payload(f.Number)
}

func (f *DocumentForm) payload(number string) map[string]interface{} {
	totals := f.Totals().Rounded()
	adjustment := ""
	if !f.Tax.Adjustment.IsZero() {
		adjustment = f.Tax.Adjustment.String()
	}

	payload := make(map[string]interface{}, len(f.Fields)+10)
	for k, v := range f.Fields {
		payload[k] = v
	}
	payload["customer_id"] = f.CustomerID
	payload["number_pattern"] = string(f.Pattern)
	payload[f.kind.numberField()] = number
	payload["items"] = f.Rows
	payload["tax_kind"] = string(f.Tax.Kind)
	payload["tax_option_id"] = f.Tax.OptionID
	payload["adjustment"] = adjustment
	payload["subtotal"] = billing.FormatAmount(totals.Subtotal)
	payload["tax_amount"] = billing.FormatAmount(totals.TaxAmount)
	payload["grand_total"] = billing.FormatAmount(totals.GrandTotal)
	return payload
}

// Submit posts the form. On failure the form is left as it was.
func (f *DocumentForm) Submit() (Document, error) {
	number := f.Number
	if number == "" {
		number = f.buildNumber()
	}
	doc, err := f.client.CreateDocument(f.ctx, f.kind, f.payload(number))
	if err != nil {
		return Document{}, err
	}
	f.Number = number
	f.Reconcile(doc)
	if f.handoff != nil {
		f.handoff.Set(SignalFormSuccess, f.Number)
	}
	return doc, nil
}

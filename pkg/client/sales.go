package client

import (
	"context"
	"net/http"
	"net/url"

	"salesdesk/pkg/billing"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// CustomerInput is the add-customer form.
type CustomerInput struct {
	Name            string `json:"name"`
	CompanyName     string `json:"company_name,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	TaxCode         string `json:"tax_code,omitempty"`
	BillingAddress  string `json:"billing_address,omitempty"`
	ShippingAddress string `json:"shipping_address,omitempty"`
}

type SalesPerson struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Document is the part of a created challan, profile or invoice the forms
// care about. Only the number field matching the document kind is set.
type Document struct {
	ID         string `json:"id"`
	ChallanNo  string `json:"challan_no"`
	ProfileNo  string `json:"profile_no"`
	InvoiceNo  string `json:"invoice_no"`
	CustomerID string `json:"customer_id"`
	Subtotal   string `json:"subtotal"`
	TaxAmount  string `json:"tax_amount"`
	GrandTotal string `json:"grand_total"`
	Status     string `json:"status"`
}

// Number returns whichever document number the server assigned.
func (d Document) Number() string {
	switch {
	case d.ChallanNo != "":
		return d.ChallanNo
	case d.ProfileNo != "":
		return d.ProfileNo
	default:
		return d.InvoiceNo
	}
}

type Allocation struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNo     string `json:"invoice_no"`
	AmountUsed    string `json:"amount_used"`
	RemainingDue  string `json:"remaining_due"`
	InvoiceStatus string `json:"invoice_status"`
}

type Payment struct {
	ID             string       `json:"id"`
	PaymentNo      string       `json:"payment_no"`
	CustomerID     string       `json:"customer_id"`
	AmountReceived string       `json:"amount_received"`
	AmountUsed     string       `json:"amount_used"`
	Allocations    []Allocation `json:"allocations"`
}

type page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// ListCustomers returns the first page of customers matching search.
func (c *Client) ListCustomers(ctx context.Context, search string) ([]Customer, error) {
	q := url.Values{"limit": {"100"}}
	if search != "" {
		q.Set("search", search)
	}
	var p page[Customer]
	if err := c.do(ctx, http.MethodGet, c.salesURL("customers/", q), nil, &p); err != nil {
		return nil, err
	}
	return p.Items, nil
}

func (c *Client) CreateCustomer(ctx context.Context, in CustomerInput) (Customer, error) {
	var out Customer
	err := c.do(ctx, http.MethodPost, c.salesURL("customers/", nil), in, &out)
	return out, err
}

func (c *Client) ListSalesPersons(ctx context.Context) ([]SalesPerson, error) {
	var out []SalesPerson
	err := c.do(ctx, http.MethodGet, c.salesURL("sales-persons/", nil), nil, &out)
	return out, err
}

func (c *Client) CreateSalesPerson(ctx context.Context, name, email string) (SalesPerson, error) {
	var out SalesPerson
	err := c.do(ctx, http.MethodPost, c.salesURL("sales-persons/", nil),
		map[string]string{"name": name, "email": email}, &out)
	return out, err
}

// ListTaxOptions loads the TDS or TCS list.
func (c *Client) ListTaxOptions(ctx context.Context, kind billing.TaxKind) ([]billing.TaxOption, error) {
	var out []billing.TaxOption
	err := c.do(ctx, http.MethodGet, c.salesURL(string(kind)+"/", nil), nil, &out)
	return out, err
}

// CreateTCSOption adds a TCS rate. rate is a percentage, e.g. "0.1".
func (c *Client) CreateTCSOption(ctx context.Context, name, rate string) (billing.TaxOption, error) {
	var out billing.TaxOption
	err := c.do(ctx, http.MethodPost, c.salesURL(string(billing.TaxTCS)+"/", nil),
		map[string]string{"name": name, "rate": rate}, &out)
	return out, err
}

type unpaidInvoice struct {
	ID         string          `json:"id"`
	InvoiceNo  string          `json:"invoice_no"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	AmountDue  decimal.Decimal `json:"amount_due"`
}

// ListUnpaidInvoices returns the customer's open invoices with nothing used yet.
func (c *Client) ListUnpaidInvoices(ctx context.Context, customerID string) ([]billing.InvoiceUsage, error) {
	var invoices []unpaidInvoice
	q := url.Values{"customer": {customerID}}
	if err := c.do(ctx, http.MethodGet, c.salesURL("invoices/unpaid/", q), nil, &invoices); err != nil {
		return nil, err
	}
	rows := make([]billing.InvoiceUsage, len(invoices))
	for i, inv := range invoices {
		rows[i] = billing.InvoiceUsage{
			InvoiceID:     inv.ID,
			InvoiceNo:     inv.InvoiceNo,
			InvoiceAmount: inv.GrandTotal,
			AmountDue:     inv.AmountDue,
			AmountUsed:    decimal.Zero,
		}
	}
	return rows, nil
}

func (c *Client) ListDeliveryChallans(ctx context.Context, customerID string) ([]Document, error) {
	q := url.Values{"limit": {"100"}}
	if customerID != "" {
		q.Set("customer", customerID)
	}
	var p page[Document]
	if err := c.do(ctx, http.MethodGet, c.salesURL("delivery-challans/", q), nil, &p); err != nil {
		return nil, err
	}
	return p.Items, nil
}

func (c *Client) ListRecurringInvoices(ctx context.Context) ([]Document, error) {
	var p page[Document]
	if err := c.do(ctx, http.MethodGet, c.salesURL("recurring-invoices/", url.Values{"limit": {"100"}}), nil, &p); err != nil {
		return nil, err
	}
	return p.Items, nil
}

// CreateDocument posts a form payload to one of the create endpoints.
func (c *Client) CreateDocument(ctx context.Context, kind DocumentKind, payload map[string]interface{}) (Document, error) {
	var out Document
	err := c.do(ctx, http.MethodPost, c.salesURL(kind.createPath(), nil), payload, &out)
	return out, err
}

func (c *Client) RecordPayment(ctx context.Context, payload map[string]interface{}) (Payment, error) {
	var out Payment
	err := c.do(ctx, http.MethodPost, c.salesURL("payments/create/", nil), payload, &out)
	return out, err
}

package service

// Notifier pushes document events to connected front-ends.
type Notifier interface {
	Publish(event string, payload interface{})
}

// Event names published after a successful create.
const (
	EventCustomerCreated         = "customer.created"
	EventTaxOptionCreated        = "tax_option.created"
	EventDeliveryChallanCreated  = "delivery_challan.created"
	EventRecurringInvoiceCreated = "recurring_invoice.created"
	EventInvoiceCreated          = "invoice.created"
	EventPaymentRecorded         = "payment.recorded"
)

type nopNotifier struct{}

func (nopNotifier) Publish(string, interface{}) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

package payment

import "encoding/json"

const (
	ProviderStripe = "STRIPE"

	EventCheckoutCompleted = "checkout.session.completed"
	StatusPaid             = "paid"

	MetadataOrderID = "orderId"
)

// LineItem is one priced row of a hosted checkout. UnitAmount is in minor
// currency units.
type LineItem struct {
	Name       string
	Image      string
	UnitAmount int64
	Quantity   int64
}

type CheckoutParams struct {
	OrderID       string
	CustomerEmail string
	LineItems     []LineItem
}

// Session is the processor's view of a checkout session.
type Session struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"paymentStatus"`
	AmountTotal   int64             `json:"amountTotal"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

func (s *Session) Paid() bool {
	return s != nil && s.PaymentStatus == StatusPaid
}

// OrderID returns the order id stamped into the session metadata at creation.
func (s *Session) OrderID() string {
	if s == nil {
		return ""
	}
	return s.Metadata[MetadataOrderID]
}

// Event is a verified webhook delivery. Session is set only for checkout
// session events.
type Event struct {
	ID      string
	Type    string
	Session *Session
	Payload json.RawMessage
}

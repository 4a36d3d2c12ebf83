package payment

import "context"

// Gateway is the boundary to the hosted checkout processor.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*Session, error)
	// GetCheckoutSession fetches the processor's canonical copy of a session.
	GetCheckoutSession(ctx context.Context, sessionID string) (*Session, error)
	// ParseEvent verifies the signature header against the raw payload before
	// decoding anything from it.
	ParseEvent(payload []byte, signatureHeader string) (*Event, error)
}

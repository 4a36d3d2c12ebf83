package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"foodhub-be/internal/logger"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

var allowedShippingCountries = []string{"GB", "US", "CA", "IN"}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string

	// Backend replaces the default API backend. Only tests set it.
	Backend stripe.Backend
}

type stripeGateway struct {
	sc            *client.API
	webhookSecret string
	currency      string
	successURL    string
	cancelURL     string
}

func NewStripeGateway(cfg StripeConfig) Gateway {
	if cfg.SecretKey == "" {
		logger.L().Warn("Stripe secret key is empty")
	}
	if cfg.WebhookSecret == "" {
		logger.L().Warn("Stripe webhook secret is empty, webhooks will be rejected")
	}

	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "inr"
	}

	var backends *stripe.Backends
	if cfg.Backend != nil {
		backends = &stripe.Backends{API: cfg.Backend, Connect: cfg.Backend, Uploads: cfg.Backend}
	}
	sc := &client.API{}
	sc.Init(cfg.SecretKey, backends)

	return &stripeGateway{
		sc:            sc,
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "CreateCheckoutSession"),
		zap.String("order_id", p.OrderID),
	)

	if len(p.LineItems) == 0 {
		return nil, ErrNoLineItems
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(allowedShippingCountries),
		},
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
	}
	params.Context = ctx
	params.AddMetadata(MetadataOrderID, p.OrderID)
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}

	for _, it := range p.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(it.Name),
		}
		if it.Image != "" {
			product.Images = stripe.StringSlice([]string{it.Image})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(g.currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(it.UnitAmount),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	log.Info("Creating stripe checkout session", zap.Int("line_items", len(params.LineItems)))

	cs, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		log.Error("Stripe checkout session request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if cs.URL == "" {
		log.Error("Stripe returned a session without url", zap.String("session_id", cs.ID))
		return nil, fmt.Errorf("%w: session %s has no url", ErrGateway, cs.ID)
	}

	log.Info("Stripe checkout session created", zap.String("session_id", cs.ID))
	return toSession(cs), nil
}

func (g *stripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "GetCheckoutSession"),
		zap.String("session_id", sessionID),
	)

	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrMissingSessionID
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	cs, err := g.sc.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		log.Error("Stripe session lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return toSession(cs), nil
}

func (g *stripeGateway) ParseEvent(payload []byte, signatureHeader string) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, ErrMissingSecret
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{
		ID:      ev.ID,
		Type:    string(ev.Type),
		Payload: json.RawMessage(payload),
	}

	if strings.HasPrefix(out.Type, "checkout.session.") && ev.Data != nil {
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Session = toSession(&cs)
	}
	return out, nil
}

func toSession(cs *stripe.CheckoutSession) *Session {
	return &Session{
		ID:            cs.ID,
		URL:           cs.URL,
		PaymentStatus: string(cs.PaymentStatus),
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
		Metadata:      cs.Metadata,
	}
}

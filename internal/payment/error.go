package payment

import "foodhub-be/internal/apperr"

var (
	ErrGateway          = apperr.New(apperr.KindUpstream, "Payment processor request failed")
	ErrInvalidSignature = apperr.New(apperr.KindValidation, "Invalid webhook signature")
	ErrMissingSecret    = apperr.New(apperr.KindInternal, "webhook secret is not configured")
	ErrNoLineItems      = apperr.New(apperr.KindValidation, "Checkout requires at least one item")
	ErrMissingSessionID = apperr.New(apperr.KindValidation, "session_id query parameter is required")
)

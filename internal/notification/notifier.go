// Package notification delivers transactional e-mail, either directly through
// Brevo or through a Kafka topic drained by the notifier worker.
package notification

import (
	"context"
	"errors"

	"foodhub-be/internal/apperr"
)

var (
	ErrDelivery    = apperr.New(apperr.KindUpstream, "Failed to send email")
	ErrUnknownKind = errors.New("unknown notification kind")
)

type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, code string) error
	SendWelcomeEmail(ctx context.Context, email, name string) error
	SendPasswordResetEmail(ctx context.Context, email, resetURL string) error
	SendResetSuccessEmail(ctx context.Context, email string) error
}

type Kind string

const (
	KindVerification  Kind = "verification"
	KindWelcome       Kind = "welcome"
	KindPasswordReset Kind = "password_reset"
	KindResetSuccess  Kind = "reset_success"
)

// Message is the queued form of a notification.
type Message struct {
	Kind Kind   `json:"kind"`
	To   string `json:"to"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Deliver replays a queued message against n.
func Deliver(ctx context.Context, n Notifier, m Message) error {
	switch m.Kind {
	case KindVerification:
		return n.SendVerificationEmail(ctx, m.To, m.Code)
	case KindWelcome:
		return n.SendWelcomeEmail(ctx, m.To, m.Name)
	case KindPasswordReset:
		return n.SendPasswordResetEmail(ctx, m.To, m.URL)
	case KindResetSuccess:
		return n.SendResetSuccessEmail(ctx, m.To)
	default:
		return ErrUnknownKind
	}
}

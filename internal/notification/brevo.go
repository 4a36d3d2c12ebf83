package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"foodhub-be/internal/logger"

	"go.uber.org/zap"
)

const brevoBaseURL = "https://api.brevo.com"

type BrevoConfig struct {
	APIKey      string
	SenderName  string
	SenderEmail string
	// BaseURL overrides the Brevo endpoint (BREVO_BASE_URL), e.g. for a sandbox.
	BaseURL string
}

// BrevoMailer sends transactional e-mail through the Brevo REST API.
type BrevoMailer struct {
	apiKey     string
	senderName string
	sender     string
	baseURL    string
	httpClient *http.Client
	views      *renderer
}

func NewBrevoMailer(cfg BrevoConfig) *BrevoMailer {
	if cfg.APIKey == "" {
		logger.L().Warn("Brevo API key is empty")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = brevoBaseURL
	}
	name := cfg.SenderName
	if name == "" {
		name = "FoodHub"
	}

	return &BrevoMailer{
		apiKey:     cfg.APIKey,
		senderName: name,
		sender:     cfg.SenderEmail,
		baseURL:    base,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		views: newRenderer(name),
	}
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoEmail struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func (b *BrevoMailer) SendVerificationEmail(ctx context.Context, email, code string) error {
	return b.send(ctx, Message{Kind: KindVerification, To: email, Code: code})
}

func (b *BrevoMailer) SendWelcomeEmail(ctx context.Context, email, name string) error {
	return b.send(ctx, Message{Kind: KindWelcome, To: email, Name: name})
}

func (b *BrevoMailer) SendPasswordResetEmail(ctx context.Context, email, resetURL string) error {
	return b.send(ctx, Message{Kind: KindPasswordReset, To: email, URL: resetURL})
}

func (b *BrevoMailer) SendResetSuccessEmail(ctx context.Context, email string) error {
	return b.send(ctx, Message{Kind: KindResetSuccess, To: email})
}

func (b *BrevoMailer) send(ctx context.Context, m Message) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "mailer"),
		zap.String("kind", string(m.Kind)),
		zap.String("to", m.To),
	)

	html, err := b.views.render(m)
	if err != nil {
		log.Error("Failed to render email", zap.Error(err))
		return err
	}

	jsonBody, err := json.Marshal(brevoEmail{
		Sender:      brevoContact{Name: b.senderName, Email: b.sender},
		To:          []brevoContact{{Email: m.To, Name: m.Name}},
		Subject:     b.views.subject(m.Kind),
		HTMLContent: html,
	})
	if err != nil {
		log.Error("Failed to marshal email request", zap.Error(err))
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v3/smtp/email", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return err
	}
	req.Header.Add("api-key", b.apiKey)
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		log.Error("Brevo request failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return fmt.Errorf("%w: read brevo response: %v", ErrDelivery, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error("Brevo returned non-2xx status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return fmt.Errorf("%w: brevo status %d", ErrDelivery, resp.StatusCode)
	}

	log.Info("Email sent")
	return nil
}

// Package webhook receives signed payment processor events.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"foodhub-be/internal/apperr"
	"foodhub-be/internal/logger"
	"foodhub-be/internal/metrics"
	"foodhub-be/internal/order"
	"foodhub-be/internal/payment"

	"go.uber.org/zap"
)

const (
	SignatureHeader = "Stripe-Signature"
	maxBodyBytes    = 64 << 10
)

type OrderConfirmer interface {
	ConfirmPayment(ctx context.Context, s *payment.Session) (*order.Order, error)
}

type Handler struct {
	orders  OrderConfirmer
	gateway payment.Gateway
	repo    payment.Repository
	stats   *metrics.Reconcile
}

func NewWebhookHandler(orders OrderConfirmer, gateway payment.Gateway, repo payment.Repository, stats *metrics.Reconcile) *Handler {
	if stats == nil {
		stats = &metrics.Reconcile{}
	}
	return &Handler{orders: orders, gateway: gateway, repo: repo, stats: stats}
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// PaymentWebhookHandler verifies the event signature before touching any
// state, records the delivery and applies checkout completions.
func (h *Handler) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "webhook"),
		zap.String("provider", payment.ProviderStripe),
	)

	timer := metrics.StartTimer()
	h.stats.WebhooksReceived.Inc()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Warn("failed to read webhook body", zap.Error(err))
		h.stats.WebhooksRejected.Inc()
		writeJSON(w, http.StatusBadRequest, response{Message: "Failed to read body"})
		return
	}

	ev, err := h.gateway.ParseEvent(body, r.Header.Get(SignatureHeader))
	if err != nil {
		if errors.Is(err, payment.ErrMissingSecret) {
			log.Error("webhook secret is not configured")
		} else {
			log.Warn("rejected webhook", zap.Error(err))
		}
		h.stats.WebhooksRejected.Inc()
		writeJSON(w, http.StatusBadRequest, response{Message: payment.ErrInvalidSignature.Message})
		return
	}

	log = log.With(zap.String("event_id", ev.ID), zap.String("event_type", ev.Type))

	sessionID := ""
	if ev.Session != nil {
		sessionID = ev.Session.ID
	}

	webhookID, dup, err := h.repo.SavePaymentWebhook(ctx, payment.ProviderStripe, ev.ID, ev.Type, sessionID, ev.Payload, true)
	if err != nil {
		log.Error("failed to record webhook", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, response{Message: "Internal server error"})
		return
	}
	if dup {
		log.Info("duplicate webhook ignored")
		h.stats.WebhooksDuplicate.Inc()
		writeJSON(w, http.StatusOK, response{Success: true, Message: "Already processed"})
		return
	}

	if ev.Type != payment.EventCheckoutCompleted {
		h.markProcessed(ctx, log, webhookID)
		writeJSON(w, http.StatusOK, response{Success: true})
		return
	}

	if _, err := h.orders.ConfirmPayment(ctx, ev.Session); err != nil {
		log.Warn("failed to apply checkout completion", zap.Error(err))
		if markErr := h.repo.MarkWebhookFailed(ctx, webhookID, err.Error()); markErr != nil {
			log.Error("failed to mark webhook failed", zap.Error(markErr))
		}
		// unpaid completions are acknowledged and recorded as failed
		if errors.Is(err, order.ErrPaymentNotCompleted) {
			writeJSON(w, http.StatusOK, response{Success: true, Message: apperr.Message(err)})
			return
		}
		kind := apperr.KindOf(err)
		writeJSON(w, kind.HTTPStatus(), response{Message: apperr.Message(err)})
		return
	}

	h.markProcessed(ctx, log, webhookID)
	log.Info("checkout completion applied", zap.Duration("duration", timer.Duration()))
	writeJSON(w, http.StatusOK, response{Success: true})
}

func (h *Handler) markProcessed(ctx context.Context, log *zap.Logger, webhookID int64) {
	if err := h.repo.MarkWebhookProcessed(ctx, webhookID); err != nil {
		log.Error("failed to mark webhook processed", zap.Int64("webhook_id", webhookID), zap.Error(err))
	}
}

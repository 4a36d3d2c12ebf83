package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Reconcile counts what happened to payment confirmations coming from either
// the webhook or the verify endpoint.
type Reconcile struct {
	WebhooksReceived  Counter
	WebhooksDuplicate Counter
	WebhooksRejected  Counter
	OrdersConfirmed   Counter
	ConfirmFailed     Counter
}

type ReconcileSnapshot struct {
	WebhooksReceived  uint64 `json:"webhooksReceived"`
	WebhooksDuplicate uint64 `json:"webhooksDuplicate"`
	WebhooksRejected  uint64 `json:"webhooksRejected"`
	OrdersConfirmed   uint64 `json:"ordersConfirmed"`
	ConfirmFailed     uint64 `json:"confirmFailed"`
}

func (r *Reconcile) Snapshot() ReconcileSnapshot {
	return ReconcileSnapshot{
		WebhooksReceived:  r.WebhooksReceived.Load(),
		WebhooksDuplicate: r.WebhooksDuplicate.Load(),
		WebhooksRejected:  r.WebhooksRejected.Load(),
		OrdersConfirmed:   r.OrdersConfirmed.Load(),
		ConfirmFailed:     r.ConfirmFailed.Load(),
	}
}

package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"foodhub-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
}

// Worker drains the notification topic and delivers each message through a
// Notifier, normally a BrevoMailer.
type Worker struct {
	reader      MessageReader
	notifier    Notifier
	maxAttempts int
	backoff     time.Duration
}

func NewWorker(r MessageReader, n Notifier) *Worker {
	return &Worker{reader: r, notifier: n, maxAttempts: 3, backoff: time.Second}
}

// Run blocks until ctx is cancelled. A message is committed once delivered or
// once every attempt has failed, so one bad address cannot stall the topic.
func (w *Worker) Run(ctx context.Context) error {
	log := logger.L().With(zap.String("layer", "worker"))
	log.Info("notification worker started")

	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("notification worker stopped")
				return nil
			}
			log.Error("failed to fetch message", zap.Error(err))
			if !sleep(ctx, w.backoff) {
				return nil
			}
			continue
		}

		w.handle(ctx, log, msg)

		if err := w.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Error("failed to commit message", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (w *Worker) handle(ctx context.Context, log *zap.Logger, msg kafka.Message) {
	log = log.With(zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))

	var m Message
	if err := json.Unmarshal(msg.Value, &m); err != nil {
		log.Error("dropping malformed message", zap.Error(err))
		return
	}
	log = log.With(zap.String("kind", string(m.Kind)))

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := Deliver(ctx, w.notifier, m)
		if err == nil {
			return
		}
		if errors.Is(err, ErrUnknownKind) {
			log.Error("dropping message of unknown kind")
			return
		}
		log.Warn("delivery failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < w.maxAttempts && !sleep(ctx, w.backoff*time.Duration(attempt)) {
			return
		}
	}
	log.Error("giving up on notification")
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

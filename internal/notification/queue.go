package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"foodhub-be/internal/apperr"
	"foodhub-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var ErrEnqueue = apperr.New(apperr.KindUpstream, "Failed to queue email")

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
}

// QueueNotifier publishes notifications to Kafka instead of sending them.
// A failure only means the message could not be enqueued.
type QueueNotifier struct {
	writer MessageWriter
}

func NewQueueNotifier(w MessageWriter) *QueueNotifier {
	return &QueueNotifier{writer: w}
}

func (q *QueueNotifier) SendVerificationEmail(ctx context.Context, email, code string) error {
	return q.publish(ctx, Message{Kind: KindVerification, To: email, Code: code})
}

func (q *QueueNotifier) SendWelcomeEmail(ctx context.Context, email, name string) error {
	return q.publish(ctx, Message{Kind: KindWelcome, To: email, Name: name})
}

func (q *QueueNotifier) SendPasswordResetEmail(ctx context.Context, email, resetURL string) error {
	return q.publish(ctx, Message{Kind: KindPasswordReset, To: email, URL: resetURL})
}

func (q *QueueNotifier) SendResetSuccessEmail(ctx context.Context, email string) error {
	return q.publish(ctx, Message{Kind: KindResetSuccess, To: email})
}

func (q *QueueNotifier) publish(ctx context.Context, m Message) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "queue"),
		zap.String("kind", string(m.Kind)),
	)

	value, err := json.Marshal(m)
	if err != nil {
		return err
	}

	err = q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(string(m.Kind) + "." + m.To),
		Value: value,
	})
	if err != nil {
		log.Error("failed to enqueue notification", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrEnqueue, err)
	}

	log.Debug("notification enqueued")
	return nil
}

func (q *QueueNotifier) Close() error {
	return q.writer.Close()
}

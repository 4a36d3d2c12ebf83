// Command notifier consumes queued e-mail notifications from Kafka and sends
// them through Brevo. The API server publishes to the topic when
// NOTIFY_MODE=queue.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"foodhub-be/internal/config"
	"foodhub-be/internal/logger"
	"foodhub-be/internal/notification"

	"go.uber.org/zap"
)

const consumerGroup = "foodhub-notifier"

var newReaderFunc = func(cfg *config.Config) notification.MessageReader {
	return notification.NewKafkaReader(cfg.KafkaBrokers, cfg.NotifyTopic, consumerGroup)
}

func main() {
	cfg := config.LoadNotifierConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	reader := newReaderFunc(cfg)
	defer func() {
		if err := reader.Close(); err != nil {
			logger.L().Warn("failed to close kafka reader", zap.Error(err))
		}
	}()

	mailer := notification.NewBrevoMailer(notification.BrevoConfig{
		APIKey:      cfg.BrevoAPIKey,
		SenderName:  cfg.MailSenderName,
		SenderEmail: cfg.MailSenderEmail,
		BaseURL:     cfg.BrevoBaseURL,
	})

	logger.L().Info("notifier consuming",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.NotifyTopic),
		zap.String("group", consumerGroup),
	)
	return notification.NewWorker(reader, mailer).Run(ctx)
}

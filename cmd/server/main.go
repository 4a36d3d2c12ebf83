package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"foodhub-be/internal/api"
	"foodhub-be/internal/auth"
	"foodhub-be/internal/config"
	"foodhub-be/internal/db"
	"foodhub-be/internal/logger"
	"foodhub-be/internal/metrics"
	"foodhub-be/internal/middleware"
	"foodhub-be/internal/notification"
	"foodhub-be/internal/order"
	"foodhub-be/internal/payment"
	"foodhub-be/internal/payment/webhook"
	"foodhub-be/internal/restaurant"
	"foodhub-be/internal/storage"
	"foodhub-be/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = startServer
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, cleanup := newServer(ctx, cfg, database)
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.L().Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
	return startServerFunc(ctx, srv)
}

// startServer serves until ctx is cancelled, then drains in-flight requests.
func startServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer wires every dependency and returns the root handler plus a func
// that releases what was opened.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB) (http.Handler, func()) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.L().Warn("cleanup failed", zap.Error(err))
			}
		}
	}

	stats := &metrics.Reconcile{}
	tokens := auth.NewManager(cfg.JWTSecret, tokenTTL)
	uploader := storage.NewLocalUploader(cfg.UploadDir, cfg.PublicBaseURL)

	var notifier notification.Notifier
	switch cfg.NotifyMode {
	case config.NotifyModeQueue:
		q := notification.NewQueueNotifier(notification.NewKafkaWriter(cfg.KafkaBrokers, cfg.NotifyTopic))
		closers = append(closers, q.Close)
		notifier = q
	default:
		notifier = notification.NewBrevoMailer(notification.BrevoConfig{
			APIKey:      cfg.BrevoAPIKey,
			SenderName:  cfg.MailSenderName,
			SenderEmail: cfg.MailSenderEmail,
			BaseURL:     cfg.BrevoBaseURL,
		})
	}
	logger.L().Info("notifications configured", zap.String("mode", cfg.NotifyMode))

	cache := restaurant.NewNopCache()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		closers = append(closers, rdb.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.L().Warn("redis unavailable, restaurant cache disabled", zap.Error(err))
		} else {
			cache = restaurant.NewRedisCache(rdb, cfg.CacheTTL)
		}
	}

	frontend := strings.TrimRight(cfg.FrontendURL, "/")
	gateway := payment.NewStripeGateway(payment.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		Currency:      cfg.Currency,
		SuccessURL:    frontend + "/order/status?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     frontend + "/cart",
	})

	userSvc := user.NewService(user.NewRepository(database), tokens, notifier, uploader, cfg.FrontendURL)
	restaurantSvc := restaurant.NewService(restaurant.NewRepository(database), cache, uploader)
	orderSvc := order.NewService(order.NewRepository(database), restaurantSvc, gateway, stats)
	webhookHandler := webhook.NewWebhookHandler(orderSvc, gateway, payment.NewRepository(database), stats)

	router := api.NewRouter(api.Deps{
		Users:       api.NewUserHandler(userSvc, tokens.TTL(), cfg.CookieSecure),
		Restaurants: api.NewRestaurantHandler(restaurantSvc, orderSvc),
		Orders:      api.NewOrderHandler(orderSvc),
		Webhook:     webhookHandler.PaymentWebhookHandler,
		Tokens:      tokens,
		Stats:       stats,
		UploadDir:   uploader.Dir(),
	})

	limiter := middleware.NewLimiter(cfg.InternalKey)
	go limiter.Run(ctx)

	var handler http.Handler = limiter.Middleware(router)
	handler = middleware.CORS(cfg.FrontendURL)(handler)
	handler = logger.LoggingMiddleware(handler)
	handler = logger.RequestIDMiddleware(handler)

	return handler, cleanup
}

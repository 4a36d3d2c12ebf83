package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	NotifyModeSync  = "sync"
	NotifyModeQueue = "queue"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	AppPort      string
	AppEnv       string
	JWTSecret    string
	CookieSecure bool
	FrontendURL  string
	InternalKey  string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	BrevoAPIKey     string
	BrevoBaseURL    string
	MailSenderName  string
	MailSenderEmail string
	NotifyMode      string
	KafkaBrokers    []string
	NotifyTopic     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	UploadDir     string
	PublicBaseURL string
}

func LoadConfig() *Config {
	cfg := fromEnv()

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("SECRET_KEY is not set")
	}

	return cfg
}

// LoadNotifierConfig is used by the queue consumer, which needs neither the
// database nor the session secret.
func LoadNotifierConfig() *Config {
	cfg := fromEnv()

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is not set")
	}
	if cfg.BrevoAPIKey == "" {
		log.Println("BREVO_API_KEY is not set, deliveries will fail")
	}

	return cfg
}

func fromEnv() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),

		AppPort:      getEnv("APP_PORT", "8000"),
		AppEnv:       getEnv("APP_ENV", "development"),
		JWTSecret:    os.Getenv("SECRET_KEY"),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:5173"),
		InternalKey:  os.Getenv("INTERNAL_SECRET_KEY"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("WEBHOOK_ENDPOINT_SECRET"),
		Currency:            getEnv("CURRENCY", "inr"),

		BrevoAPIKey:     os.Getenv("BREVO_API_KEY"),
		BrevoBaseURL:    os.Getenv("BREVO_BASE_URL"),
		MailSenderName:  getEnv("MAIL_SENDER_NAME", "FoodHub"),
		MailSenderEmail: os.Getenv("MAIL_SENDER_EMAIL"),
		NotifyMode:      getEnv("NOTIFY_MODE", NotifyModeSync),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		NotifyTopic:     getEnv("NOTIFY_TOPIC", "notification-topic"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,

		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8000"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel    string
	Environment string

	HTTPAddr string

	// Cron specs for the recurring scheduler.
	CronSpecDailyOverdue   string // daily overdue check
	CronSpecWeeklyReminder string // weekly deadline-approaching reminder

	// Email delivery.
	EmailBackend   string // "smtp", "sendgrid" or "console"
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SendgridAPIKey string
	FromEmail      string
	FromName       string

	// Queue behaviour.
	EmailMaxAttempts    int
	EmailBackoffBase    time.Duration
	DecisionMaxAttempts int
	FailedJobRetention  time.Duration
	DLQSweepInterval    time.Duration

	// Notification log.
	NotificationLogTTL time.Duration
	RecentLogMax       int

	// Window for the weekly "due soon" reminder.
	DueSoonWindow time.Duration

	// Optional Telegram alert channel; disabled when the token is empty.
	TelegramToken string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables; a missing .env
	// file is not an error.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	cfg.CronSpecDailyOverdue = getEnv("CRON_SPEC_DAILY_OVERDUE", "0 9 * * *")      // 09:00 daily
	cfg.CronSpecWeeklyReminder = getEnv("CRON_SPEC_WEEKLY_REMINDER", "0 10 * * 1") // 10:00 Monday

	cfg.EmailBackend = strings.ToLower(getEnv("EMAIL_BACKEND", "console"))
	switch cfg.EmailBackend {
	case "smtp":
		cfg.SMTPHost = os.Getenv("SMTP_HOST")
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST is not set")
		}
		if cfg.SMTPPort, err = getEnvInt("SMTP_PORT", 587); err != nil {
			return nil, err
		}
		cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
		cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	case "sendgrid":
		cfg.SendgridAPIKey = os.Getenv("SENDGRID_API_KEY")
		if cfg.SendgridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is not set")
		}
	case "console":
		// No credentials needed.
	default:
		return nil, fmt.Errorf("invalid EMAIL_BACKEND: %s", cfg.EmailBackend)
	}

	cfg.FromEmail = getEnv("FROM_EMAIL", "noreply@institution.example")
	cfg.FromName = getEnv("FROM_NAME", "Activity Tracker")

	if cfg.EmailMaxAttempts, err = getEnvInt("EMAIL_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.EmailBackoffBase, err = getEnvDuration("EMAIL_BACKOFF_BASE", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.DecisionMaxAttempts, err = getEnvInt("DECISION_MAX_ATTEMPTS", 2); err != nil {
		return nil, err
	}
	if cfg.FailedJobRetention, err = getEnvDuration("FAILED_JOB_RETENTION", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DLQSweepInterval, err = getEnvDuration("DLQ_SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.NotificationLogTTL, err = getEnvDuration("NOTIFICATION_LOG_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RecentLogMax, err = getEnvInt("RECENT_LOG_MAX", 50); err != nil {
		return nil, err
	}
	if cfg.DueSoonWindow, err = getEnvDuration("DUE_SOON_WINDOW", 72*time.Hour); err != nil {
		return nil, err
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

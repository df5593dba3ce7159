package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"payment_reminder/internal/pkg/validate"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken  string `validate:"required"`
	TelegramChatID int64  // 0 until the owner runs /start
	DatabaseURL    string `validate:"required"`

	RedisAddr     string // empty keeps the reliability log in memory
	RedisPassword string
	RedisDB       int `validate:"min=0"`

	SNSTopicArn string // empty disables the mirror
	SNSRegion   string `validate:"required_with=SNSTopicArn"`

	HTTPAddr    string `validate:"required"`
	Timezone    string
	Location    *time.Location `validate:"required"`
	Locale      string         `validate:"oneof=en ru"`
	LogLevel    string
	Environment string
	AppURL      string `validate:"omitempty,url"`

	CronSpecDispatch        string        `validate:"required"` // dispatch sweep
	CronSpecScheduleRefresh string        `validate:"required"` // schedule recompute
	MissedThreshold         time.Duration `validate:"gt=0"`
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		cfg.RedisDB, err = strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	}

	cfg.SNSTopicArn = os.Getenv("SNS_TOPIC_ARN")
	cfg.SNSRegion = os.Getenv("SNS_REGION")

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.Timezone = os.Getenv("TIMEZONE")
	cfg.Location = time.Local
	if cfg.Timezone != "" {
		cfg.Location, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
		}
	}

	cfg.Locale = strings.ToLower(os.Getenv("LOCALE"))
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.AppURL = strings.TrimRight(os.Getenv("APP_URL"), "/")

	cfg.CronSpecDispatch = os.Getenv("CRON_SPEC_DISPATCH")
	if cfg.CronSpecDispatch == "" {
		cfg.CronSpecDispatch = "* * * * *" // Default: every minute
	}

	cfg.CronSpecScheduleRefresh = os.Getenv("CRON_SPEC_SCHEDULE_REFRESH")
	if cfg.CronSpecScheduleRefresh == "" {
		cfg.CronSpecScheduleRefresh = "*/15 * * * *" // Default: every 15 minutes
	}

	cfg.MissedThreshold = time.Hour
	if v := os.Getenv("MISSED_THRESHOLD"); v != "" {
		cfg.MissedThreshold, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MISSED_THRESHOLD: %w", err)
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/env"
)

type Config struct {
	Port        string
	ENV         string
	App         AppConfig
	DB          DatabaseConfig
	Minio       MinioConfig
	RabbitMQ    RabbitMQConfig
	RateLimiter RateLimiterConfig
	Mail        MailConfig
}

type AppConfig struct {
	// Public base URL the verification QR codes point at.
	BaseURL string
	// Bulk requests above this size go through the queue instead of the
	// request cycle.
	MaxInlineBulkTargets int
	FontDir              string
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type DatabaseConfig struct {
	DB_HOST      string
	DB_PORT      string
	DB_DATABASE  string
	DB_USERNAME  string
	DB_PASSWORD  string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type RabbitMQConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

func (c RabbitMQConfig) GetConnectionString() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.Username, c.Password, c.Host, c.Port)
}

type MailConfig struct {
	SEND_GRID          SendGridConfig
	FROM_EMAIL         string
	GMAIL_USERNAME     string
	GMAIL_APP_PASSWORD string
}

type SendGridConfig struct {
	API_KEY string
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.ENV, "production")
}

func (c MailConfig) Enabled() bool {
	return (c.SEND_GRID.API_KEY != "" && c.FROM_EMAIL != "") || (c.GMAIL_USERNAME != "" && c.GMAIL_APP_PASSWORD != "")
}

func GetConfig() Config {
	rateLimiteTimeFrame, err := time.ParseDuration(env.GetString("RATE_LIMIT_TIME_FRAME", "1m"))
	if err != nil {
		rateLimiteTimeFrame = 60 * time.Second
	}

	return Config{
		Port: env.GetString("PORT", "8080"),
		ENV:  env.GetString("ENV", "development"),
		App: AppConfig{
			BaseURL:              env.GetString("APP_BASE_URL", "http://localhost:8080"),
			MaxInlineBulkTargets: env.GetInt("APP_MAX_INLINE_BULK_TARGETS", constant.MaxInlineBulkTargets),
			FontDir:              env.GetString("APP_FONT_DIR", ""),
		},
		DB: DatabaseConfig{
			DB_HOST:      env.GetString("DB_HOST", "127.0.0.1"),
			DB_PORT:      env.GetString("DB_PORT", "5432"),
			DB_USERNAME:  env.GetString("DB_USERNAME", "root"),
			DB_PASSWORD:  env.GetString("DB_PASSWORD", ""),
			DB_DATABASE:  env.GetString("DB_DATABASE", "certforge"),
			MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 30),
			MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 30),
			MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
		Minio: MinioConfig{
			Endpoint:  env.GetString("MINIO_ENDPOINT", "127.0.0.1:9000"),
			AccessKey: env.GetString("MINIO_ACCESS_KEY", ""),
			SecretKey: env.GetString("MINIO_SECRET_KEY", ""),
			Bucket:    env.GetString("MINIO_BUCKET", "certforge"),
			UseSSL:    env.GetBool("MINIO_USE_SSL", false),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     env.GetString("RABBITMQ_HOST", "127.0.0.1"),
			Port:     env.GetString("RABBITMQ_PORT", "5672"),
			Username: env.GetString("RABBITMQ_USERNAME", "guest"),
			Password: env.GetString("RABBITMQ_PASSWORD", "guest"),
		},
		// By default if not specified, we allow 5000 requests per minute on all routes
		RateLimiter: RateLimiterConfig{
			RequestsPerTimeFrame: env.GetInt("RATE_LIMIT_REQUESTS_PER_TIME_FRAME", 5000),
			TimeFrame:            rateLimiteTimeFrame,
			Enabled:              env.GetBool("RATE_LIMIT_ENABLED", true),
		},
		Mail: MailConfig{
			FROM_EMAIL: env.GetString("MAIL_FROM_MAIL", ""),
			SEND_GRID: SendGridConfig{
				API_KEY: env.GetString("MAIL_SEND_GRID_API_KEY", ""),
			},
			GMAIL_USERNAME:     env.GetString("MAIL_GMAIL_USERNAME", ""),
			GMAIL_APP_PASSWORD: env.GetString("MAIL_GMAIL_APP_PASSWORD", ""),
		},
	}
}

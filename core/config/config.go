package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"projecthub.app/server/core/db"
)

type Config struct {
	OTel         OTelConfig
	WorkOS       WorkOSConfig
	GitHub       GitHubConfig
	Queue        QueueConfig
	SSE          SSEConfig
	Env          string
	Port         string
	DashboardURL string
	DB           db.Config
}

type WorkOSConfig struct {
	APIKey      string
	ClientID    string
	RedirectURI string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type GitHubConfig struct {
	// WebhookSecret is the shared secret used to verify X-Hub-Signature-256
	// on inbound webhook deliveries.
	WebhookSecret string
}

type QueueConfig struct {
	RedisURL     string
	Stream       string
	Group        string
	Consumer     string
	DLQStream    string
	BatchSize    int64
	Block        time.Duration
	MaxAttempts  int
	RequeueDelay time.Duration
}

type SSEConfig struct {
	HeartbeatInterval time.Duration
	PollInterval      time.Duration
	HistoryLimit      int
}

func Load() (Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := Config{
		Env:          getEnv("ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		DashboardURL: getEnv("DASHBOARD_URL", "http://localhost:3000"),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DATABASE_MAX_CONNS", 0),
			MinConns: getEnvInt32("DATABASE_MIN_CONNS", 0),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Headers:        getEnv("OTEL_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "projecthub-server"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		WorkOS: WorkOSConfig{
			APIKey:      getEnv("WORKOS_API_KEY", ""),
			ClientID:    getEnv("WORKOS_CLIENT_ID", ""),
			RedirectURI: getEnv("WORKOS_REDIRECT_URI", ""),
		},
		GitHub: GitHubConfig{
			WebhookSecret: getEnv("GITHUB_WEBHOOK_SECRET", ""),
		},
		Queue: QueueConfig{
			RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
			Stream:       getEnv("QUEUE_STREAM", "projecthub_activity"),
			Group:        getEnv("QUEUE_GROUP", "projecthub_server"),
			Consumer:     getEnv("QUEUE_CONSUMER", "server-1"),
			DLQStream:    getEnv("QUEUE_DLQ_STREAM", "projecthub_activity_dlq"),
			BatchSize:    int64(getEnvInt("QUEUE_BATCH_SIZE", 10)),
			Block:        time.Duration(getEnvInt("QUEUE_BLOCK_SECONDS", 5)) * time.Second,
			MaxAttempts:  getEnvInt("QUEUE_MAX_ATTEMPTS", 3),
			RequeueDelay: time.Duration(getEnvInt("QUEUE_REQUEUE_DELAY_MS", 500)) * time.Millisecond,
		},
		SSE: SSEConfig{
			HeartbeatInterval: time.Duration(getEnvInt("SSE_HEARTBEAT_SECONDS", 30)) * time.Second,
			PollInterval:      time.Duration(getEnvInt("SSE_POLL_SECONDS", 30)) * time.Second,
			HistoryLimit:      getEnvInt("SSE_HISTORY_LIMIT", 50),
		},
	}

	if cfg.DB.DSN == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.GitHub.WebhookSecret == "" {
		return Config{}, fmt.Errorf("GITHUB_WEBHOOK_SECRET is required")
	}

	if cfg.WorkOS.APIKey == "" || cfg.WorkOS.ClientID == "" {
		return Config{}, fmt.Errorf("WORKOS_API_KEY and WORKOS_CLIENT_ID are required")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c WorkOSConfig) Enabled() bool {
	return c.APIKey != "" && c.ClientID != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

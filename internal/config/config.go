package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Client   ClientConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

// UpstreamConfig points the gateway at the remote conversation backend.
// BaseURL may legitimately be empty: every proxy route answers 500 until
// it is configured, so an empty value is not a startup failure.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ClientConfig configures the assistant client (reconciler + durable cache).
type ClientConfig struct {
	GatewayBaseURL string
	StateBackend   string // "file" | "memory" | "redis"
	StateDir       string
	RedisURL       string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_BASE_URL", ""),
			Timeout: time.Duration(getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Client: ClientConfig{
			GatewayBaseURL: getEnv("GATEWAY_BASE_URL", "http://localhost:3000"),
			StateBackend:   getEnv("STATE_BACKEND", "file"),
			StateDir:       getEnv("STATE_DIR", "."),
			RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

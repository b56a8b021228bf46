package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	ServerPort int
	APIPrefix  string
	LogLevel   string
	DBConfig   DatabaseConfig
	SSE        SSEConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type     string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// SSEConfig holds the live update stream settings
type SSEConfig struct {
	// TickInterval is the wait between two polls of a stream session
	TickInterval time.Duration
	// HeartbeatInterval is the period of keep-alive comments, 0 disables them
	HeartbeatInterval time.Duration
	// RetryMillis is advertised to EventSource clients as the reconnect delay
	RetryMillis int
}

// LoadConfig loads the configuration from a .env file (if present) and
// environment variables. Variables already set in the environment win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	tick, err := time.ParseDuration(getEnv("SSE_TICK_INTERVAL", "500ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid SSE_TICK_INTERVAL: %w", err)
	}
	if tick <= 0 {
		return nil, fmt.Errorf("invalid SSE_TICK_INTERVAL: must be positive, got %s", tick)
	}
	heartbeat, err := time.ParseDuration(getEnv("SSE_HEARTBEAT_INTERVAL", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SSE_HEARTBEAT_INTERVAL: %w", err)
	}
	retry, err := strconv.Atoi(getEnv("SSE_RETRY_MS", "3000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SSE_RETRY_MS: %w", err)
	}

	return &Config{
		ServerPort: port,
		APIPrefix:  getEnv("API_PREFIX", "/api"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		DBConfig: DatabaseConfig{
			Type:     getEnv("DB_TYPE", "memory"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "pokertrack"),
		},
		SSE: SSEConfig{
			TickInterval:      tick,
			HeartbeatInterval: heartbeat,
			RetryMillis:       retry,
		},
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

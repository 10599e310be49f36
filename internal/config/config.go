package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/dataset"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	LogLevel       string
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64

	Source         dataset.SourceConfig
	MaxRows        int
	VocabularyFile string
	ReloadSchedule string
	AuthEnabled    bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "5000"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Source:         dataset.LoadSourceConfig(),
		VocabularyFile: os.Getenv("VOCABULARY_FILE"),
		ReloadSchedule: os.Getenv("RELOAD_SCHEDULE"),
	}

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	maxRows, err := strconv.Atoi(getEnv("MAX_ROWS", "500000"))
	if err != nil || maxRows < 0 {
		return nil, fmt.Errorf("invalid MAX_ROWS %q", os.Getenv("MAX_ROWS"))
	}
	config.MaxRows = maxRows

	authEnabled, err := strconv.ParseBool(getEnv("AUTH_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_ENABLED: %w", err)
	}
	config.AuthEnabled = authEnabled

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 4096

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Package configs provides application configuration loaded from
// environment variables. A local .env file is honored when present.
package configs

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all application configuration. Load it once at
// startup using AppLoad().
type AppConfig struct {
	// Symbol is the exchange trading pair the dashboard tracks.
	Symbol string

	// RESTBaseURL is the exchange REST endpoint.
	RESTBaseURL string

	// WSBaseURL is the exchange WebSocket endpoint.
	WSBaseURL string

	// PricePollEvery is the cadence of the live price readout poll.
	PricePollEvery time.Duration

	// StatsPollEvery is the cadence of the 24h change poll.
	StatsPollEvery time.Duration

	// LogLevel is the slog level (debug, info, warn, error).
	LogLevel slog.Level
}

// AppLoad loads all application configuration from environment
// variables. It attempts to load a .env file first (for local
// development). Call this once at application startup.
func AppLoad() *AppConfig {
	_ = godotenv.Load() // .env is optional

	return &AppConfig{
		Symbol:         getEnv("COINBOARD_SYMBOL", "BTCUSDT"),
		RESTBaseURL:    getEnv("COINBOARD_REST_URL", ""),
		WSBaseURL:      getEnv("COINBOARD_WS_URL", ""),
		PricePollEvery: time.Duration(getEnvInt("COINBOARD_PRICE_POLL_SECONDS", 1)) * time.Second,
		StatsPollEvery: time.Duration(getEnvInt("COINBOARD_STATS_POLL_SECONDS", 10)) * time.Second,
		LogLevel:       parseLevel(getEnv("COINBOARD_LOG_LEVEL", "info")),
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the environment configuration of the curve service and
// CLI. Values come from the environment, optionally seeded from a .env
// file; a missing .env is fine.
type Config struct {
	Env      string // development, staging, production
	HTTPPort string

	// DatabaseURL enables the Postgres quote store when set.
	DatabaseURL string

	// Quote feed polled by the service. Empty disables polling.
	QuoteSourceURL string
	QuoteSourceRPS int

	// Files the service calibrates from when no feed or store is wired.
	GroupFile string
	QuoteFile string

	// CalibrationSpec is the cron spec of the scheduled recalibration.
	CalibrationSpec  string
	SchedulerEnabled bool

	LogLevel  string
	LogFormat string

	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		HTTPPort: getEnv("HTTP_PORT", "8085"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		QuoteSourceURL: getEnv("QUOTE_SOURCE_URL", ""),
		QuoteSourceRPS: getEnvAsInt("QUOTE_SOURCE_RPS", 1),

		GroupFile: getEnv("GROUP_FILE", ""),
		QuoteFile: getEnv("QUOTE_FILE", ""),

		CalibrationSpec:  getEnv("CALIBRATION_SPEC", "0 18 * * MON-FRI"),
		SchedulerEnabled: getEnvAsBool("SCHEDULER_ENABLED", true),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", "15s"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch c.Env {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	if c.QuoteSourceRPS <= 0 {
		return fmt.Errorf("QUOTE_SOURCE_RPS must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

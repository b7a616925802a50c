// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/rezonia/rechnung/internal/logger"
)

// Config holds the serve-mode runtime configuration.
type Config struct {
	// HTTP server
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool

	// Document service
	DocumentServiceURL     string
	DocumentServiceTimeout time.Duration

	// Creation behavior
	HeaderCompensation bool

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Address:                getEnv("RECHNUNG_ADDRESS", ":8080"),
		ReadTimeout:            getEnvDuration("RECHNUNG_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:           getEnvDuration("RECHNUNG_WRITE_TIMEOUT", 30*time.Second),
		Debug:                  getEnvBool("RECHNUNG_DEBUG", false),
		DocumentServiceURL:     getEnv("RECHNUNG_DOCUMENT_SERVICE_URL", ""),
		DocumentServiceTimeout: getEnvDuration("RECHNUNG_DOCUMENT_SERVICE_TIMEOUT", 30*time.Second),
		HeaderCompensation:     getEnvBool("RECHNUNG_HEADER_COMPENSATION", false),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:          getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:              getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Address == "" {
		return fmt.Errorf("RECHNUNG_ADDRESS is required")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

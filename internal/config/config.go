// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir           string // Directory for the cache database (always absolute)
	Port              int
	DevMode           bool
	LogLevel          string
	FiscalDataBaseURL string // Empty = public Treasury FiscalData API
	IssuedSince       string // YYYY-MM-DD lower bound for auction fetches
	RefreshSchedule   string // Cron expression for the cache refresh job
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("TBILLS_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:           absDataDir,
		Port:              getEnvAsInt("TBILLS_PORT", 8080),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		FiscalDataBaseURL: getEnv("FISCALDATA_BASE_URL", ""),
		IssuedSince:       getEnv("TBILLS_ISSUED_SINCE", "2022-01-01"),
		RefreshSchedule:   getEnv("TBILLS_REFRESH_SCHEDULE", "@daily"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if _, err := time.Parse("2006-01-02", c.IssuedSince); err != nil {
		return fmt.Errorf("TBILLS_ISSUED_SINCE must be YYYY-MM-DD: %w", err)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("TBILLS_PORT out of range: %d", c.Port)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port              string
	AccountsAPIURL    string
	PredictionAPIURL  string
	RequestTimeout    time.Duration
	PageSize          int
	RemindersPageSize int
	LogLevel          string
}

// New loads configuration from environment variables
func New() (*Config, error) {
	pageSize, err := getEnvInt("PAGE_SIZE", 3)
	if err != nil {
		return nil, err
	}
	remindersPageSize, err := getEnvInt("REMINDERS_PAGE_SIZE", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		AccountsAPIURL:    getEnv("ACCOUNTS_API_URL", "http://127.0.0.1:8080"),
		PredictionAPIURL:  getEnv("PREDICTION_API_URL", "http://127.0.0.1:5000"),
		RequestTimeout:    5 * time.Second,
		PageSize:          pageSize,
		RemindersPageSize: remindersPageSize,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("PAGE_SIZE must be at least 1")
	}
	if cfg.RemindersPageSize < 1 {
		return nil, fmt.Errorf("REMINDERS_PAGE_SIZE must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

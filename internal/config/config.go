// Package config provides configuration management for memview.
// It loads settings from environment variables with the MEMVIEW_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration settings for the memview application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Security SecurityConfig
	User     UserConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 6464)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains database and storage configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine type: sqlite, postgres (default: sqlite)
	DataPath      string // Path to data directory (default: ./data)
	PostgresDSN   string // PostgreSQL connection string (postgres engine only)
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode    string  // Security mode: development, production (default: development)
	APIToken        string  // API authentication token (required in production)
	RateLimitPerSec float64 // Requests per second per server (default: 10)
	RateLimitBurst  int     // Rate limit burst size (default: 20)
}

// UserConfig contains the identity the server session runs as.
type UserConfig struct {
	// UserID is the identity whose collection the live view serves.
	// Env var: MEMVIEW_USER_ID
	UserID string
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the MEMVIEW_ prefix.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("MEMVIEW_PORT", 6464),
			Host: getEnv("MEMVIEW_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("MEMVIEW_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("MEMVIEW_DATA_PATH", "./data"),
			PostgresDSN:   getEnv("MEMVIEW_POSTGRES_DSN", ""),
		},
		Security: SecurityConfig{
			SecurityMode:    getEnv("MEMVIEW_SECURITY_MODE", "development"),
			APIToken:        getEnv("MEMVIEW_API_TOKEN", ""),
			RateLimitPerSec: getEnvFloat("MEMVIEW_RATE_LIMIT_PER_SEC", 10.0),
			RateLimitBurst:  getEnvInt("MEMVIEW_RATE_LIMIT_BURST", 20),
		},
		User: UserConfig{
			UserID: getEnv("MEMVIEW_USER_ID", "local"),
		},
	}, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

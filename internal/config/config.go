package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gotally/internal/errors"
)

// Blob backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Storage StorageConfig
	Server  ServerConfig
	Data    DataConfig
	Log     LogConfig
}

// StorageConfig selects and configures the blob store
type StorageConfig struct {
	Backend     string
	SaveDir     string
	SQLitePath  string
	DatabaseURL string
	Compression bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds data processing settings
type DataConfig struct {
	CoercionPolicy string
	DefaultSheet   string
	PreviewRows    int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Storage: *loadStorageConfig(),
		Server:  *loadServerConfig(),
		Data:    *loadDataConfig(),
		Log:     LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadStorageConfig() *StorageConfig {
	saveDir := getEnvOrDefault("SAVE_DIR", "saved_data")
	return &StorageConfig{
		Backend:     strings.ToLower(getEnvOrDefault("BLOB_BACKEND", BackendFile)),
		SaveDir:     saveDir,
		SQLitePath:  getEnvOrDefault("SQLITE_PATH", saveDir+"/gotally.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Compression: getEnvBoolOrDefault("BLOB_COMPRESSION", true),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		CoercionPolicy: getEnvOrDefault("COERCION_POLICY", "zero_fill"),
		DefaultSheet:   os.Getenv("DEFAULT_SHEET"),
		PreviewRows:    getEnvIntOrDefault("PREVIEW_ROWS", 5),
	}
}

// Validate checks field combinations
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.SaveDir == "" {
			return errors.ConfigInvalid("SAVE_DIR is required for the file backend")
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.ConfigInvalid("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres backend")
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("invalid BLOB_BACKEND %q: must be one of file, sqlite, postgres", c.Storage.Backend))
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return errors.ConfigInvalid(fmt.Sprintf("invalid PORT %q: must be a number between 1 and 65535", c.Server.Port))
	}

	switch c.Data.CoercionPolicy {
	case "zero_fill", "lenient":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("invalid COERCION_POLICY %q: must be zero_fill or lenient", c.Data.CoercionPolicy))
	}

	if c.Data.PreviewRows < 0 {
		return errors.ConfigInvalid("PREVIEW_ROWS cannot be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

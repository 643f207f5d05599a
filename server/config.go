package server

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Learning store kinds accepted by the configuration.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds the service configuration. Values come from an optional
// YAML file, overridden by environment variables.
type Config struct {
	Addr           string   `yaml:"addr"`
	LearningStore  string   `yaml:"learning_store"`
	LearningPath   string   `yaml:"learning_path"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:           ":8080",
		LearningStore:  StoreFile,
		LearningPath:   "",
		AllowedOrigins: []string{"*"},
		MaxBodyBytes:   32 << 20,
	}
}

// LoadConfig reads the YAML file at path (when non-empty) and applies
// environment overrides: BOM_ADDR, BOM_LEARNING_STORE, BOM_LEARNING_PATH
// and BOM_MAX_BODY_BYTES.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Addr = getEnv("BOM_ADDR", cfg.Addr)
	cfg.LearningStore = getEnv("BOM_LEARNING_STORE", cfg.LearningStore)
	cfg.LearningPath = getEnv("BOM_LEARNING_PATH", cfg.LearningPath)
	cfg.MaxBodyBytes = getEnvAsInt64("BOM_MAX_BODY_BYTES", cfg.MaxBodyBytes)

	switch cfg.LearningStore {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown learning store %q", cfg.LearningStore)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

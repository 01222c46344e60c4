// Package config loads and validates environment-based configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	DBDriver string // postgres (default), sqlite or memory
	DBDSN    string // Required unless DBDriver is memory.
	Port     int

	RequestTimeout time.Duration

	// Rate limit on route creation, in requests per second shared by all
	// clients. Zero disables the limit.
	CreateRateLimit float64
	CreateRateBurst int
}

// Load reads and validates environment variables.
// Returns a ConfigError for any missing or invalid value.
func Load() (*Config, error) {
	cfg := &Config{
		DBDriver:       os.Getenv("DB_DRIVER"),
		DBDSN:          os.Getenv("DB_DSN"),
		RequestTimeout: parseDurationEnv("REQUEST_TIMEOUT", 10*time.Second),
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = DriverPostgres
	}

	port, err := parseIntEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	cfg.CreateRateBurst, err = parseIntEnv("CREATE_RATE_BURST", 10)
	if err != nil {
		return nil, err
	}

	cfg.CreateRateLimit = 5
	if raw := os.Getenv("CREATE_RATE_LIMIT"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &ConfigError{Field: "CREATE_RATE_LIMIT", Message: "must be a number"}
		}
		cfg.CreateRateLimit = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate re-checks fields on an already-constructed Config.
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
		if c.DBDSN == "" {
			errs = append(errs, &ConfigError{Field: "DB_DSN", Message: "required for driver " + c.DBDriver})
		}
	case DriverMemory:
	default:
		errs = append(errs, &ConfigError{Field: "DB_DRIVER", Message: "must be one of postgres, sqlite, memory"})
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, &ConfigError{Field: "PORT", Message: "must be between 1 and 65535"})
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, &ConfigError{Field: "REQUEST_TIMEOUT", Message: "must be positive"})
	}
	if c.CreateRateLimit < 0 {
		errs = append(errs, &ConfigError{Field: "CREATE_RATE_LIMIT", Message: "cannot be negative"})
	}
	if c.CreateRateLimit > 0 && c.CreateRateBurst < 1 {
		errs = append(errs, &ConfigError{Field: "CREATE_RATE_BURST", Message: "must be at least 1 when rate limiting is on"})
	}
	return errors.Join(errs...)
}

// parseIntEnv reads an integer environment variable, using defaultVal when
// it is unset.
func parseIntEnv(key string, defaultVal int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be a valid integer"}
	}
	return v, nil
}

// parseDurationEnv reads a duration from an environment variable.
// Falls back to defaultVal if the variable is unset or unparseable.
// Accepts Go duration strings like "500ms", "10s", "1m".
func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultVal
	}
	return d
}

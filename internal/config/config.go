package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Directory adapter modes selectable at wiring time.
const (
	ModeMemory   = "memory"
	ModePostgres = "postgres"
	ModeRemote   = "remote"
)

// Config holds all application configuration loaded from environment
// variables. It is the single source of truth for runtime parameters.
type Config struct {
	Port  string
	Env   string
	Debug bool

	// Mode selects the directory adapter backing the service: the seeded
	// in-memory engine, the Postgres store, or a remote upstream.
	Mode string

	// APIBaseURL is the upstream base URL for remote mode.
	APIBaseURL string

	// RequestTimeout bounds each remote request.
	RequestTimeout time.Duration

	// MockLatency is the simulated per-operation delay of the in-memory
	// engine.
	MockLatency time.Duration

	// RefreshInterval drives the background bus refresh worker; zero
	// disables it.
	RefreshInterval time.Duration

	DB    DatabaseConfig
	Redis RedisConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters. An empty Host disables
// the product cache.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Load reads configuration from environment variables. If a .env file
// exists in the working directory, it will be loaded first. It returns a
// populated Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that
	// production environments relying solely on real environment variables
	// keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.Debug = getEnv("DEBUG", "") == "true"

	// Directory adapter
	cfg.Mode = getEnv("MODE", ModeMemory)
	cfg.APIBaseURL = getEnv("API_BASE_URL", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Durations
	var err error
	if cfg.RequestTimeout, err = parseDurationEnv("REQUEST_TIMEOUT", "10s"); err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	if cfg.MockLatency, err = parseDurationEnv("MOCK_LATENCY", "300ms"); err != nil {
		return nil, fmt.Errorf("invalid MOCK_LATENCY: %w", err)
	}
	if cfg.RefreshInterval, err = parseDurationEnv("REFRESH_INTERVAL", "0s"); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}

	switch cfg.Mode {
	case ModeMemory:
	case ModePostgres:
		if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
			return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
		}
	case ModeRemote:
		if cfg.APIBaseURL == "" {
			return nil, errors.New("API_BASE_URL must be set for remote mode")
		}
	default:
		return nil, fmt.Errorf("invalid MODE %q: must be memory, postgres, or remote", cfg.Mode)
	}

	return cfg, nil
}

// RedisEnabled reports whether a Redis host is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a
// default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as
// time.Duration. If the variable is empty, it falls back to the provided
// default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

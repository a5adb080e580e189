package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/joho/godotenv"
)

// Weight store drivers.
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Weight store
	WeightStore string
	WeightsPath string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string
	RedisKey    string

	// Store circuit breaker
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	// Events
	RabbitMQURL string

	// Ranking
	DefaultStrategy string
	SuggestLimit    int
	Holidays        []string

	// HTTP API
	HTTPAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from the environment, reading a .env file in
// the working directory first when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

// LoadFile loads configuration from an explicit .env file, then the
// environment. Variables already set in the environment win.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		AppEnv:    getEnv("TRIAGE_ENV", "development"),
		LogLevel:  getEnv("TRIAGE_LOG_LEVEL", "info"),
		LogFormat: getEnv("TRIAGE_LOG_FORMAT", "text"),

		WeightStore: strings.ToLower(getEnv("TRIAGE_WEIGHT_STORE", StoreFile)),
		WeightsPath: getEnv("TRIAGE_WEIGHTS_PATH", "scoring_config.json"),
		SQLitePath:  getEnv("TRIAGE_SQLITE_PATH", "triage.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisKey:    getEnv("TRIAGE_REDIS_KEY", "triage:weights"),

		BreakerFailures: uint32(getIntEnv("TRIAGE_BREAKER_FAILURES", 3)),
		BreakerTimeout:  getDurationEnv("TRIAGE_BREAKER_TIMEOUT", 30*time.Second),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		DefaultStrategy: getEnv("TRIAGE_DEFAULT_STRATEGY", "smart_balance"),
		SuggestLimit:    getIntEnv("TRIAGE_SUGGEST_LIMIT", 3),
		Holidays:        getListEnv("TRIAGE_HOLIDAYS", append([]string(nil), domain.DefaultHolidays...)),

		HTTPAddr: getEnv("TRIAGE_HTTP_ADDR", "0.0.0.0:8080"),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail later at wiring.
func (c *Config) Validate() error {
	switch c.WeightStore {
	case StoreFile, StoreSQLite, StoreRedis, StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s weight store", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown weight store %q", c.WeightStore)
	}
	if c.SuggestLimit <= 0 {
		return fmt.Errorf("TRIAGE_SUGGEST_LIMIT must be positive, got %d", c.SuggestLimit)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated value. An explicitly empty list is
// expressed as "-".
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if value == "-" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

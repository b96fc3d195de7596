package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the client core.
// Values come from the environment; a .env file in the working directory is
// loaded first when present.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Backend  BackendConfig
	Session  SessionConfig
	Cart     CartConfig
	Currency CurrencyConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type AuthConfig struct {
	APIKeys []string // Keys accepted by the local shell
}

// BackendConfig describes the remote REST backend.
type BackendConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// SessionConfig selects where the bearer token lives.
type SessionConfig struct {
	Store    string // "memory" or "redis"
	RedisURL string
	TokenKey string
}

// CartConfig controls cart snapshot persistence.
type CartConfig struct {
	Persist  bool
	OwnerKey string
	TTL      time.Duration
}

type CurrencyConfig struct {
	Code  string
	Scale int32 // decimal places of the smallest unit
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "127.0.0.1"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Auth: AuthConfig{
			APIKeys: getEnvAsSlice("API_KEYS", []string{"apitest"}),
		},
		Backend: BackendConfig{
			BaseURL:           strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:8081/api/v1"), "/"),
			Timeout:           getEnvAsDuration("BACKEND_TIMEOUT", 20*time.Second),
			RequestsPerSecond: getEnvAsFloat("BACKEND_RPS", 10),
			Burst:             getEnvAsInt("BACKEND_BURST", 5),
		},
		Session: SessionConfig{
			Store:    strings.ToLower(getEnv("SESSION_STORE", "memory")),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
			TokenKey: getEnv("SESSION_TOKEN_KEY", "accessToken"),
		},
		Cart: CartConfig{
			Persist:  getEnvAsBool("CART_PERSIST", false),
			OwnerKey: getEnv("CART_OWNER_KEY", "device"),
			TTL:      getEnvAsDuration("CART_TTL", 7*24*time.Hour),
		},
		Currency: CurrencyConfig{
			Code:  getEnv("CURRENCY", "VND"),
			Scale: int32(getEnvAsInt("CURRENCY_SCALE", 0)),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("at least one API key must be configured")
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid BACKEND_BASE_URL: %q", c.Backend.BaseURL)
	}

	if c.Backend.RequestsPerSecond <= 0 {
		return fmt.Errorf("BACKEND_RPS must be positive")
	}

	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("invalid session store: %s (must be memory or redis)", c.Session.Store)
	}

	if c.Cart.Persist && c.Session.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when CART_PERSIST is enabled")
	}

	if c.Currency.Scale < 0 || c.Currency.Scale > 4 {
		return fmt.Errorf("CURRENCY_SCALE must be between 0 and 4")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Session.Store == "redis" || c.Cart.Persist
}

// Helper functions for reading environment variables

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultModel is used when OPENAI_MODEL is not set.
const DefaultModel = "gpt-4o-mini"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	OpenAI    OpenAIConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host                  string
	Port                  int
	RequestTimeout        time.Duration
	MaxConcurrentAnalyses int
	AllowedOrigins        []string
}

// OpenAIConfig holds the model identifier and credential shared by every pipeline run.
// It is loaded once at startup and never mutated.
type OpenAIConfig struct {
	APIKey             string
	Model              string
	BaseURL            string
	TranscriptionModel string
	Timeout            time.Duration
	MaxRetries         int
	RateLimitRPM       int
	RateLimitBurst     int
}

// Configured reports whether a model credential is available.
func (c OpenAIConfig) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// RateLimitConfig holds per-client limits for the model-backed endpoints
type RateLimitConfig struct {
	RequestsPerMinute int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
	Env   string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:                  getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                  getEnvAsInt("SERVER_PORT", 8000),
			RequestTimeout:        getEnvAsDuration("REQUEST_TIMEOUT", 120*time.Second),
			MaxConcurrentAnalyses: getEnvAsInt("MAX_CONCURRENT_ANALYSES", 16),
			AllowedOrigins:        getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:8501", "http://localhost:5173"}),
		},
		OpenAI: OpenAIConfig{
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			Model:              getEnv("OPENAI_MODEL", DefaultModel),
			BaseURL:            getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			TranscriptionModel: getEnv("OPENAI_TRANSCRIPTION_MODEL", "whisper-1"),
			Timeout:            getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
			MaxRetries:         getEnvAsInt("OPENAI_MAX_RETRIES", 2),
			RateLimitRPM:       getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 0),
			RateLimitBurst:     getEnvAsInt("OPENAI_RATE_LIMIT_BURST", 0),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 30),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Env:   getEnv("APP_ENV", "production"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "care-navigator"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "0.1.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid SERVER_PORT %d", cfg.Server.Port)
	}
	if cfg.Server.MaxConcurrentAnalyses <= 0 {
		return nil, fmt.Errorf("MAX_CONCURRENT_ANALYSES must be positive, got %d", cfg.Server.MaxConcurrentAnalyses)
	}

	return cfg, nil
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

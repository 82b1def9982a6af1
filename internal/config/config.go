package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Backend API transport
	APIBaseURL      string
	APIToken        string
	APITimeout      time.Duration
	APIMaxRetries   int
	APIRetryBackoff time.Duration
	UserAgent       string

	// BatchConcurrency bounds concurrent fetches in GetByIDs calls. Zero means unbounded.
	BatchConcurrency int

	// Chat endpoint discovery
	ChatEndpoints []string
	ChatSessionID string
	ChatPinTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	MetricsEnabled bool

	// Local mock backend
	MockAPIPort        string
	MockAPIRateLimit   float64
	MockAPIRateBurst   int
	MockAPICORSOrigins []string
	// MockAPIJWTSecret turns on HMAC bearer validation in the mock backend.
	MockAPIJWTSecret string
}

// DefaultChatEndpoints lists the chat base paths the backend has exposed over time.
var DefaultChatEndpoints = []string{
	"/api/v1/chat",
	"/api/v1/chats",
	"/api/v1/messages",
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIBaseURL:      getEnv("PORTAL_API_BASE_URL", "http://localhost:8080"),
		APIToken:        getEnv("PORTAL_API_TOKEN", ""),
		APITimeout:      getEnvAsDuration("PORTAL_API_TIMEOUT", 15*time.Second),
		APIMaxRetries:   getEnvAsInt("PORTAL_API_MAX_RETRIES", 0),
		APIRetryBackoff: getEnvAsDuration("PORTAL_API_RETRY_BACKOFF", 250*time.Millisecond),
		UserAgent:       getEnv("PORTAL_USER_AGENT", "medcare-portal/0.1"),

		BatchConcurrency: getEnvAsInt("BATCH_CONCURRENCY", 0),

		ChatEndpoints: getEnvAsList("CHAT_ENDPOINTS", DefaultChatEndpoints),
		ChatSessionID: getEnv("CHAT_SESSION_ID", "default"),
		ChatPinTTL:    getEnvAsDuration("CHAT_PIN_TTL", 12*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),

		MockAPIPort:        getEnv("MOCK_API_PORT", "8080"),
		MockAPIRateLimit:   getEnvAsFloat("MOCK_API_RATE_LIMIT", 0),
		MockAPIRateBurst:   getEnvAsInt("MOCK_API_RATE_BURST", 20),
		MockAPICORSOrigins: getEnvAsList("MOCK_API_CORS_ORIGINS", nil),
		MockAPIJWTSecret:   getEnv("MOCK_API_JWT_SECRET", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if strings.TrimSpace(valueStr) == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}

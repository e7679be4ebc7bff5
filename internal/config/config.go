package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// APIKey is the generative AI credential. When empty every outbound call
	// short-circuits with a user-facing message instead of failing.
	APIKey            string
	GeminiBaseURL     string
	ChatModel         string
	SearchModel       string
	ChatTemperature   float32
	ChatMaxTokens     int32
	ChatActionLock    time.Duration
	DefaultLocation   string
	AnchorLatitude    float64
	AnchorLongitude   float64
	SeedLeads         bool
	CORSAllowedOrigin []string

	RateLimitRPS   float64
	RateLimitBurst int
	RedisAddr      string
	RedisPassword  string
	RedisTLS       bool

	// Bedrock fallback for the chat agent (optional)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	BedrockModelID      string
}

// Load reads configuration from environment variables
func Load() *Config {
	apiKey := getEnv("API_KEY", "")
	if apiKey == "" {
		apiKey = getEnv("GEMINI_API_KEY", "")
	}
	return &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		APIKey:            strings.TrimSpace(apiKey),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		ChatModel:         getEnv("GEMINI_CHAT_MODEL", "gemini-3-flash-preview"),
		SearchModel:       getEnv("GEMINI_SEARCH_MODEL", "gemini-2.5-flash"),
		ChatTemperature:   float32(getEnvAsFloat("CHAT_TEMPERATURE", 0.4)),
		ChatMaxTokens:     int32(getEnvAsInt("CHAT_MAX_OUTPUT_TOKENS", 1000)),
		ChatActionLock:    getEnvAsDuration("CHAT_ACTION_LOCK", 300*time.Millisecond),
		DefaultLocation:   getEnv("PROSPECT_DEFAULT_LOCATION", "São Paulo"),
		AnchorLatitude:    getEnvAsFloat("PROSPECT_ANCHOR_LAT", -23.5505),
		AnchorLongitude:   getEnvAsFloat("PROSPECT_ANCHOR_LNG", -46.6333),
		SeedLeads:         getEnvAsBool("SEED_LEADS", true),
		CORSAllowedOrigin: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),
	}
}

// HasAPIKey reports whether the generative AI credential is configured.
func (c *Config) HasAPIKey() bool {
	return c != nil && c.APIKey != ""
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

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

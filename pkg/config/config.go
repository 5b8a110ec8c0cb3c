package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	API       APIConfig
	Redis     RedisConfig
	Reconcile ReconcileConfig
	Receipt   ReceiptConfig
}

type APIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	Enabled  bool
}

type ReconcileConfig struct {
	ReferenceCurrency string
	RateTTL           time.Duration
}

type ReceiptConfig struct {
	// Format selects the upload encoding: "jpeg" or "png".
	Format      string
	JPEGQuality int
}

func Load() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:8080/api/v1"),
			Token:   getEnv("API_TOKEN", ""),
			Timeout: getDurationEnv("API_TIMEOUT", 15*time.Second),
		},
		Redis: RedisConfig{
			URL:      normalizeRedisURL(getEnv("REDIS_URL", "localhost:6379")),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
		},
		Reconcile: ReconcileConfig{
			ReferenceCurrency: getEnv("REFERENCE_CURRENCY", "USD"),
			RateTTL:           getDurationEnv("RATE_CACHE_TTL", 15*time.Minute),
		},
		Receipt: ReceiptConfig{
			Format:      getEnv("RECEIPT_FORMAT", "jpeg"),
			JPEGQuality: getIntEnv("RECEIPT_JPEG_QUALITY", 85),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func normalizeRedisURL(url string) string {
	// Strip redis:// or redis+tls:// scheme if present
	if strings.HasPrefix(url, "redis+tls://") {
		return url[len("redis+tls://"):]
	}
	if strings.HasPrefix(url, "redis://") {
		return url[len("redis://"):]
	}
	return url
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment          string
	ServerPort           int
	RedisURL             string
	DatabaseHost         string
	DatabasePort         int
	DatabaseUser         string
	DatabasePassword     string
	DatabaseName         string
	DatabaseSSLMode      string
	JWTSecret            string
	TokenTTL             time.Duration
	LogLevel             string
	OTLPEndpoint         string
	CORSAllowedOrigins   []string
	AllowPublicAdmin     bool
	AllowPublicClinician bool
	RateLimitRequests    int
	RateLimitWindow      time.Duration
	FlagCacheTTL         time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	tokenTTLHours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS: %w", err)
	}

	rateLimitRequests, err := strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
	}

	rateLimitWindowSec, err := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW_SECONDS: %w", err)
	}

	flagCacheTTLSec, err := strconv.Atoi(getEnv("FLAG_CACHE_TTL_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid FLAG_CACHE_TTL_SECONDS: %w", err)
	}

	return &Config{
		Environment:          getEnv("ENVIRONMENT", "development"),
		ServerPort:           port,
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379"),
		DatabaseHost:         getEnv("DB_HOST", "localhost"),
		DatabasePort:         dbPort,
		DatabaseUser:         getEnv("DB_USER", "mindsync"),
		DatabasePassword:     getEnv("DB_PASSWORD", "dev"),
		DatabaseName:         getEnv("DB_NAME", "mindsync"),
		DatabaseSSLMode:      getEnv("DB_SSLMODE", "disable"),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		TokenTTL:             time.Duration(tokenTTLHours) * time.Hour,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		OTLPEndpoint:         getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		CORSAllowedOrigins:   parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		AllowPublicAdmin:     isTrue(getEnv("ALLOW_PUBLIC_ADMIN", "false")),
		AllowPublicClinician: isTrue(getEnv("ALLOW_PUBLIC_CLINICIAN", "false")),
		RateLimitRequests:    rateLimitRequests,
		RateLimitWindow:      time.Duration(rateLimitWindowSec) * time.Second,
		FlagCacheTTL:         time.Duration(flagCacheTTLSec) * time.Second,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func isTrue(value string) bool {
	return strings.ToLower(strings.TrimSpace(value)) == "true"
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

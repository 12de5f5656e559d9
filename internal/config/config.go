package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	LogFormat     string
	ClientOrigins []string
	DatabaseURL   string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	SharedCalendarID   string
	AdminEmails        []string

	SessionSecret string
	SessionTTL    time.Duration

	RateLimitPerSec float64
	RateLimitBurst  int

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "4000"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		ClientOrigins: getEnvAsList("CLIENT_ORIGIN", "http://localhost:5173"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:4000/oauth2callback"),
		SharedCalendarID:   getEnv("SHARED_CALENDAR_ID", "primary"),
		AdminEmails:        getEnvAsList("ADMIN_EMAILS", ""),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),

		RateLimitPerSec: getEnvAsFloat("RATE_LIMIT_PER_SEC", 10),
		RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 20),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Dental Clinic"),
	}
}

// IsProduction reports whether the server runs with production settings
// (secure cookies, strict origins).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// FrontendURL returns the primary client origin, used for post-OAuth redirects.
func (c *Config) FrontendURL() string {
	if len(c.ClientOrigins) > 0 {
		return c.ClientOrigins[0]
	}
	return "http://localhost:5173"
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

// getEnvAsList splits a comma-separated environment variable, dropping empty entries.
func getEnvAsList(key, defaultValue string) []string {
	valueStr := getEnv(key, defaultValue)
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	Port              string
	DatabaseURL       string // Event store (PostgreSQL or MySQL)
	Version           string
	LogLevel          string
	DefaultSpendLimit float64       // Monthly AI spend limit used when a project has none
	SyntheticFallback bool          // Serve illustrative data when a window has no conversations
	FetchTimeout      time.Duration // Timeout for each event store read
	FetchRetries      int           // Retries for transient event store failures
	SendGridAPIKey    string        // SendGrid API key for budget alert emails
	AlertEmail        string        // Recipient of budget alert emails
	AlertFromEmail    string        // Sender of budget alert emails
	APITokens         []string      // Bearer tokens accepted on project routes; empty disables auth
	RedisURL          string        // Shared alert ledger across replicas; empty keeps it in memory
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Version:           getEnv("VERSION", "1.0.0"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DefaultSpendLimit: getEnvFloat("DEFAULT_SPEND_LIMIT", 50),
		SyntheticFallback: getEnvBool("SYNTHETIC_FALLBACK", false),
		FetchTimeout:      time.Duration(getEnvInt("FETCH_TIMEOUT", 30)) * time.Second,
		FetchRetries:      getEnvInt("FETCH_RETRIES", 2),
		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		AlertEmail:        os.Getenv("ALERT_EMAIL"),
		AlertFromEmail:    getEnv("ALERT_FROM_EMAIL", "noreply@botusage.dev"),
		APITokens:         getEnvList("API_TOKENS"),
		RedisURL:          os.Getenv("REDIS_URL"),
	}
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a non-negative float environment variable with a default fallback
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 {
			return f
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as boolean with a default fallback
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated environment variable, dropping empty items
func getEnvList(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "botusage").
		Str("version", c.Version).
		Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

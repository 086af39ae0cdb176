// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Pricing preset names.
const (
	PricingPresetStandard = "standard"
	PricingPresetPremium  = "premium"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion       string
	InventoryBucket string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTLSecs  int

	// SES
	SESSenderEmail   string
	LeadAlertEmail   string
	DashboardBaseURL string

	// Pricing. Overrides are read once here and never at call time.
	PricingPreset          string
	PriceMarkupOverride    float64
	PriceMinProfitOverride float64

	// Lead scoring
	StaleApplicationDays int

	// Observability
	SentryDSN        string
	SentrySampleRate float64

	// Application
	Port     string
	Stage    string
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// AWS
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		InventoryBucket: getEnv("S3_BUCKET", getEnv("INVENTORY_BUCKET", "trailer-inventory-feeds-dev")),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBName:     getEnv("DB_NAME", "trailer_sales"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTLSecs:  getEnvInt("CACHE_TTL_SECONDS", 900),

		// SES
		SESSenderEmail:   getEnv("SES_SENDER_EMAIL", ""),
		LeadAlertEmail:   getEnv("LEAD_ALERT_EMAIL", ""),
		DashboardBaseURL: getEnv("DASHBOARD_BASE_URL", "http://localhost:3000"),

		// Pricing
		PricingPreset:          strings.ToLower(getEnv("PRICING_PRESET", PricingPresetStandard)),
		PriceMarkupOverride:    getEnvFloat("PRICE_MARKUP", 0),
		PriceMinProfitOverride: getEnvFloat("PRICE_MIN_PROFIT", 0),

		// Lead scoring
		StaleApplicationDays: getEnvInt("STALE_APPLICATION_DAYS", 3),

		// Observability
		SentryDSN:        getEnv("SENTRY_DSN", ""),
		SentrySampleRate: getEnvFloat("SENTRY_SAMPLE_RATE", 1.0),

		// Application
		Port:     getEnv("PORT", "8080"),
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	sslMode := "require"
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable"
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// IsLambda reports whether the process runs inside AWS Lambda.
func (c *Config) IsLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// HasDatabase reports whether a database is configured.
func (c *Config) HasDatabase() bool {
	return os.Getenv("DATABASE_URL") != "" || c.DBPassword != "" || c.DBHost != "localhost"
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as float64 or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

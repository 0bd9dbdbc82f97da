package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // Issuer label shown in authenticator apps

	MongoURI      string // MongoDB connection string
	MongoDatabase string // Database name

	AuthSecret    string // Required: HS256 key shared with the gateway that signs access tokens
	ReceiptSecret string // Required: HS256 key for signing authorization receipts

	DeliveryURL string // Optional: SMS gateway webhook; empty means log-only delivery

	PepperFile string // Path to the file holding the code-hashing pepper (default: ./pepper)

	LowThreshold  float64 // Payment amount (reference currency) below which no step is needed
	HighThreshold float64 // Payment amount at or above which a full challenge is demanded

	TrustDuration time.Duration // Trusted-device exemption window (default: 30 days)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:        getEnvOrDefault("STEPUP_ISSUER", "Eventia"),
		MongoURI:      getEnvOrDefault("STEPUP_MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("STEPUP_MONGO_DATABASE", "stepup"),
		AuthSecret:    os.Getenv("STEPUP_AUTH_SECRET"),
		ReceiptSecret: os.Getenv("STEPUP_RECEIPT_SECRET"),
		DeliveryURL:   os.Getenv("STEPUP_DELIVERY_URL"),
		PepperFile:    getEnvOrDefault("STEPUP_PEPPER_FILE", "pepper"),

		LowThreshold:  getEnvFloatOrDefault("STEPUP_LOW_THRESHOLD", 0),
		HighThreshold: getEnvFloatOrDefault("STEPUP_HIGH_THRESHOLD", 0),
		TrustDuration: getEnvDurationOrDefault("STEPUP_TRUST_DURATION", 0),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
		return floatValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}

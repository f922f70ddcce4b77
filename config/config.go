package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the portal service
type Config struct {
	// Store configuration
	StoreBackend string
	MongoURI     string

	// MySQL configuration (used when StoreBackend is "mysql")
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port string

	// JWT configuration
	JWTSecret string

	// RabbitMQ configuration
	RabbitMQURL      string
	RabbitMQExchange string

	// Agency reference table
	AgencyFile string
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Store defaults
		StoreBackend: getEnv("STORE_BACKEND", "mongo"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),

		// MySQL defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret"),
		DBName:     getEnv("DB_NAME", "publicpulse"),

		// Server defaults
		Port: getEnv("PORT", "8080"),

		// JWT defaults
		JWTSecret: getEnv("JWT_SECRET", ""),

		// RabbitMQ defaults
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "publicpulse.reports"),

		// Agency table defaults
		AgencyFile: getEnv("AGENCY_FILE", "agencies.json"),
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

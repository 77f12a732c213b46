package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the site safety inspection service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port string

	// AI backend configuration
	AIProvider   string
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string

	// Safety manager alert recipient
	SafetyManagerName  string
	SafetyManagerEmail string

	// SendGrid configuration
	SendGridAPIKey    string
	SendGridFromName  string
	SendGridFromEmail string

	// RabbitMQ configuration
	RabbitMQHost       string
	RabbitMQPort       string
	RabbitMQUser       string
	RabbitMQPassword   string
	RabbitMQExchange   string
	RabbitMQRoutingKey string

	// Trend configuration
	HistoryWindow int
	TZOffsetHours int

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret_app"),
		DBName:     getEnv("DB_NAME", "site_safety"),

		// Server defaults
		Port: getEnv("PORT", "8080"),

		// AI backend defaults
		AIProvider:   getEnv("AI_PROVIDER", "openai"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		// Alert recipient defaults
		SafetyManagerName:  getEnv("SAFETY_MANAGER_NAME", "Safety Manager"),
		SafetyManagerEmail: getEnv("SAFETY_MANAGER_EMAIL", ""),

		// SendGrid defaults
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Site Safety Inspection"),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "safety@example.com"),

		// RabbitMQ defaults
		RabbitMQHost:       getEnv("AMQP_HOST", "localhost"),
		RabbitMQPort:       getEnv("AMQP_PORT", "5672"),
		RabbitMQUser:       getEnv("AMQP_USER", "guest"),
		RabbitMQPassword:   getEnv("AMQP_PASSWORD", "guest"),
		RabbitMQExchange:   getEnv("RABBITMQ_EXCHANGE", "inspection_exchange"),
		RabbitMQRoutingKey: getEnv("RABBITMQ_ROUTING_KEY", "inspection.completed"),

		// Trend defaults: moving average over the last 3 inspections,
		// timestamps recorded in UTC+8 (site-local time)
		HistoryWindow: getIntEnv("HISTORY_WINDOW", 3),
		TZOffsetHours: getIntEnv("TZ_OFFSET_HOURS", 8),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return config
}

// GetRabbitMQURL constructs the AMQP URL from individual components
func (c *Config) GetRabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", c.RabbitMQUser, c.RabbitMQPassword, c.RabbitMQHost, c.RabbitMQPort)
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

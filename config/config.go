package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the classification pipeline service
type Config struct {
	// Server configuration
	Port string

	// Model inference service
	InferenceURL     string
	InferenceTimeout time.Duration

	// Redis job queue
	RedisURL  string
	QueueName string

	// MongoDB report store
	MongoURI string
	MongoDB  string

	// Worker configuration
	WorkerEnabled   bool
	ClassifyURL     string
	ClassifyTimeout time.Duration

	// Webhook notification
	WebhookURL     string
	WebhookTimeout time.Duration

	// RabbitMQ event bus (optional)
	AMQPURL      string
	AMQPExchange string

	// Media fetch timeout for image and audio URLs
	FetchTimeout time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Server defaults
		Port: getEnv("PORT", "8000"),

		// Inference defaults
		InferenceURL:     getEnv("INFERENCE_URL", "http://localhost:8500"),
		InferenceTimeout: getDurationEnv("INFERENCE_TIMEOUT", 30*time.Second),

		// Queue defaults
		RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379"),
		QueueName: getEnv("QUEUE_NAME", "ml_classification_queue"),

		// Store defaults
		MongoURI: getEnv("DB_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("DB_NAME", "CivicResponses"),

		// Worker defaults; the worker calls back into the classify API
		WorkerEnabled:   getBoolEnv("WORKER_ENABLED", true),
		ClassifyURL:     getEnv("ML_SERVICE_URL", "http://localhost:8000"),
		ClassifyTimeout: getDurationEnv("CLASSIFY_TIMEOUT", 30*time.Second),

		// Webhook defaults
		WebhookURL:     getEnv("WEBHOOK_URL", "http://localhost:3000/api/v1/reports/ml-webhook"),
		WebhookTimeout: getDurationEnv("WEBHOOK_TIMEOUT", 5*time.Second),

		// Event bus defaults; empty URL disables publishing
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "civicml"),

		// Media fetch defaults
		FetchTimeout: getDurationEnv("FETCH_TIMEOUT", 30*time.Second),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
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

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getBoolEnv gets a boolean environment variable or returns a default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

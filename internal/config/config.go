package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	GinMode       string
	MongoURI      string
	MongoDatabase string
	RabbitMQURI   string
	EventExchange string

	// Text-evaluation collaborator (OpenAI-compatible endpoint).
	EvalBaseURL string
	EvalAPIKey  string
	EvalModel   string
	EvalTimeout time.Duration

	ServiceName    string
	ServiceVersion string
}

var AppConfig *Config

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "debug"),
		MongoURI:       getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnvOrDefault("MONGO_DATABASE", "assessment_service"),
		RabbitMQURI:    getEnvOrDefault("RABBITMQ_URI", ""),
		EventExchange:  getEnvOrDefault("RABBITMQ_EXCHANGE", ""),
		EvalBaseURL:    getEnvOrDefault("EVAL_BASE_URL", "http://localhost:11434/v1"),
		EvalAPIKey:     getEnvOrDefault("EVAL_API_KEY", ""),
		EvalModel:      getEnvOrDefault("EVAL_MODEL", "qwen3:1.7b"),
		EvalTimeout:    time.Duration(getEnvIntOrDefault("EVAL_TIMEOUT_SECONDS", 60)) * time.Second,
		ServiceName:    getEnvOrDefault("SERVICE_NAME", "assessment-service"),
		ServiceVersion: getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

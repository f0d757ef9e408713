package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort      string
	DataDir       string
	JWTSecret     string
	LogLevel      string
	OpenAIModel   string
	OpenAIBaseURL string
	WikipediaLang string
	LLMTimeout    time.Duration
	WikiTimeout   time.Duration
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DataDir:       getEnv("DATA_DIR", "data"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		WikipediaLang: getEnv("WIKIPEDIA_LANG", "es"),
		LLMTimeout:    time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		WikiTimeout:   time.Duration(getEnvAsInt("WIKI_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

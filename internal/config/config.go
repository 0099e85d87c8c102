package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Client side
	APIBaseURL     string
	RequestTimeout time.Duration
	CellWidthPx    int
	LogFile        string
	LogLevel       string

	// Reference service side
	HTTPPort      string
	ServerLogFile string
	DatabaseURL   string
	DataDir       string
	HistoryLimit  int
	GeminiAPIKey  string
}

var AppConfig Config

// LoadConfig reads .env (if present) and the process environment into AppConfig.
// It reports whether a .env file was found so the caller can log it once a logger exists.
func LoadConfig() bool {
	foundDotEnv := godotenv.Load() == nil
	AppConfig = FromEnv()
	return foundDotEnv
}

func FromEnv() Config {
	return Config{
		APIBaseURL:     getEnv("ADVISOR_API_URL", "http://localhost:8000"),
		RequestTimeout: getEnvAsDuration("ADVISOR_REQUEST_TIMEOUT", 2*time.Minute),
		CellWidthPx:    getEnvAsInt("ADVISOR_CELL_WIDTH_PX", 8),
		LogFile:        getEnv("ADVISOR_LOG_FILE", "advisor.log"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),

		HTTPPort:      getEnv("HTTP_PORT", "8000"),
		ServerLogFile: getEnv("SERVER_LOG_FILE", "server.log"),
		DatabaseURL:   getEnv("DATABASE_URL", "advisor.db"),
		DataDir:       getEnv("DATA_DIR", "data"),
		HistoryLimit:  getEnvAsInt("HISTORY_LIMIT", 10),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

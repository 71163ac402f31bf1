package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Search    SearchConfig
	Ai        AIConfig
	Answering AnsweringConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SearchConfig struct {
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
	TopK             int
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	GoogleGeminiKey   string
	OllamaBaseURL     string
	OllamaModel       string // embedding model
	LLMProvider       string // "ollama" or "gemini"
	LLMModel          string // e.g. "llama3", "qwen2.5"
}

// AnsweringConfig carries the tier deadlines and acceptance thresholds.
// The generated-tier deadline runs from the start of the monitoring phase.
type AnsweringConfig struct {
	DocumentTimeout  time.Duration
	MeetingTimeout   time.Duration
	MonitorTimeout   time.Duration
	GeneratedTimeout time.Duration

	DocumentThreshold  float64
	MeetingThreshold   float64
	MonitorThreshold   float64
	GeneratedThreshold float64

	CacheTTL          time.Duration
	CacheMaxEntries   int
	SemanticThreshold float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Search: SearchConfig{
			QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
			QdrantCollection: getEnv("QDRANT_COLLECTION", "org_documents"),
			TopK:             getEnvAsInt("SEARCH_TOP_K", 5),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			GoogleGeminiKey:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
		},
		Answering: AnsweringConfig{
			DocumentTimeout:  getEnvAsDuration("TIER_DOCUMENT_TIMEOUT", 2*time.Second),
			MeetingTimeout:   getEnvAsDuration("TIER_MEETING_TIMEOUT", 1500*time.Millisecond),
			MonitorTimeout:   getEnvAsDuration("TIER_MONITOR_TIMEOUT", 15*time.Second),
			GeneratedTimeout: getEnvAsDuration("TIER_GENERATED_TIMEOUT", 3*time.Second),

			DocumentThreshold:  getEnvAsFloat("TIER_DOCUMENT_THRESHOLD", 0.60),
			MeetingThreshold:   getEnvAsFloat("TIER_MEETING_THRESHOLD", 0.60),
			MonitorThreshold:   getEnvAsFloat("TIER_MONITOR_THRESHOLD", 0.65),
			GeneratedThreshold: getEnvAsFloat("TIER_GENERATED_THRESHOLD", 0.70),

			CacheTTL:          getEnvAsDuration("SEARCH_CACHE_TTL", 10*time.Minute),
			CacheMaxEntries:   getEnvAsInt("SEARCH_CACHE_MAX_ENTRIES", 128),
			SemanticThreshold: getEnvAsFloat("SEARCH_CACHE_SEMANTIC_THRESHOLD", 0.92),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
	Assets    AssetConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	IngestTopic        string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider       string // "openai" or "ollama"
	LLMModel          string
	OpenAIAPIKey      string
	OllamaBaseURL     string
	OllamaModel       string
	EmbeddingProvider string // "openai" or "ollama"
	EmbeddingModel    string
}

type RetrievalConfig struct {
	MaxResults int
	// ContextCacheTTLSeconds bounds how stale a cached user context may be.
	ContextCacheTTLSeconds int
}

type AssetConfig struct {
	// Dir holds the hot-swappable text assets: prompts, keyword
	// dictionaries and canned responses.
	Dir string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8080"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/sommelier.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			IngestTopic:        getEnv("INGEST_TOPIC_NAME", "INGEST_KNOWLEDGE"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_MODEL", "llama3"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Retrieval: RetrievalConfig{
			MaxResults:             getEnvAsInt("RETRIEVAL_MAX_RESULTS", 3),
			ContextCacheTTLSeconds: getEnvAsInt("CONTEXT_CACHE_TTL_SECONDS", 300),
		},
		Assets: AssetConfig{
			Dir: getEnv("ASSETS_DIR", "assets"),
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

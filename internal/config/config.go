package config

import (
	"log"
	"os"
	"strconv"

	"hof-chatbot-be/pkg/vectorstore/pgvector"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Chat     ChatConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI string
	Jina   string
}

type AIConfig struct {
	EmbeddingProvider  string // "openai" or "ollama"
	EmbeddingModel     string
	EmbeddingDimension int
	OllamaBaseURL      string
	LLMProvider        string // "ollama", "openai"
	LLMModel           string
}

type ChatConfig struct {
	SessionStore string // "memory" or "redis"
	TurnTopic    string
	BroadTopK    int
	TopK         int
	RerankTopN   int
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
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
			Jina:   getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			// Defaults match the vector(3072) embedding column; switching
			// provider or model requires re-provisioning the index.
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-3-large"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", pgvector.EmbeddingDim),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:        getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:           getEnv("LLM_MODEL", "qwen2.5"),
		},
		Chat: ChatConfig{
			SessionStore: getEnv("CHAT_SESSION_STORE", "memory"),
			TurnTopic:    getEnv("CHAT_TURN_TOPIC_NAME", "CHAT_TURN_COMPLETED"),
			BroadTopK:    getEnvAsInt("SEARCH_BROAD_TOP_K", 50),
			TopK:         getEnvAsInt("SEARCH_TOP_K", 10),
			RerankTopN:   getEnvAsInt("RERANK_TOP_N", 10),
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

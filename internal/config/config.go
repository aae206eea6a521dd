package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Agent names used by the cmd entrypoints
const (
	SupportAgentName = "SupportDeskAgent"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerPort int
	ServerHost string

	// Agent configuration
	AgentName    string
	AgentVersion string
	AgentURL     string

	// Authentication
	AuthType  string // "jwt" or "apikey"
	JWTSecret string
	APIKey    string

	// LLM configuration
	LLMProvider        string // "groq", "openai", "azure"
	LLMAPIKey          string
	LLMServiceURL      string
	LLMClassifierModel string
	LLMSynthesisModel  string
	LLMEmbeddingModel  string
	LLMMaxTokens       int
	LLMTimeout         int // in seconds
	LLMTemperature     float64

	// Ticket store (Supabase)
	SupabaseURL string
	SupabaseKey string

	// Search index (Qdrant)
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	// Conversation memory (Redis)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MemoryTTL     int // in hours

	// Turn pipeline knobs
	SearchTopK       int
	HistoryDepth     int
	FragmentMaxChars int
	ContextMaxChars  int
}

var v = viper.New()

// init loads environment variables from .env file
func init() {
	// Try to load from project root first, then parent directories
	err := godotenv.Load()
	if err != nil {
		err = godotenv.Load("../.env")
		if err != nil {
			err = godotenv.Load("../../.env")
			if err != nil {
				log.Println("No .env file found or error loading it. Using environment variables or defaults.")
			}
		}
	}

	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "localhost")

	v.SetDefault("AGENT_NAME", SupportAgentName)
	v.SetDefault("AGENT_VERSION", "1.0.0")
	v.SetDefault("AGENT_URL", "http://localhost:8080")

	v.SetDefault("AUTH_TYPE", "apikey")
	v.SetDefault("JWT_SECRET", "your-jwt-secret")
	v.SetDefault("API_KEY", "your-api-key")

	v.SetDefault("LLM_PROVIDER", "groq")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_SERVICE_URL", "")
	v.SetDefault("LLM_CLASSIFIER_MODEL", "llama-3.1-8b-instant")
	v.SetDefault("LLM_SYNTHESIS_MODEL", "llama-3.3-70b-versatile")
	v.SetDefault("LLM_EMBEDDING_MODEL", "text-embedding-3-small")
	v.SetDefault("LLM_MAX_TOKENS", 1024)
	v.SetDefault("LLM_TIMEOUT", 30)
	v.SetDefault("LLM_TEMPERATURE", 0.1)

	v.SetDefault("SUPABASE_URL", "")
	v.SetDefault("SUPABASE_KEY", "")

	v.SetDefault("QDRANT_URL", "")
	v.SetDefault("QDRANT_API_KEY", "")
	v.SetDefault("QDRANT_COLLECTION", "pg_docs")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MEMORY_TTL", 24)

	v.SetDefault("SEARCH_TOP_K", 3)
	v.SetDefault("HISTORY_DEPTH", 5)
	v.SetDefault("FRAGMENT_MAX_CHARS", 500)
	v.SetDefault("CONTEXT_MAX_CHARS", 6000)
}

// GetViper exposes the underlying viper instance so entrypoints can override
// values before building the Config.
func GetViper() *viper.Viper {
	return v
}

// NewConfig creates a new configuration with values from environment variables
func NewConfig() *Config {
	return &Config{
		ServerPort: v.GetInt("SERVER_PORT"),
		ServerHost: v.GetString("SERVER_HOST"),

		AgentName:    v.GetString("AGENT_NAME"),
		AgentVersion: v.GetString("AGENT_VERSION"),
		AgentURL:     v.GetString("AGENT_URL"),

		AuthType:  v.GetString("AUTH_TYPE"),
		JWTSecret: v.GetString("JWT_SECRET"),
		APIKey:    v.GetString("API_KEY"),

		LLMProvider:        v.GetString("LLM_PROVIDER"),
		LLMAPIKey:          v.GetString("LLM_API_KEY"),
		LLMServiceURL:      v.GetString("LLM_SERVICE_URL"),
		LLMClassifierModel: v.GetString("LLM_CLASSIFIER_MODEL"),
		LLMSynthesisModel:  v.GetString("LLM_SYNTHESIS_MODEL"),
		LLMEmbeddingModel:  v.GetString("LLM_EMBEDDING_MODEL"),
		LLMMaxTokens:       v.GetInt("LLM_MAX_TOKENS"),
		LLMTimeout:         v.GetInt("LLM_TIMEOUT"),
		LLMTemperature:     v.GetFloat64("LLM_TEMPERATURE"),

		SupabaseURL: v.GetString("SUPABASE_URL"),
		SupabaseKey: v.GetString("SUPABASE_KEY"),

		QdrantURL:        v.GetString("QDRANT_URL"),
		QdrantAPIKey:     v.GetString("QDRANT_API_KEY"),
		QdrantCollection: v.GetString("QDRANT_COLLECTION"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		MemoryTTL:     v.GetInt("MEMORY_TTL"),

		SearchTopK:       v.GetInt("SEARCH_TOP_K"),
		HistoryDepth:     v.GetInt("HISTORY_DEPTH"),
		FragmentMaxChars: v.GetInt("FRAGMENT_MAX_CHARS"),
		ContextMaxChars:  v.GetInt("CONTEXT_MAX_CHARS"),
	}
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs from the environment. All clients
// are constructed once in main and injected, so this is the only place that
// reads env vars.
type Config struct {
	Port        string
	DatabaseURL string

	// LLMProvider selects the text-generation backend: "openai" (default,
	// via langchaingo) or "anthropic". If the matching API key is absent the
	// system runs in mock mode instead of failing startup.
	LLMProvider     string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	ModelName       string
	LLMTimeout      time.Duration
	MockLLM         bool

	PineconeAPIKey    string
	PineconeIndexName string

	// RetrievalMode is "embedding" (pinecone) or "lexical" (fuzzy text search
	// over stored materials). Lexical mode needs no external services.
	RetrievalMode string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] No .env file found, using environment variables")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DB_URL", ""),
		LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		ModelName:         getEnv("MODEL_NAME", ""),
		LLMTimeout:        getDurationEnv("LLM_TIMEOUT_SECONDS", 60),
		MockLLM:           getBoolEnv("MOCK_LLM", false),
		PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
		PineconeIndexName: getEnv("PINECONE_INDEX_NAME", "langtutor-materials-index"),
		RetrievalMode:     getEnv("RETRIEVAL_MODE", "embedding"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("[WARN] Invalid boolean for %s: %q, using default %v", key, value, fallback)
		return fallback
	}
	return parsed
}

func getDurationEnv(key string, fallbackSeconds int) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return time.Duration(fallbackSeconds) * time.Second
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		log.Printf("[WARN] Invalid duration for %s: %q, using default %ds", key, value, fallbackSeconds)
		return time.Duration(fallbackSeconds) * time.Second
	}
	return time.Duration(seconds) * time.Second
}

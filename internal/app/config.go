package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr         string
	RequestTimeout   time.Duration
	LogLevel         string
	LogFormat        string
	AmazonEndpoint   string
	FlipkartEndpoint string
	RenderServiceURL string
	ShopAPIKey       string
	ShopBaseURL      string
	LLMAPIKey        string
	LLMFallbackKey   string
	LLMBaseURL       string
	LLMModel         string
	LLMCacheDir      string
	RedisURL         string
	CacheTTL         time.Duration
	CacheDisabled    bool
}

func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		RequestTimeout:   time.Duration(getEnvInt("SEARCH_TIMEOUT_SECONDS", 25)) * time.Second,
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "text")),
		AmazonEndpoint:   getEnv("RETAILER_AMAZON_ENDPOINT", "https://www.amazon.in"),
		FlipkartEndpoint: getEnv("RETAILER_FLIPKART_ENDPOINT", "https://www.flipkart.com"),
		RenderServiceURL: getEnv("RENDER_SERVICE_URL", ""),
		ShopAPIKey:       strings.TrimSpace(os.Getenv("SHOP_API_KEY")),
		ShopBaseURL:      getEnv("SHOP_API_BASE_URL", "https://serpapi.com/search.json"),
		LLMAPIKey:        strings.TrimSpace(os.Getenv("LLM_API_KEY")),
		LLMFallbackKey:   strings.TrimSpace(os.Getenv("LLM_FALLBACK_API_KEY")),
		LLMBaseURL:       getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModel:         getEnv("LLM_MODEL", "gpt-4o"),
		LLMCacheDir:      getEnv("LLM_CACHE_DIR", ".llm-cache"),
		RedisURL:         getEnv("REDIS_URL", ""),
		CacheTTL:         time.Duration(getEnvInt("SEARCH_CACHE_TTL_MINUTES", 10)) * time.Minute,
		CacheDisabled:    getEnvBool("SEARCH_CACHE_DISABLED", false),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

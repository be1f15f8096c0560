package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLM providers understood by the application.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Cache backends understood by the application.
const (
	CacheMemory    = "memory"
	CacheRistretto = "ristretto"
	CacheFile      = "file"
	CacheSQLite    = "sqlite"
	CacheTiered    = "tiered"
)

// Config holds the configuration for the application.
type Config struct {
	LLMProvider    string
	GeminiAPIKey   string
	GeminiModel    string
	GroqAPIKey     string
	GroqModel      string
	LLMTemperature float32
	LLMTimeout     time.Duration

	CacheBackend    string
	CacheDir        string
	CacheTTL        time.Duration
	CacheMaxEntries int
	CacheMaxBytes   int64
	DatabasePath    string

	PlannerSingleFlight bool

	AuthSecret string
	SessionTTL time.Duration

	Port      string
	LogLevel  string
	LogFormat string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GroqModel:       getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		CacheBackend:    strings.ToLower(getEnv("CACHE_BACKEND", CacheSQLite)),
		CacheDir:        getEnv("CACHE_DIR", "data/cache"),
		DatabasePath:    getEnv("DATABASE_PATH", "data/fitness.db"),
		AuthSecret:      os.Getenv("AUTH_SECRET"),
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
	}

	switch cfg.LLMProvider {
	case ProviderGemini:
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProviderGroq:
		cfg.GroqAPIKey = os.Getenv("GROQ_API_KEY")
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}

	switch cfg.CacheBackend {
	case CacheMemory, CacheRistretto, CacheFile, CacheSQLite, CacheTiered:
	default:
		return nil, fmt.Errorf("unsupported CACHE_BACKEND %q", cfg.CacheBackend)
	}

	temperature, err := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.7"), 32)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
	}
	cfg.LLMTemperature = float32(temperature)

	if cfg.LLMTimeout, err = parseDuration("LLM_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = parseDuration("CACHE_TTL", "1h"); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = parseDuration("SESSION_TTL", "24h"); err != nil {
		return nil, err
	}

	cfg.CacheMaxEntries, err = strconv.Atoi(getEnv("CACHE_MAX_ENTRIES", "256"))
	if err != nil || cfg.CacheMaxEntries <= 0 {
		return nil, fmt.Errorf("invalid CACHE_MAX_ENTRIES %q", os.Getenv("CACHE_MAX_ENTRIES"))
	}
	cfg.CacheMaxBytes, err = strconv.ParseInt(getEnv("CACHE_MAX_BYTES", "16777216"), 10, 64)
	if err != nil || cfg.CacheMaxBytes <= 0 {
		return nil, fmt.Errorf("invalid CACHE_MAX_BYTES %q", os.Getenv("CACHE_MAX_BYTES"))
	}

	if v := os.Getenv("PLANNER_SINGLE_FLIGHT"); v != "" {
		cfg.PlannerSingleFlight, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PLANNER_SINGLE_FLIGHT: %w", err)
		}
	}

	// Telegram Config (Optional for CLI, required for Bot)
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramWebhookURL = os.Getenv("TELEGRAM_WEBHOOK_URL")
	if ids := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); ids != "" {
		for _, raw := range strings.Split(ids, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", raw, err)
			}
			cfg.TelegramAllowedUserIDs = append(cfg.TelegramAllowedUserIDs, id)
		}
	}
	if admin := os.Getenv("ADMIN_TELEGRAM_ID"); admin != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(admin, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

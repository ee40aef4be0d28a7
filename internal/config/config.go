package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// HTTP server settings
	Port string

	// Feed settings
	FeedsConfigPath string
	SourceTimeout   time.Duration // per-source fetch timeout
	RequestTimeout  time.Duration // outer deadline for a whole category request
	FetchWorkers    int           // concurrent feed fetches per request
	PerSourceLimit  int           // items kept per source
	MaxArticles     int           // cap on the final ranked list

	// Translation settings
	TranslateSource   string
	TranslateTarget   string
	TranslateTimeout  time.Duration
	TranslateRetries  int
	GeminiAPIKey      string
	MaxGeminiRequests int // daily Gemini request quota, 0 = unlimited

	// Cache settings
	CacheTTL time.Duration

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		Port:              "8080",
		FeedsConfigPath:   "configs/feeds.yaml",
		SourceTimeout:     10 * time.Second,
		RequestTimeout:    15 * time.Second,
		FetchWorkers:      8,
		PerSourceLimit:    10,
		MaxArticles:       30,
		TranslateSource:   "en",
		TranslateTarget:   "zh-TW",
		TranslateTimeout:  10 * time.Second,
		TranslateRetries:  2,
		MaxGeminiRequests: 200,
		CacheTTL:          2 * time.Minute,
	}

	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.TranslateSource = getEnvOrDefault("TRANSLATE_SOURCE_LANG", cfg.TranslateSource)
	cfg.TranslateTarget = getEnvOrDefault("TRANSLATE_TARGET_LANG", cfg.TranslateTarget)
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	cfg.FetchWorkers = getEnvIntOrDefault("FETCH_WORKERS", cfg.FetchWorkers)
	cfg.PerSourceLimit = getEnvIntOrDefault("PER_SOURCE_LIMIT", cfg.PerSourceLimit)
	cfg.MaxArticles = getEnvIntOrDefault("MAX_ARTICLES", cfg.MaxArticles)
	cfg.TranslateRetries = getEnvIntOrDefault("TRANSLATE_RETRIES", cfg.TranslateRetries)
	cfg.MaxGeminiRequests = getEnvIntOrDefault("MAX_GEMINI_REQUESTS", cfg.MaxGeminiRequests)

	cfg.SourceTimeout = getEnvSecondsOrDefault("SOURCE_TIMEOUT_SECONDS", cfg.SourceTimeout)
	cfg.RequestTimeout = getEnvSecondsOrDefault("REQUEST_TIMEOUT_SECONDS", cfg.RequestTimeout)
	cfg.TranslateTimeout = getEnvSecondsOrDefault("TRANSLATE_TIMEOUT_SECONDS", cfg.TranslateTimeout)
	cfg.CacheTTL = getEnvSecondsOrDefault("CACHE_TTL_SECONDS", cfg.CacheTTL)

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return time.Duration(intValue) * time.Second
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.SourceTimeout > c.RequestTimeout {
		return fmt.Errorf("SOURCE_TIMEOUT_SECONDS (%s) must not exceed REQUEST_TIMEOUT_SECONDS (%s)", c.SourceTimeout, c.RequestTimeout)
	}
	if c.MaxArticles <= 0 {
		return fmt.Errorf("MAX_ARTICLES must be positive")
	}
	if c.TranslateTarget == "" {
		return fmt.Errorf("TRANSLATE_TARGET_LANG must not be empty")
	}
	return nil
}

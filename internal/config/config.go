package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the wedding assistant service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	AllowAnyOrigin   bool

	LogLevel       string
	LogDevelopment bool

	DatabaseURL string
	SeedFile    string

	MemoryMaxTurns  int
	MemoryRedactPII bool

	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiModel   string

	GenerationTimeout time.Duration
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:          envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:  envOrDefault("APP_METRICS_NAMESPACE", "wedbot"),
		AllowAnyOrigin:    false,
		LogLevel:          envOrDefault("APP_LOG_LEVEL", "info"),
		DatabaseURL:       stringsTrimSpace("DATABASE_URL"),
		SeedFile:          stringsTrimSpace("SEED_FILE"),
		MemoryMaxTurns:    10,
		LLMProvider:       envOrDefault("LLM_PROVIDER", "auto"),
		OpenAIAPIKey:      stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIBaseURL:     envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:       envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:      stringsTrimSpace("GEMINI_API_KEY"),
		GeminiModel:       envOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		ShutdownTimeout:   15 * time.Second,
		GenerationTimeout: 30 * time.Second,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.GenerationTimeout, err = durationFromEnv("CHAT_GENERATION_TIMEOUT", cfg.GenerationTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryMaxTurns, err = intFromEnv("MEMORY_MAX_TURNS", cfg.MemoryMaxTurns)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryRedactPII, err = boolFromEnv("MEMORY_REDACT_PII", cfg.MemoryRedactPII)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.LogDevelopment, err = boolFromEnv("APP_LOG_DEVELOPMENT", cfg.LogDevelopment)
	if err != nil {
		return Config{}, err
	}

	if cfg.MemoryMaxTurns <= 0 {
		return Config{}, fmt.Errorf("MEMORY_MAX_TURNS must be positive")
	}
	if cfg.GenerationTimeout <= 0 {
		return Config{}, fmt.Errorf("CHAT_GENERATION_TIMEOUT must be positive")
	}
	switch strings.ToLower(cfg.LLMProvider) {
	case "auto", "openai", "gemini", "mock":
	default:
		return Config{}, fmt.Errorf("invalid LLM_PROVIDER %q (expected auto|openai|gemini|mock)", cfg.LLMProvider)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}

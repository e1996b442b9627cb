package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MemoryMaxTurns != 10 {
		t.Fatalf("MemoryMaxTurns = %d, want %d", cfg.MemoryMaxTurns, 10)
	}
	if cfg.LLMProvider != "auto" {
		t.Fatalf("LLMProvider = %q, want %q", cfg.LLMProvider, "auto")
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty default", cfg.DatabaseURL)
	}
	if cfg.GenerationTimeout != 30*time.Second {
		t.Fatalf("GenerationTimeout = %v, want %v", cfg.GenerationTimeout, 30*time.Second)
	}
	if cfg.ShutdownTimeout != 15*time.Second || cfg.BindAddr != ":8080" {
		t.Fatalf("ShutdownTimeout, BindAddr = %v, %q, want 15s, :8080", cfg.ShutdownTimeout, cfg.BindAddr)
	}
}

func TestLoadUsesExplicitValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("MEMORY_MAX_TURNS", "4")
	t.Setenv("MEMORY_REDACT_PII", "yes")
	t.Setenv("CHAT_GENERATION_TIMEOUT", "5s")
	t.Setenv("LLM_PROVIDER", "mock")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MemoryMaxTurns != 4 {
		t.Fatalf("MemoryMaxTurns = %d, want %d", cfg.MemoryMaxTurns, 4)
	}
	if !cfg.MemoryRedactPII {
		t.Fatalf("MemoryRedactPII = false, want true")
	}
	if cfg.GenerationTimeout != 5*time.Second {
		t.Fatalf("GenerationTimeout = %v, want %v", cfg.GenerationTimeout, 5*time.Second)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"MEMORY_MAX_TURNS":        "0",
		"CHAT_GENERATION_TIMEOUT": "soon",
		"LLM_PROVIDER":            "oracle",
		"APP_ALLOW_ANY_ORIGIN":    "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() error = nil, want error for %s=%q", key, value)
			}
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"APP_LOG_LEVEL",
		"APP_LOG_DEVELOPMENT",
		"DATABASE_URL",
		"SEED_FILE",
		"MEMORY_MAX_TURNS",
		"MEMORY_REDACT_PII",
		"LLM_PROVIDER",
		"OPENAI_API_KEY",
		"OPENAI_BASE_URL",
		"OPENAI_MODEL",
		"GEMINI_API_KEY",
		"GEMINI_MODEL",
		"CHAT_GENERATION_TIMEOUT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

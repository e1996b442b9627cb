package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrMalformedResponse is returned when a provider answers without any candidate text.
var ErrMalformedResponse = errors.New("malformed model response")

// Message is one entry of the prompt sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single synchronous text-generation call.
type Request struct {
	System      string
	Messages    []Message
	Temperature *float32
}

// Generator produces a reply for an ordered prompt. An empty reply with a nil
// error means the model answered but produced no usable text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config controls generator construction.
type Config struct {
	Provider      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiModel   string
	Logger        *zap.Logger
}

func NewGenerator(ctx context.Context, cfg Config) (Generator, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if mode == "" {
		mode = "auto"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch mode {
	case "auto":
		return newAutoGenerator(ctx, cfg, logger), nil
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return nil, errors.New("OPENAI_API_KEY is required for openai provider")
		}
		return NewOpenAIGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return nil, errors.New("GEMINI_API_KEY is required for gemini provider")
		}
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "mock":
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

func newAutoGenerator(ctx context.Context, cfg Config, logger *zap.Logger) Generator {
	var gemini Generator
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		g, err := NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini generator unavailable", zap.Error(err))
		} else {
			gemini = g
		}
	}

	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		openai := NewOpenAIGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if gemini != nil {
			return NewFallbackGenerator(openai, gemini)
		}
		return openai
	}
	if gemini != nil {
		return gemini
	}

	logger.Info("no llm api key configured, using mock generator")
	return NewMockGenerator()
}

// Provider names the backend behind g for logs and metrics labels.
func Provider(g Generator) string {
	switch g.(type) {
	case *OpenAIGenerator:
		return "openai"
	case *GeminiGenerator:
		return "gemini"
	case *MockGenerator:
		return "mock"
	case *FallbackGenerator:
		return "fallback"
	default:
		return "custom"
	}
}

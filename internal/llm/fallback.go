package llm

import (
	"context"
	"errors"
	"fmt"
)

// FallbackGenerator attempts a primary generator first and falls back on error.
// Each generator is called at most once per request.
type FallbackGenerator struct {
	primary  Generator
	fallback Generator
}

func NewFallbackGenerator(primary Generator, fallback Generator) *FallbackGenerator {
	return &FallbackGenerator{
		primary:  primary,
		fallback: fallback,
	}
}

func (g *FallbackGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if g == nil || g.primary == nil {
		if g != nil && g.fallback != nil {
			return g.fallback.Generate(ctx, req)
		}
		return "", fmt.Errorf("fallback generator misconfigured")
	}

	text, err := g.primary.Generate(ctx, req)
	if err == nil {
		return text, nil
	}
	// The caller's deadline covers both attempts; do not spend it twice.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}
	if g.fallback == nil {
		return "", err
	}
	fallbackText, fallbackErr := g.fallback.Generate(ctx, req)
	if fallbackErr != nil {
		return "", fmt.Errorf("primary generator error: %w; fallback generator error: %v", err, fallbackErr)
	}
	return fallbackText, nil
}

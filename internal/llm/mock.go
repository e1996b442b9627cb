package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MockGenerator provides deterministic local replies when no provider is configured.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

// mockChecklist answers prompts that ask for a JSON array so the checklist
// flow works end to end without a provider.
var mockChecklist = []string{
	"Set overall wedding budget",
	"Draft initial guest list",
	"Book ceremony venue",
	"Book reception venue",
	"Hire wedding photographer",
	"Choose wedding party",
	"Send save-the-dates",
	"Order wedding invitations",
	"Book hair and makeup",
	"Plan rehearsal dinner",
}

func (g *MockGenerator) Generate(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if len(req.Messages) == 0 {
		return "I am listening.", nil
	}
	last := strings.TrimSpace(req.Messages[len(req.Messages)-1].Content)
	if strings.Contains(last, "JSON array") {
		raw, err := json.Marshal(mockChecklist)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	if last == "" {
		return "I am listening.", nil
	}

	if len(req.Messages) < 2 {
		return fmt.Sprintf("I heard you: %s", last), nil
	}
	prev := strings.TrimSpace(req.Messages[len(req.Messages)-2].Content)
	if prev == "" {
		return fmt.Sprintf("I heard you: %s", last), nil
	}
	return fmt.Sprintf("I heard you: %s\nI also remember: %s", last, prev), nil
}

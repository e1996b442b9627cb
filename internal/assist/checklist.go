package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wedlii/wedbot/internal/llm"
	"github.com/wedlii/wedbot/internal/planning"
)

var ErrInvalidChecklist = errors.New("checklist reply is not a JSON array of strings")

// ChecklistWriter asks the model for a task list tailored to the couple.
type ChecklistWriter struct {
	gen llm.Generator
}

func NewChecklistWriter(gen llm.Generator) *ChecklistWriter {
	return &ChecklistWriter{gen: gen}
}

func (w *ChecklistWriter) GenerateChecklist(ctx context.Context, prefs planning.Preferences) ([]string, error) {
	raw, err := w.gen.Generate(ctx, llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: ChecklistPrompt(prefs)}},
	})
	if err != nil {
		return nil, err
	}
	return ParseChecklist(raw)
}

// ParseChecklist decodes a model reply into task titles, tolerating a
// surrounding Markdown code fence. Blank items are dropped.
func ParseChecklist(raw string) ([]string, error) {
	raw = stripCodeFence(raw)

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChecklist, err)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```")
	// Drop an info string such as "json" on the opening fence.
	if nl := strings.IndexByte(raw, '\n'); nl >= 0 {
		raw = raw[nl+1:]
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}

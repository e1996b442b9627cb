package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wedlii/wedbot/internal/llm"
)

var ErrContentTypeRequired = errors.New("content type is required")

const contentSystemPrompt = "You write tasteful, wedding-appropriate content."

// ContentRequest describes a piece of wedding copy such as vows or a toast.
type ContentRequest struct {
	Type         string `json:"content_type"`
	Tone         string `json:"tone"`
	CoupleNames  string `json:"couple_names,omitempty"`
	ExtraContext string `json:"extra_context,omitempty"`
}

type ContentWriter struct {
	gen llm.Generator
}

func NewContentWriter(gen llm.Generator) *ContentWriter {
	return &ContentWriter{gen: gen}
}

func (w *ContentWriter) Write(ctx context.Context, req ContentRequest) (string, error) {
	if strings.TrimSpace(req.Type) == "" {
		return "", ErrContentTypeRequired
	}
	tone := orDefault(req.Tone, "warm")
	prompt := fmt.Sprintf(`You are a professional wedding writer.

Content type: %s
Tone: %s

Couple names: %s
Additional context: %s

Rules:
- Keep content appropriate for a wedding
- Do NOT invent personal facts
- Keep it warm, natural, and editable
- Length: 2-4 paragraphs`,
		strings.TrimSpace(req.Type), tone, orDefault(req.CoupleNames, "Not specified"), orDefault(req.ExtraContext, "None"))

	return w.gen.Generate(ctx, llm.Request{
		System:      contentSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: temperature(0.6),
	})
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}

package assist

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wedlii/wedbot/internal/llm"
	"github.com/wedlii/wedbot/internal/planning"
	"github.com/wedlii/wedbot/internal/vendors"
)

type recordingGenerator struct {
	reply string
	err   error
	reqs  []llm.Request
}

func (g *recordingGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.reqs = append(g.reqs, req)
	return g.reply, g.err
}

func TestChecklistPromptRendersPreferences(t *testing.T) {
	date := time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC)
	prompt := ChecklistPrompt(planning.Preferences{Style: "rustic", Budget: 20000, GuestCount: 90, WeddingDate: &date})
	for _, want := range []string{"Wedding style: rustic", "Budget: 20000", "Guest count: 90", "Wedding date: 2027-05-01", "JSON array"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}

	empty := ChecklistPrompt(planning.Preferences{})
	if strings.Count(empty, notSpecified) != 4 {
		t.Fatalf("empty prompt should mark all four fields unspecified:\n%s", empty)
	}
}

func TestParseChecklist(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "plain", raw: `["Book venue", "Hire florist"]`, want: []string{"Book venue", "Hire florist"}},
		{name: "json fence", raw: "```json\n[\"Book venue\", \" \"]\n```", want: []string{"Book venue"}},
		{name: "bare fence", raw: "```\n[\"Hire DJ\"]\n```", want: []string{"Hire DJ"}},
		{name: "empty array", raw: `[]`, want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseChecklist(tc.raw)
			if err != nil {
				t.Fatalf("ParseChecklist() error = %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("ParseChecklist() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	for _, raw := range []string{"Sure! Here is your list", `{"tasks": []}`, `[1, 2]`} {
		if _, err := ParseChecklist(raw); !errors.Is(err, ErrInvalidChecklist) {
			t.Fatalf("ParseChecklist(%q) error = %v, want ErrInvalidChecklist", raw, err)
		}
	}
}

func TestGenerateChecklistPropagatesGeneratorError(t *testing.T) {
	boom := errors.New("provider down")
	w := NewChecklistWriter(&recordingGenerator{err: boom})
	if _, err := w.GenerateChecklist(context.Background(), planning.Preferences{}); !errors.Is(err, boom) {
		t.Fatalf("GenerateChecklist() error = %v, want %v", err, boom)
	}
}

func TestGenerateChecklistWithMockGenerator(t *testing.T) {
	w := NewChecklistWriter(llm.NewMockGenerator())
	items, err := w.GenerateChecklist(context.Background(), planning.Preferences{Style: "classic"})
	if err != nil {
		t.Fatalf("GenerateChecklist() error = %v", err)
	}
	if len(items) == 0 {
		t.Fatalf("GenerateChecklist() returned no items")
	}
}

func TestVendorComparer(t *testing.T) {
	gen := &recordingGenerator{reply: "Both are lovely."}
	c := NewVendorComparer(gen)

	text, err := c.Compare(context.Background(), nil, 3000, "photographers")
	if err != nil || text != NoVendorsReply {
		t.Fatalf("Compare(empty) = %q, %v; want %q", text, err, NoVendorsReply)
	}
	if len(gen.reqs) != 0 {
		t.Fatalf("generator should not be called for an empty list")
	}

	text, err = c.Compare(context.Background(), []vendors.Vendor{
		{Name: "Golden Frame Studios", City: "lahore", RecommendedPrice: 2500, StyleTags: []string{"romantic", "classic"}},
	}, 3000, "photographers")
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if text != "Both are lovely." {
		t.Fatalf("Compare() = %q", text)
	}
	req := gen.reqs[0]
	if req.Temperature == nil || *req.Temperature != 0.4 {
		t.Fatalf("temperature = %v, want 0.4", req.Temperature)
	}
	if !strings.Contains(req.Messages[0].Content, "- Golden Frame Studios | City: lahore | Price: 2500 | Style: romantic, classic") {
		t.Fatalf("prompt missing vendor line:\n%s", req.Messages[0].Content)
	}
}

func TestContentWriter(t *testing.T) {
	gen := &recordingGenerator{reply: "Dear friends..."}
	w := NewContentWriter(gen)

	if _, err := w.Write(context.Background(), ContentRequest{}); !errors.Is(err, ErrContentTypeRequired) {
		t.Fatalf("Write() error = %v, want ErrContentTypeRequired", err)
	}

	text, err := w.Write(context.Background(), ContentRequest{Type: "toast", CoupleNames: "Ana & Sam"})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if text != "Dear friends..." {
		t.Fatalf("Write() = %q", text)
	}
	req := gen.reqs[0]
	if req.System != contentSystemPrompt || req.Temperature == nil || *req.Temperature != 0.6 {
		t.Fatalf("request = %+v, want content system prompt at 0.6", req)
	}
	for _, want := range []string{"Content type: toast", "Tone: warm", "Couple names: Ana & Sam", "Additional context: None"} {
		if !strings.Contains(req.Messages[0].Content, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

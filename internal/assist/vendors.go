package assist

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/wedlii/wedbot/internal/llm"
	"github.com/wedlii/wedbot/internal/vendors"
)

const NoVendorsReply = "No vendors available to compare."

const compareSystemPrompt = "You are a helpful wedding planning assistant."

// VendorComparer writes a short natural-language comparison of vendor options.
type VendorComparer struct {
	gen llm.Generator
}

func NewVendorComparer(gen llm.Generator) *VendorComparer {
	return &VendorComparer{gen: gen}
}

func (c *VendorComparer) Compare(ctx context.Context, options []vendors.Vendor, budget float64, category string) (string, error) {
	if len(options) == 0 {
		return NoVendorsReply, nil
	}

	var b strings.Builder
	for _, v := range options {
		fmt.Fprintf(&b, "- %s | City: %s | Price: %s | Style: %s\n",
			v.Name, v.City, strconv.FormatFloat(v.RecommendedPrice, 'f', -1, 64), strings.Join(v.StyleTags, ", "))
	}

	prompt := fmt.Sprintf(`You are a wedding planning assistant.

The user is looking for %s under a budget of %s.

Here are the vendor options:
%s
Write a concise, friendly comparison (3-5 sentences):
- Highlight strengths of each vendor
- Mention style differences
- Keep tone professional and helpful
- Do NOT invent prices or features`, category, strconv.FormatFloat(budget, 'f', -1, 64), b.String())

	return c.gen.Generate(ctx, llm.Request{
		System:      compareSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: temperature(0.4),
	})
}

func temperature(v float32) *float32 { return &v }

package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wedlii/wedbot/internal/vendors"
	"github.com/wedlii/wedbot/internal/wellness"
)

const fixture = `
wellness:
  - type: affirmation
    content: You are exactly where you need to be.
  - type: breathing
    title: Box breathing
    content: In for 4, hold for 4, out for 4, hold for 4.
vendors:
  - name: Golden Frame Studios
    category: photographers
    city: lahore
    recommended_price: 2500
    style_tags: [romantic, classic]
    source_url: seed://golden-frame-studios
`

func TestParseAndApply(t *testing.T) {
	f, err := Parse(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Wellness) != 2 || len(f.Vendors) != 1 {
		t.Fatalf("parsed %d wellness, %d vendors; want 2, 1", len(f.Wellness), len(f.Vendors))
	}
	if f.Vendors[0].RecommendedPrice != 2500 || len(f.Vendors[0].StyleTags) != 2 {
		t.Fatalf("vendor = %+v", f.Vendors[0])
	}

	ctx := context.Background()
	ws := wellness.NewInMemoryStore()
	vs := vendors.NewInMemoryStore()
	res, err := Apply(ctx, f, ws, vs, nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Wellness != 2 || res.Vendors != 1 {
		t.Fatalf("Apply() = %+v", res)
	}

	// Applying twice does not duplicate vendors or wellness items.
	if _, err := Apply(ctx, f, ws, vs, nil); err != nil {
		t.Fatalf("Apply() second run error = %v", err)
	}
	found, _ := vs.Recommend(ctx, vendors.Query{Category: "photographers", City: "lahore"})
	if len(found) != 1 {
		t.Fatalf("vendors = %d, want 1", len(found))
	}
	items, err := ws.List(ctx, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("wellness items = %d, want 2", len(items))
	}

	item, _ := ws.Pick(ctx, wellness.KindBreathing)
	if item == nil || item.Title != "Box breathing" {
		t.Fatalf("breathing item = %+v", item)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	if _, err := Parse(strings.NewReader("recipes: []\n")); err == nil {
		t.Fatalf("Parse() error = nil, want unknown field error")
	}
}

func TestParseEmpty(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Wellness) != 0 || len(f.Vendors) != 0 {
		t.Fatalf("Parse() = %+v, want empty", f)
	}
}

func TestApplyStopsOnInvalidVendor(t *testing.T) {
	f := File{Vendors: []vendors.Vendor{{Name: "Nameless city"}}}
	_, err := Apply(context.Background(), f, wellness.NewInMemoryStore(), vendors.NewInMemoryStore(), nil)
	if !errors.Is(err, vendors.ErrInvalidVendor) {
		t.Fatalf("Apply() error = %v, want ErrInvalidVendor", err)
	}
}

package wellness

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInMemoryPickReturnsNilWhenEmpty(t *testing.T) {
	store := NewInMemoryStore()
	item, err := store.Pick(context.Background(), KindBreathing)
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	if item != nil {
		t.Fatalf("Pick() = %+v, want nil", item)
	}
}

func TestInMemoryPickFiltersByKind(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	store.pick = func(n int) int { return n - 1 }

	for _, it := range []Item{
		{Type: KindAffirmation, Content: "You are doing great."},
		{Type: KindBreathing, Title: "Box breathing", Content: "In 4, hold 4, out 4."},
		{Type: KindAffirmation, Content: "One step at a time."},
	} {
		if _, err := store.Add(ctx, it); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	item, err := store.Pick(ctx, KindAffirmation)
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	if item == nil || item.Content != "One step at a time." {
		t.Fatalf("Pick() = %+v, want last affirmation", item)
	}

	breathing, err := store.List(ctx, KindBreathing)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	titles := make([]string, 0, len(breathing))
	for _, b := range breathing {
		titles = append(titles, b.Title)
	}
	if diff := cmp.Diff([]string{"Box breathing"}, titles); diff != "" {
		t.Fatalf("List() titles mismatch (-want +got):\n%s", diff)
	}
}

func TestInMemoryAddNormalizesAndUpserts(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	first, err := store.Add(ctx, Item{ID: "a1", Type: " Affirmation ", Content: "old"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if first.Type != KindAffirmation {
		t.Fatalf("type = %q, want %q", first.Type, KindAffirmation)
	}
	if _, err := store.Add(ctx, Item{ID: "a1", Type: KindAffirmation, Content: "new"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	all, _ := store.List(ctx, "")
	if len(all) != 1 || all[0].Content != "new" {
		t.Fatalf("List() = %+v, want single upserted item", all)
	}

	if _, err := store.Add(ctx, Item{Content: "typeless"}); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("Add() error = %v, want ErrInvalidKind", err)
	}
}

func TestAddDerivesStableID(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	breath := Item{Type: KindBreathing, Title: "Box breathing", Content: "In 4, hold 4, out 4."}

	first, err := store.Add(ctx, breath)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	second, err := store.Add(ctx, Item{Type: "Breathing", Title: breath.Title, Content: breath.Content})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if first.ID == "" || first.ID != second.ID {
		t.Fatalf("ids = %q, %q, want equal and non-empty", first.ID, second.ID)
	}

	other, err := store.Add(ctx, Item{Type: KindAffirmation, Title: breath.Title, Content: breath.Content})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("affirmation id = %q, want distinct from breathing id", other.ID)
	}

	all, _ := store.List(ctx, "")
	if len(all) != 2 {
		t.Fatalf("List() = %+v, want 2 items", all)
	}
}

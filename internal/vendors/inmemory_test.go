package vendors

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func seedStore(t *testing.T) *InMemoryStore {
	t.Helper()
	store := NewInMemoryStore()
	for _, v := range []Vendor{
		{Name: "Golden Frame Studios", Category: "photographers", City: "lahore", RecommendedPrice: 2500, StyleTags: []string{"romantic", "classic"}},
		{Name: "Rustic Lens Co.", Category: "Photographers", City: "Lahore", RecommendedPrice: 3000, StyleTags: []string{"Rustic", "outdoor"}},
		{Name: "Modern Moments", Category: "photographers", City: "karachi", RecommendedPrice: 4000, StyleTags: []string{"modern"}},
		{Name: "Rosewood Garden Venue", Category: "venues", City: "lahore", RecommendedPrice: 8000, StyleTags: []string{"outdoor", "garden"}},
	} {
		if _, err := store.AddVendor(context.Background(), v); err != nil {
			t.Fatalf("AddVendor(%q) error = %v", v.Name, err)
		}
	}
	return store
}

func names(vs []Vendor) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Name)
	}
	return out
}

func TestRecommendFilters(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	cases := []struct {
		name string
		q    Query
		want []string
	}{
		{name: "category and city are case-insensitive", q: Query{Category: "PHOTOGRAPHERS", City: "Lahore", MaxBudget: 5000}, want: []string{"Golden Frame Studios", "Rustic Lens Co."}},
		{name: "budget caps price", q: Query{Category: "photographers", City: "lahore", MaxBudget: 2999}, want: []string{"Golden Frame Studios"}},
		{name: "all style tags must match", q: Query{Category: "photographers", City: "lahore", MaxBudget: 5000, StyleTags: []string{"rustic", "OUTDOOR"}}, want: []string{"Rustic Lens Co."}},
		{name: "limit", q: Query{Category: "photographers", City: "lahore", MaxBudget: 5000, Limit: 1}, want: []string{"Golden Frame Studios"}},
		{name: "no match", q: Query{Category: "florists", City: "lahore", MaxBudget: 5000}, want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.Recommend(ctx, tc.q)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if diff := cmp.Diff(tc.want, names(got)); diff != "" {
				t.Fatalf("Recommend() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestShortlistLifecycle(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	found, _ := store.Recommend(ctx, Query{Category: "venues", City: "lahore"})
	if len(found) != 1 {
		t.Fatalf("venues = %d, want 1", len(found))
	}
	id := found[0].ID

	for i := 0; i < 2; i++ {
		if err := store.AddToShortlist(ctx, "u1", id); err != nil {
			t.Fatalf("AddToShortlist() error = %v", err)
		}
	}
	list, _ := store.Shortlist(ctx, "u1")
	if diff := cmp.Diff([]string{"Rosewood Garden Venue"}, names(list)); diff != "" {
		t.Fatalf("Shortlist() mismatch (-want +got):\n%s", diff)
	}

	if err := store.AddToShortlist(ctx, "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AddToShortlist(missing) error = %v, want ErrNotFound", err)
	}

	for i := 0; i < 2; i++ {
		if err := store.RemoveFromShortlist(ctx, "u1", id); err != nil {
			t.Fatalf("RemoveFromShortlist() error = %v", err)
		}
	}
	list, _ = store.Shortlist(ctx, "u1")
	if len(list) != 0 {
		t.Fatalf("Shortlist() after remove = %d, want 0", len(list))
	}
}

func TestAddVendorStableIDFromSource(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	v := Vendor{Name: "Bloom & Petal", Category: "florists", City: "lahore", SourceURL: "seed://bloom-petal"}

	first, err := store.AddVendor(ctx, v)
	if err != nil {
		t.Fatalf("AddVendor() error = %v", err)
	}
	second, err := store.AddVendor(ctx, v)
	if err != nil {
		t.Fatalf("AddVendor() error = %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("ids differ: %q vs %q", first.ID, second.ID)
	}

	if _, err := store.AddVendor(ctx, Vendor{Name: "No city", Category: "florists"}); !errors.Is(err, ErrInvalidVendor) {
		t.Fatalf("AddVendor(invalid) error = %v, want ErrInvalidVendor", err)
	}
}

package planning

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultTimelineByStyle(t *testing.T) {
	cases := []struct {
		style string
		count int
		last  string
	}{
		{style: "", count: 8, last: "Send-off"},
		{style: "rustic", count: 8, last: "Send-off"},
		{style: "casual", count: 7, last: "Open dancing"},
		{style: "Formal", count: 9, last: "Late night snacks"},
	}
	for _, tc := range cases {
		blocks := DefaultTimeline(tc.style)
		if len(blocks) != tc.count {
			t.Fatalf("DefaultTimeline(%q) len = %d, want %d", tc.style, len(blocks), tc.count)
		}
		if got := blocks[len(blocks)-1].Label; got != tc.last {
			t.Fatalf("DefaultTimeline(%q) last = %q, want %q", tc.style, got, tc.last)
		}
	}

	// Callers must not be able to mutate the shared base blocks.
	DefaultTimeline("casual")[0].Label = "changed"
	if DefaultTimeline("")[0].Label != "Guest arrival" {
		t.Fatalf("base timeline was mutated")
	}
}

func TestBudgetBreakdown(t *testing.T) {
	got := BudgetBreakdown(25000)
	want := []BudgetCategory{
		{Category: "Venue", Allocated: 10000},
		{Category: "Catering", Allocated: 7500},
		{Category: "Photography", Allocated: 2500},
		{Category: "Decor", Allocated: 2500},
		{Category: "Misc", Allocated: 2500},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("BudgetBreakdown() mismatch (-want +got):\n%s", diff)
	}
}

func TestWeeksUntil(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		wedding time.Time
		want    int
	}{
		{wedding: now.AddDate(0, 0, 70), want: 10},
		{wedding: now.AddDate(0, 0, 13), want: 1},
		{wedding: now.AddDate(0, 0, 3), want: 1},
		{wedding: now.AddDate(0, 0, -20), want: 1},
	}
	for _, tc := range cases {
		if got := WeeksUntil(tc.wedding, now); got != tc.want {
			t.Fatalf("WeeksUntil(%s) = %d, want %d", tc.wedding, got, tc.want)
		}
	}
}

func TestAssignWeeks(t *testing.T) {
	cases := []struct {
		name  string
		n     int
		weeks int
		want  []int
	}{
		{name: "even", n: 6, weeks: 3, want: []int{1, 1, 2, 2, 3, 3}},
		{name: "remainder piles into last week", n: 7, weeks: 3, want: []int{1, 1, 2, 2, 3, 3, 3}},
		{name: "fewer tasks than weeks", n: 2, weeks: 5, want: []int{1, 2}},
		{name: "single week", n: 3, weeks: 1, want: []int{1, 1, 1}},
		{name: "none", n: 0, weeks: 4, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, AssignWeeks(tc.n, tc.weeks)); diff != "" {
				t.Fatalf("AssignWeeks(%d, %d) mismatch (-want +got):\n%s", tc.n, tc.weeks, diff)
			}
		})
	}
}

package planning

import (
	"math"
	"strings"
	"time"
)

var baseTimeline = []TimelineBlock{
	{Label: "Guest arrival", Start: "15:30", End: "16:00"},
	{Label: "Ceremony", Start: "16:00", End: "16:30"},
	{Label: "Cocktail hour", Start: "16:30", End: "17:30"},
	{Label: "Reception entry", Start: "17:30", End: "18:00"},
	{Label: "Dinner", Start: "18:00", End: "19:30"},
	{Label: "First dance", Start: "19:30", End: "19:45"},
	{Label: "Open dancing", Start: "19:45", End: "22:00"},
	{Label: "Send-off", Start: "22:00", End: "22:15"},
}

// DefaultTimeline returns the wedding-day blocks for a style. Casual weddings
// skip the send-off; formal ones add late-night snacks.
func DefaultTimeline(style string) []TimelineBlock {
	blocks := append([]TimelineBlock(nil), baseTimeline...)
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "casual":
		blocks = blocks[:len(blocks)-1]
	case "formal":
		blocks = append(blocks, TimelineBlock{Label: "Late night snacks", Start: "22:15", End: "22:45"})
	}
	return blocks
}

var budgetSplit = []struct {
	category string
	ratio    float64
}{
	{"Venue", 0.4},
	{"Catering", 0.3},
	{"Photography", 0.1},
	{"Decor", 0.1},
	{"Misc", 0.1},
}

// BudgetBreakdown splits total across the standard categories, rounded to cents.
func BudgetBreakdown(total float64) []BudgetCategory {
	out := make([]BudgetCategory, 0, len(budgetSplit))
	for _, split := range budgetSplit {
		out = append(out, BudgetCategory{
			Category:  split.category,
			Allocated: math.Round(total*split.ratio*100) / 100,
		})
	}
	return out
}

// WeeksUntil counts whole weeks from now to the wedding, never less than one.
func WeeksUntil(wedding, now time.Time) int {
	days := int(math.Floor(wedding.Sub(now).Hours() / 24))
	weeks := days / 7
	if days < 0 {
		weeks = 0
	}
	return max(1, weeks)
}

// AssignWeeks spreads n tasks over weeks, filling each week before moving on
// and piling any remainder into the final week.
func AssignWeeks(n, weeks int) []int {
	if n <= 0 {
		return nil
	}
	weeks = max(1, weeks)
	perWeek := max(1, n/weeks)

	out := make([]int, 0, n)
	week := 1
	for i := 1; i <= n; i++ {
		out = append(out, week)
		if i%perWeek == 0 && week < weeks {
			week++
		}
	}
	return out
}

package assist

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wedlii/wedbot/internal/planning"
)

// SystemPrompt sets the assistant persona for free-form chat.
const SystemPrompt = `You are WedBot, a warm, modern, wedding-planning assistant for Wedlii.

Personality:
- Friendly
- Calm
- Knowledgeable
- No fluff
- Sounds like a helpful friend who has planned many weddings

Rules:
- Use saved wedding details when available
- Ask clarifying questions if needed
- If unsure, say: "Let me check that for you!"`

const checklistPromptTemplate = `You are a wedding planning assistant.

Generate a wedding planning checklist with 50 to 80 short, clear tasks.

Context:
- Wedding style: %s
- Budget: %s
- Guest count: %s
- Wedding date: %s

Rules:
- Each task must be 3-6 words
- No numbering
- No explanations
- Return ONLY a JSON array of strings`

const notSpecified = "not specified"

// ChecklistPrompt renders the checklist request for prefs; zero values read
// as "not specified".
func ChecklistPrompt(prefs planning.Preferences) string {
	style := strings.TrimSpace(prefs.Style)
	if style == "" {
		style = notSpecified
	}
	budget := notSpecified
	if prefs.Budget > 0 {
		budget = strconv.FormatFloat(prefs.Budget, 'f', -1, 64)
	}
	guests := notSpecified
	if prefs.GuestCount > 0 {
		guests = strconv.Itoa(prefs.GuestCount)
	}
	date := notSpecified
	if prefs.WeddingDate != nil {
		date = prefs.WeddingDate.Format(time.DateOnly)
	}
	return fmt.Sprintf(checklistPromptTemplate, style, budget, guests, date)
}

package policy

import "strings"

// Route is the handling path selected for an inbound chat message.
type Route string

const (
	RouteStress    Route = "stress"
	RouteChecklist Route = "checklist"
	RouteDefault   Route = "default"
)

// Decision is the classifier output. Keyword holds the term that selected a
// non-default route.
type Decision struct {
	Route   Route
	Keyword string
}

// Classifier maps a chat message to exactly one route.
type Classifier interface {
	Classify(message string) Decision
}

var (
	DefaultStressKeywords = []string{
		"stressed", "overwhelmed", "anxious",
		"panic", "too much", "cant handle", "can't handle",
		"tired", "exhausted",
	}
	DefaultChecklistTerms = []string{"checklist"}
	DefaultCreateTerms    = []string{"create"}
)

// KeywordClassifier is an ordered rule list over lower-cased substrings:
// stress keywords first, then checklist+create, then the default route.
type KeywordClassifier struct {
	StressKeywords []string
	ChecklistTerms []string
	CreateTerms    []string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		StressKeywords: DefaultStressKeywords,
		ChecklistTerms: DefaultChecklistTerms,
		CreateTerms:    DefaultCreateTerms,
	}
}

func (c *KeywordClassifier) Classify(message string) Decision {
	in := strings.ToLower(message)

	if kw, ok := firstContained(in, c.StressKeywords); ok {
		return Decision{Route: RouteStress, Keyword: kw}
	}

	if kw, ok := firstContained(in, c.ChecklistTerms); ok {
		if _, ok := firstContained(in, c.CreateTerms); ok {
			return Decision{Route: RouteChecklist, Keyword: kw}
		}
	}

	return Decision{Route: RouteDefault}
}

func firstContained(in string, terms []string) (string, bool) {
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if strings.Contains(in, term) {
			return term, true
		}
	}
	return "", false
}

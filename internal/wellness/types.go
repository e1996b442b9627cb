package wellness

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

type Kind string

const (
	KindAffirmation Kind = "affirmation"
	KindBreathing   Kind = "breathing"
)

var ErrInvalidKind = errors.New("wellness content type is required")

// Item is one piece of calming content shown on the stress path.
type Item struct {
	ID      string `json:"id" yaml:"id"`
	Type    Kind   `json:"type" yaml:"type"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

type Store interface {
	// Pick returns one item of the given kind, or nil when none exist.
	Pick(ctx context.Context, kind Kind) (*Item, error)
	Add(ctx context.Context, item Item) (Item, error)
	List(ctx context.Context, kind Kind) ([]Item, error)
	Close() error
}

func normalizeItem(item Item) (Item, error) {
	item.Type = Kind(strings.ToLower(strings.TrimSpace(string(item.Type))))
	if item.Type == "" {
		return Item{}, ErrInvalidKind
	}
	if item.ID == "" {
		// Same type, title and content always map to the same id.
		name := string(item.Type) + "\n" + item.Title + "\n" + item.Content
		item.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
	}
	return item, nil
}

package vendors

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const DefaultLimit = 10

var (
	ErrNotFound      = errors.New("vendor not found")
	ErrInvalidVendor = errors.New("vendor name, category and city are required")
)

type Vendor struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	Category         string   `json:"category" yaml:"category"`
	City             string   `json:"city" yaml:"city"`
	RecommendedPrice float64  `json:"recommended_price" yaml:"recommended_price"`
	StyleTags        []string `json:"style_tags" yaml:"style_tags"`
	SourceURL        string   `json:"source_url,omitempty" yaml:"source_url"`
}

// Query selects vendors by exact category and city. A non-positive MaxBudget
// disables the price cap; every StyleTag must be present on a match.
type Query struct {
	Category  string
	City      string
	MaxBudget float64
	StyleTags []string
	Limit     int
}

type Store interface {
	Recommend(ctx context.Context, q Query) ([]Vendor, error)
	AddVendor(ctx context.Context, v Vendor) (Vendor, error)
	GetVendor(ctx context.Context, id string) (Vendor, error)

	AddToShortlist(ctx context.Context, userID, vendorID string) error
	Shortlist(ctx context.Context, userID string) ([]Vendor, error)
	RemoveFromShortlist(ctx context.Context, userID, vendorID string) error

	Close() error
}

func normalizeVendor(v Vendor) (Vendor, error) {
	v.Name = strings.TrimSpace(v.Name)
	v.Category = strings.ToLower(strings.TrimSpace(v.Category))
	v.City = strings.ToLower(strings.TrimSpace(v.City))
	if v.Name == "" || v.Category == "" || v.City == "" {
		return Vendor{}, ErrInvalidVendor
	}
	v.StyleTags = normalizeTags(v.StyleTags)
	if v.ID == "" {
		if v.SourceURL != "" {
			// Re-seeding the same source keeps a stable id.
			v.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(v.SourceURL)).String()
		} else {
			v.ID = uuid.NewString()
		}
	}
	return v, nil
}

func normalizeQuery(q Query) Query {
	q.Category = strings.ToLower(strings.TrimSpace(q.Category))
	q.City = strings.ToLower(strings.TrimSpace(q.City))
	q.StyleTags = normalizeTags(q.StyleTags)
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	return q
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

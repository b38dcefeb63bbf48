// Package news defines the item model shared by the aggregation pipeline
// and its consumers.
package news

import (
	"fmt"
	"time"
)

// Category classifies a feed's content cadence. Every item inherits the
// category of the feed it came from.
type Category string

const (
	CategoryQuick    Category = "quick"
	CategoryDeep     Category = "deep"
	CategoryFollowup Category = "followup"

	// CategoryAll is valid only as a filter value, never on an item.
	CategoryAll Category = "all"
)

// ParseCategory validates a category query value. The empty string maps to
// CategoryAll so callers can pass the raw query parameter through.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryQuick, CategoryDeep, CategoryFollowup, CategoryAll:
		return Category(s), nil
	case "":
		return CategoryAll, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// ParseFeedCategory validates a category as configured on a feed, where
// "all" is not meaningful.
func ParseFeedCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryQuick, CategoryDeep, CategoryFollowup, "":
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown feed category %q", s)
}

// Item is one aggregated news story. Keywords, Summary and ClusterID are
// derived fields populated during the annotation pass; no consumer sees a
// partially annotated item. JSON tags match the shape the web frontend
// consumes.
type Item struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	PublishedAt *time.Time `json:"pubDate,omitempty"`
	Description string     `json:"description,omitempty"`
	Source      string     `json:"source"`
	Category    Category   `json:"category,omitempty"`
	Keywords    []string   `json:"keywords"`
	Summary     string     `json:"summary,omitempty"`
	ClusterID   string     `json:"clusterId,omitempty"`
}

// Package collect retrieves and normalizes items from remote feeds.
package collect

import (
	"context"
	"log"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/jwulan/newsdigest/internal/news"
)

// DefaultMaxPerFeed bounds how many items one feed may contribute, so a
// prolific source cannot dominate the aggregate.
const DefaultMaxPerFeed = 5

// FeedSource is one configured feed.
type FeedSource struct {
	Name     string
	URL      string
	Category news.Category
}

// Fetcher retrieves and parses RSS/Atom feeds.
type Fetcher struct {
	parser     *gofeed.Parser
	timeout    time.Duration
	maxPerFeed int
}

// NewFetcher creates a feed fetcher. A zero timeout defaults to 10s; a
// hung feed would otherwise stall the whole aggregation.
func NewFetcher(timeout time.Duration, maxPerFeed int) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxPerFeed <= 0 {
		maxPerFeed = DefaultMaxPerFeed
	}
	parser := gofeed.NewParser()
	parser.UserAgent = "newsdigest/1.0 (news aggregator)"
	return &Fetcher{
		parser:     parser,
		timeout:    timeout,
		maxPerFeed: maxPerFeed,
	}
}

// Fetch retrieves one feed and maps its entries to news items. It never
// fails: network, timeout and parse errors are logged and yield nil, so
// one dead feed degrades the aggregate instead of breaking it.
func (f *Fetcher) Fetch(ctx context.Context, src FeedSource) []news.Item {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		log.Printf("Failed to fetch feed %s (%s): %v", src.Name, src.URL, err)
		return nil
	}

	items := make([]news.Item, 0, min(len(feed.Items), f.maxPerFeed))
	for _, entry := range feed.Items {
		if len(items) >= f.maxPerFeed {
			break
		}
		items = append(items, mapItem(entry, src))
	}

	log.Printf("Fetched %d items from %s", len(items), src.Name)
	return items
}

// mapItem normalizes a raw feed entry. Missing fields become zero values
// rather than rejecting the entry.
func mapItem(entry *gofeed.Item, src FeedSource) news.Item {
	description := entry.Description
	if description == "" {
		description = entry.Content
	}

	var publishedAt *time.Time
	if entry.PublishedParsed != nil {
		publishedAt = entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		publishedAt = entry.UpdatedParsed
	}

	return news.Item{
		Title:       entry.Title,
		Link:        entry.Link,
		PublishedAt: publishedAt,
		Description: description,
		Source:      src.Name,
		Category:    src.Category,
	}
}

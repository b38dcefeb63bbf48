// Package pipeline orchestrates one aggregation pass: concurrent feed
// fetches, annotation, clustering and ranking.
package pipeline

import (
	"context"
	"log"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/jwulan/newsdigest/internal/annotate"
	"github.com/jwulan/newsdigest/internal/cluster"
	"github.com/jwulan/newsdigest/internal/collect"
	"github.com/jwulan/newsdigest/internal/config"
	"github.com/jwulan/newsdigest/internal/news"
)

// Stats summarizes one aggregation run for logs and the CLI.
type Stats struct {
	Total       int
	FailedFeeds int
	Sources     map[string]int
	Clusters    int
	Clustered   int
}

// Fetcher retrieves one feed. Implementations must be total: a failed
// feed yields an empty result, never an error.
type Fetcher interface {
	Fetch(ctx context.Context, src collect.FeedSource) []news.Item
}

// Aggregator fans out across all configured feeds and produces the fully
// annotated, clustered, recency-sorted item list. It holds no state
// between runs; every call recomputes from the live feeds.
type Aggregator struct {
	fetcher   Fetcher
	feeds     []collect.FeedSource
	extractor *annotate.Extractor
}

// New builds an aggregator from configuration.
func New(cfg *config.Config) *Aggregator {
	feeds := make([]collect.FeedSource, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		feeds[i] = collect.FeedSource{
			Name:     f.Name,
			URL:      f.URL,
			Category: news.Category(f.Category),
		}
	}
	return &Aggregator{
		fetcher:   collect.NewFetcher(cfg.FetchTimeout(), cfg.Fetch.MaxPerFeed),
		feeds:     feeds,
		extractor: annotate.NewExtractor(cfg.Keywords),
	}
}

// NewWithFetcher builds an aggregator with a custom fetcher. Used by
// tests and by callers that wrap fetching.
func NewWithFetcher(fetcher Fetcher, feeds []collect.FeedSource, keywords []string) *Aggregator {
	return &Aggregator{
		fetcher:   fetcher,
		feeds:     feeds,
		extractor: annotate.NewExtractor(keywords),
	}
}

// Aggregate runs one full pass. All feed fetches are launched before any
// result is awaited; a feed that fails or times out contributes nothing
// and is invisible beyond the stats. Aggregate is total: it always
// returns, possibly with fewer items than the configured feeds imply.
func (a *Aggregator) Aggregate(ctx context.Context) ([]news.Item, Stats) {
	perFeed := make([][]news.Item, len(a.feeds))

	var wg sync.WaitGroup
	for i, src := range a.feeds {
		wg.Add(1)
		go func(i int, src collect.FeedSource) {
			defer wg.Done()
			perFeed[i] = a.fetcher.Fetch(ctx, src)
		}(i, src)
	}
	wg.Wait()

	stats := Stats{Sources: make(map[string]int)}
	var items []news.Item
	for i, batch := range perFeed {
		if len(batch) == 0 {
			stats.FailedFeeds++
			continue
		}
		stats.Sources[a.feeds[i].Name] += len(batch)
		items = append(items, batch...)
	}
	stats.Total = len(items)

	for i := range items {
		a.annotate(&items[i])
	}

	var clusterRes cluster.Result
	items, clusterRes = cluster.Assign(items)
	stats.Clusters = clusterRes.Clusters
	stats.Clustered = clusterRes.Clustered

	sortByRecency(items)

	log.Printf("Aggregated %d items from %d/%d feeds", stats.Total, len(a.feeds)-stats.FailedFeeds, len(a.feeds))
	return items, stats
}

// annotate fills in derived fields. Keywords is always non-nil afterwards;
// a summary is produced only when the item has at least one keyword hit
// and a description long enough to carry signal.
func (a *Aggregator) annotate(item *news.Item) {
	item.Keywords = a.extractor.Extract(item.Title + " " + item.Description)
	if len(item.Keywords) > 0 && utf8.RuneCountInString(item.Description) > annotate.SummaryMinDescription {
		item.Summary = annotate.Summarize(item.Title, item.Description)
	}
}

// sortByRecency orders items by publish time descending. When either side
// of a comparison has no timestamp the two compare equal, preserving
// their relative order; undated items are not forced to either end.
func sortByRecency(items []news.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].PublishedAt == nil || items[j].PublishedAt == nil {
			return false
		}
		return items[i].PublishedAt.After(*items[j].PublishedAt)
	})
}

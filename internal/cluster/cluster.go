// Package cluster groups near-duplicate news items across sources.
//
// Grouping is a title-prefix heuristic, not semantic dedup: long titles
// cluster on their first four significant words, short titles only on an
// exact match. The false positives this allows (and the near-duplicates
// it misses on short titles) are an accepted precision/recall tradeoff.
package cluster

import (
	"log"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jwulan/newsdigest/internal/news"
)

const (
	// shortTitleLen is the title length below which only exact matches
	// cluster; word-prefix truncation is too aggressive for short titles.
	shortTitleLen = 20

	// minWordLen drops filler words before the prefix is taken.
	minWordLen = 4

	// prefixWords is the number of significant words forming a cluster key.
	prefixWords = 4
)

// Result reports what a clustering pass did.
type Result struct {
	Clusters  int
	Clustered int
}

// Assign groups items by cluster key and annotates every member of a
// group of two or more with a shared ClusterID. IDs are a counter
// starting at 0, assigned in the order cluster keys first appear in the
// input. Singleton groups pass through unchanged. The returned slice
// lists groups in key first-insertion order, members in input order.
func Assign(items []news.Item) ([]news.Item, Result) {
	groups := make(map[string][]news.Item, len(items))
	var order []string

	for _, item := range items {
		key := keyFor(item.Title)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}

	out := make([]news.Item, 0, len(items))
	var res Result
	nextID := 0
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			out = append(out, members...)
			continue
		}
		id := strconv.Itoa(nextID)
		nextID++
		for _, m := range members {
			m.ClusterID = id
			out = append(out, m)
		}
		res.Clusters++
		res.Clustered += len(members)
	}

	if res.Clusters > 0 {
		log.Printf("Clustered %d items into %d groups", res.Clustered, res.Clusters)
	}
	return out, res
}

// keyFor computes the grouping key for a title. Short titles key on the
// exact string as given; longer ones on the normalized four-word prefix.
func keyFor(title string) string {
	if utf8.RuneCountInString(title) < shortTitleLen {
		return title
	}

	words := strings.Fields(normalizeTitle(title))
	var kept []string
	for _, w := range words {
		if utf8.RuneCountInString(w) >= minWordLen {
			kept = append(kept, w)
			if len(kept) == prefixWords {
				break
			}
		}
	}
	return strings.Join(kept, " ")
}

// normalizeTitle lowercases and strips everything but letters, digits
// and spaces, collapsing runs of whitespace.
func normalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

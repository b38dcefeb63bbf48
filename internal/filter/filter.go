// Package filter narrows and pages aggregated item lists for the web API.
package filter

import (
	"strings"

	"github.com/jwulan/newsdigest/internal/news"
)

// Apply keeps items matching the category and keyword. CategoryAll (or the
// empty category) passes everything; any other value requires an exact
// category match. A non-empty keyword is matched case-insensitively as a
// substring of the title, the description, or any extracted keyword;
// one hit passes the item.
func Apply(items []news.Item, category news.Category, keyword string) []news.Item {
	filtered := items
	if category != news.CategoryAll && category != "" {
		filtered = nil
		for _, item := range items {
			if item.Category == category {
				filtered = append(filtered, item)
			}
		}
	}

	if keyword == "" {
		return filtered
	}

	lower := strings.ToLower(keyword)
	var out []news.Item
	for _, item := range filtered {
		if matchesKeyword(item, lower) {
			out = append(out, item)
		}
	}
	return out
}

func matchesKeyword(item news.Item, lowerKeyword string) bool {
	if strings.Contains(strings.ToLower(item.Title), lowerKeyword) {
		return true
	}
	if strings.Contains(strings.ToLower(item.Description), lowerKeyword) {
		return true
	}
	for _, k := range item.Keywords {
		if strings.Contains(strings.ToLower(k), lowerKeyword) {
			return true
		}
	}
	return false
}

// Page is one slice of a filtered item list.
type Page struct {
	Items   []news.Item
	Total   int
	Page    int
	HasMore bool
}

// Paginate slices items for a 1-indexed page. Out-of-range pages yield an
// empty page, not an error.
func Paginate(items []news.Item, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	total := len(items)

	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:   items[start:end],
		Total:   total,
		Page:    page,
		HasMore: page*pageSize < total,
	}
}

// Package digest renders the top-ranked items into email-ready projections.
package digest

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jwulan/newsdigest/internal/news"
)

const (
	// DefaultTopN is how many top-ranked items a digest covers.
	DefaultTopN = 15

	textDescriptionLimit   = 100
	markupDescriptionLimit = 200
)

//go:embed digest.html.tmpl
var htmlTemplateSrc string

var htmlTemplate = template.Must(template.New("digest").Parse(htmlTemplateSrc))

// Digest is a rendered summary in three parallel projections: plain text
// and HTML for email dispatch, markdown for the web preview.
type Digest struct {
	Text     string
	HTML     string
	Markdown string
}

// sourceGroup keeps a source's items together, in the order sources are
// first encountered in the top-N list.
type sourceGroup struct {
	Source string
	Items  []news.Item
}

// Render takes the top topN items of an already-sorted list and produces
// the digest projections, grouped by source.
func Render(items []news.Item, topN int, now time.Time) *Digest {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(items) > topN {
		items = items[:topN]
	}

	groups := groupBySource(items)
	return &Digest{
		Text:     renderText(groups),
		HTML:     renderHTML(groups, now),
		Markdown: renderMarkdown(groups, now),
	}
}

func groupBySource(items []news.Item) []sourceGroup {
	index := make(map[string]int)
	var groups []sourceGroup
	for _, item := range items {
		i, ok := index[item.Source]
		if !ok {
			i = len(groups)
			index[item.Source] = i
			groups = append(groups, sourceGroup{Source: item.Source})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

func renderText(groups []sourceGroup) string {
	var b strings.Builder
	b.WriteString("📰 Daily News Digest\n\n")

	for _, g := range groups {
		fmt.Fprintf(&b, "\n[%s]\n", g.Source)
		for i, item := range g.Items {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item.Title)
			if item.Description != "" {
				fmt.Fprintf(&b, "   %s\n", truncate(item.Description, textDescriptionLimit))
			}
			fmt.Fprintf(&b, "   Link: %s\n\n", item.Link)
		}
	}
	return b.String()
}

// htmlItem is a pre-truncated item handed to the HTML template.
type htmlItem struct {
	Title       string
	Link        string
	Description string
	Published   string
}

type htmlGroup struct {
	Source string
	Items  []htmlItem
}

func renderHTML(groups []sourceGroup, now time.Time) string {
	data := struct {
		Date   string
		Groups []htmlGroup
	}{
		Date: now.Format("Monday, January 2, 2006"),
	}
	for _, g := range groups {
		hg := htmlGroup{Source: g.Source}
		for _, item := range g.Items {
			hi := htmlItem{
				Title:       item.Title,
				Link:        item.Link,
				Description: truncate(item.Description, markupDescriptionLimit),
			}
			if item.PublishedAt != nil {
				hi.Published = item.PublishedAt.Format("Jan 2, 2006 15:04 MST")
			}
			hg.Items = append(hg.Items, hi)
		}
		data.Groups = append(data.Groups, hg)
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		// The template is embedded and the data is plain values; an
		// execution failure here is a programming error.
		panic(fmt.Sprintf("digest template: %v", err))
	}
	return buf.String()
}

func renderMarkdown(groups []sourceGroup, now time.Time) string {
	var b strings.Builder
	b.WriteString("# 📰 Daily News Digest\n\n")
	fmt.Fprintf(&b, "_%s_\n", now.Format("Monday, January 2, 2006"))

	for _, g := range groups {
		fmt.Fprintf(&b, "\n## %s\n\n", g.Source)
		for i, item := range g.Items {
			fmt.Fprintf(&b, "%d. [%s](%s)", i+1, item.Title, item.Link)
			if item.Description != "" {
				fmt.Fprintf(&b, " - %s", truncate(item.Description, markupDescriptionLimit))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// truncate cuts s at limit runes, appending an ellipsis marker only when
// something was actually cut.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

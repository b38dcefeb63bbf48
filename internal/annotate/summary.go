package annotate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// minSegmentLen filters out fragments and boilerplate when splitting
	// text into sentence-like segments.
	minSegmentLen = 30

	// SummaryMinDescription is the description length below which
	// summarization is skipped entirely.
	SummaryMinDescription = 100
)

var sentenceBreak = regexp.MustCompile(`[.!?]+`)

// Summarize produces a short extractive summary from an item's title and
// description: the first, middle and last sentence-like segments longer
// than minSegmentLen, deduplicated when fewer than three distinct segments
// exist. Returns "" when no segment qualifies.
func Summarize(title, description string) string {
	text := StripMarkup(title + " " + description)

	var segments []string
	for _, seg := range sentenceBreak.Split(text, -1) {
		seg = strings.TrimSpace(seg)
		if utf8.RuneCountInString(seg) > minSegmentLen {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return ""
	}

	picks := []int{0, len(segments) / 2, len(segments) - 1}
	var parts []string
	last := -1
	for _, idx := range picks {
		if idx == last {
			continue
		}
		last = idx
		parts = append(parts, segments[idx]+".")
	}
	return strings.Join(parts, " ")
}

// StripMarkup flattens HTML markup to plain text. Input without markup
// passes through with whitespace normalized.
func StripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

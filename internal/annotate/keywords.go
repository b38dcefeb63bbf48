// Package annotate derives keyword and summary signals for news items.
package annotate

import "strings"

// Extractor scans text against a fixed vocabulary of domain terms.
type Extractor struct {
	vocabulary []string
	lowered    []string
}

// NewExtractor creates an extractor for the given vocabulary.
func NewExtractor(vocabulary []string) *Extractor {
	lowered := make([]string, len(vocabulary))
	for i, term := range vocabulary {
		lowered[i] = strings.ToLower(term)
	}
	return &Extractor{vocabulary: vocabulary, lowered: lowered}
}

// Extract returns the vocabulary terms found in text. Matching is
// case-insensitive substring; each term appears at most once, in
// vocabulary order. The result is never nil.
func (e *Extractor) Extract(text string) []string {
	found := []string{}
	seen := make(map[string]struct{})
	lower := strings.ToLower(text)
	for i, term := range e.lowered {
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		if strings.Contains(lower, term) {
			seen[term] = struct{}{}
			found = append(found, e.vocabulary[i])
		}
	}
	return found
}

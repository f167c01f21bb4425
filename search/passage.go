package search

import (
	"regexp"
	"strings"
)

// Languages recorded on indexed passages.
const (
	LanguageEnglish = "english"
	LanguageHindi   = "hindi"
	LanguageUnknown = "unknown"
)

// Passage is one indexed chunk of source text and its metadata.
type Passage struct {
	// ID is the id of the source record (e.g. "ipc_420"), shared by all of
	// its chunks.
	ID          string  `json:"id,omitempty"`
	Content     string  `json:"content"`
	Language    string  `json:"language"`
	Granularity string  `json:"granularity"`
	Section     string  `json:"section,omitempty"`
	Page        string  `json:"page,omitempty"`
	Score       float64 `json:"score,omitempty"`
}

// Query is a search request with its language hint separated out.
type Query struct {
	Text string
	// Language restricts results to one language. Empty means all.
	Language string
}

var hintPattern = regexp.MustCompile(`(?i)\[(hindi|english|both|all)\]`)

// ParseQuery strips inline language hints from raw. "[hindi]" wins over
// "[english]"; "[both]" and "[all]" clear the filter.
func ParseQuery(raw string) Query {
	var q Query
	hints := map[string]bool{}
	for _, m := range hintPattern.FindAllStringSubmatch(raw, -1) {
		hints[strings.ToLower(m[1])] = true
	}
	switch {
	case hints["hindi"]:
		q.Language = LanguageHindi
	case hints["english"]:
		q.Language = LanguageEnglish
	}
	q.Text = strings.Join(strings.Fields(hintPattern.ReplaceAllString(raw, " ")), " ")
	return q
}

// filterLanguage keeps the passages in lang, or all of them when lang is empty.
func filterLanguage(passages []Passage, lang string) []Passage {
	if lang == "" {
		return passages
	}
	out := passages[:0:0]
	for _, p := range passages {
		if p.Language == lang {
			out = append(out, p)
		}
	}
	return out
}

package utils

import (
	"strings"

	"golang.org/x/text/width"
)

// SuggestionFilter drops every form of what the user typed, and repeats that
// differ only in case or character width, from a result list.
// It is not safe for concurrent use; create one per request.
type SuggestionFilter struct {
	seen map[string]struct{}
}

// NewSuggestionFilter excludes each typed form up front, such as a romaji
// prefix together with its kana.
func NewSuggestionFilter(typed ...string) *SuggestionFilter {
	f := &SuggestionFilter{seen: make(map[string]struct{}, 16)}
	for _, t := range typed {
		if t = strings.TrimSpace(t); t != "" {
			f.seen[foldWord(t)] = struct{}{}
		}
	}
	return f
}

// ShouldInclude reports whether word is new and marks it as seen.
func (f *SuggestionFilter) ShouldInclude(word string) bool {
	key := foldWord(word)
	if _, ok := f.seen[key]; ok {
		return false
	}
	f.seen[key] = struct{}{}
	return true
}

// FilterWords keeps the items whose word f accepts, in order.
func FilterWords[T any](f *SuggestionFilter, items []T, word func(T) string) []T {
	kept := make([]T, 0, len(items))
	for _, it := range items {
		if f.ShouldInclude(word(it)) {
			kept = append(kept, it)
		}
	}
	return kept
}

func foldWord(s string) string {
	return strings.ToLower(width.Fold.String(s))
}

// Package suggest is the core, routing prefix queries to the per-language index and re-ranking them for a user.
package suggest

import "github.com/bastiangx/wordtrail/pkg/personalize"

// CorpusSource supplies word frequencies per language and word list variant.
type CorpusSource interface {
	FrequencyDict(lang, variant string) (map[string]float64, error)
}

// IRecommender defines the interface for multi-language recommendation engines
type IRecommender interface {
	// Recommend returns up to topN ranked words starting with prefix
	Recommend(prefix, lang string, topN int, profile *personalize.Profile) ([]Suggestion, error)

	// MinPrefixForWord returns how many characters surface word in the top-N
	MinPrefixForWord(word, lang string, topN int, profile *personalize.Profile) (int, error)

	// WordFrequency returns the corpus frequency of word, 0 when absent
	WordFrequency(word, lang string) (float64, error)

	// Languages lists the supported language codes
	Languages() []string

	// State reports whether the indexes are usable
	State() State

	// Stats returns statistics about the loaded indexes
	Stats() map[string]int
}

// Package personalize keeps per-user word selection history and blends it into corpus frequencies.
//
// A Profile is a plain value with no internal locking: it assumes a single
// writer at a time. Callers that share a profile between goroutines must
// serialize RecordSelection against everything else.
package personalize

import (
	"sort"
	"strings"
	"time"
)

// Profile is the selection history of one user in one language.
type Profile struct {
	UserID string `msgpack:"id"`
	// WordCounts counts selections per lowercased word.
	WordCounts map[string]int `msgpack:"counts"`
	// WordTimestamps records when each selection happened, oldest first.
	WordTimestamps map[string][]time.Time `msgpack:"times"`
	// PrefixSelections lists the words picked after typing each prefix.
	PrefixSelections map[string][]string `msgpack:"prefixes"`
}

// WordCount pairs a word with its selection count.
type WordCount struct {
	Word  string
	Count int
}

// NewProfile returns an empty profile for userID.
func NewProfile(userID string) *Profile {
	return &Profile{
		UserID:           userID,
		WordCounts:       make(map[string]int),
		WordTimestamps:   make(map[string][]time.Time),
		PrefixSelections: make(map[string][]string),
	}
}

// RecordSelection notes that the user picked word, optionally after typing prefix.
func (p *Profile) RecordSelection(word, prefix string) {
	p.RecordSelectionAt(word, prefix, time.Now())
}

// RecordSelectionAt is RecordSelection with an explicit instant.
func (p *Profile) RecordSelectionAt(word, prefix string, at time.Time) {
	p.ensureMaps()

	lower := strings.ToLower(word)
	p.WordCounts[lower]++
	p.WordTimestamps[lower] = append(p.WordTimestamps[lower], at)

	if prefix != "" {
		lowerPrefix := strings.ToLower(prefix)
		p.PrefixSelections[lowerPrefix] = append(p.PrefixSelections[lowerPrefix], lower)
	}
}

// ensureMaps allocates maps a decoded or zero-value profile may be missing.
func (p *Profile) ensureMaps() {
	if p.WordCounts == nil {
		p.WordCounts = make(map[string]int)
	}
	if p.WordTimestamps == nil {
		p.WordTimestamps = make(map[string][]time.Time)
	}
	if p.PrefixSelections == nil {
		p.PrefixSelections = make(map[string][]string)
	}
}

// Usage returns how many times word was selected.
func (p *Profile) Usage(word string) int {
	if p == nil {
		return 0
	}
	return p.WordCounts[strings.ToLower(word)]
}

// PrefixHistory counts the words chosen after prefix.
func (p *Profile) PrefixHistory(prefix string) map[string]int {
	history := make(map[string]int)
	if p == nil {
		return history
	}
	for _, word := range p.PrefixSelections[strings.ToLower(prefix)] {
		history[word]++
	}
	return history
}

// TotalSelections is the sum of all word counts.
func (p *Profile) TotalSelections() int {
	if p == nil {
		return 0
	}
	total := 0
	for _, count := range p.WordCounts {
		total += count
	}
	return total
}

// TopWords returns the n most selected words; ties are ordered alphabetically.
func (p *Profile) TopWords(n int) []WordCount {
	if p == nil || n <= 0 {
		return []WordCount{}
	}

	words := make([]WordCount, 0, len(p.WordCounts))
	for word, count := range p.WordCounts {
		words = append(words, WordCount{Word: word, Count: count})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}

// Score is the personalized score of word at the current time.
func (p *Profile) Score(word string, baseFrequency, decay float64) float64 {
	return Score(word, baseFrequency, p, decay)
}

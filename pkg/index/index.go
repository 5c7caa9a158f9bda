// Package index holds the per-language reverse prefix index: every prefix of every corpus word points at
// the frequency-ordered list of words that start with it.
//
// An Index is built once from a word→frequency corpus and never changes afterwards,
// so any number of goroutines may call its lookup methods without locking.
//
// Prefixes are counted in Unicode code points, not bytes. The index stores one list
// per distinct prefix, which is O(Σ len(word)²) entries in the worst case. That is
// fine for vocabularies of tens of thousands of words and is the scaling limit of
// this design: very large corpora should be trimmed before building.
package index

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// ErrEmptyCorpus is returned when an index is built from a corpus with no words.
var ErrEmptyCorpus = errors.New("index: empty corpus")

// Entry is a corpus word and its frequency.
type Entry struct {
	Word      string
	Frequency float64
}

// Index is an immutable prefix index for one language.
type Index struct {
	lang     string
	entries  *patricia.Trie
	freqs    map[string]float64
	words    int
	prefixes int
	maxDepth int
}

// Build indexes every prefix of every word in corpus. Frequencies must lie in (0, 1].
func Build(lang string, corpus map[string]float64) (*Index, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("%w for language %q", ErrEmptyCorpus, lang)
	}

	log.Debugf("[%s] building prefix index from %d words", lang, len(corpus))

	groups := make(map[string][]Entry)
	freqs := make(map[string]float64, len(corpus))
	maxDepth := 0

	for word, freq := range corpus {
		if word == "" {
			return nil, fmt.Errorf("index: empty word in %q corpus", lang)
		}
		if math.IsNaN(freq) || freq <= 0 || freq > 1 {
			return nil, fmt.Errorf("index: word %q in %q corpus has frequency %v outside (0, 1]", word, lang, freq)
		}

		freqs[word] = freq
		lower := strings.ToLower(word)
		entry := Entry{Word: word, Frequency: freq}

		depth := 0
		for end := 0; end < len(lower); {
			_, size := utf8.DecodeRuneInString(lower[end:])
			end += size
			depth++
			prefix := lower[:end]
			groups[prefix] = append(groups[prefix], entry)
		}
		if depth > maxDepth {
			maxDepth = depth
		}
	}

	trie := patricia.NewTrie()
	for prefix, list := range groups {
		sortEntries(list)
		trie.Insert(patricia.Prefix(prefix), list)
	}

	idx := &Index{
		lang:     lang,
		entries:  trie,
		freqs:    freqs,
		words:    len(freqs),
		prefixes: len(groups),
		maxDepth: maxDepth,
	}

	log.Debugf("[%s] prefix index ready: %d prefixes", lang, idx.prefixes)
	return idx, nil
}

// sortEntries orders by frequency, highest first. Equal frequencies fall back
// to byte order of the word so the result never depends on map iteration.
func sortEntries(list []Entry) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Frequency != list[j].Frequency {
			return list[i].Frequency > list[j].Frequency
		}
		return list[i].Word < list[j].Word
	})
}

// Language returns the language code the index was built for.
func (idx *Index) Language() string {
	return idx.lang
}

// Lookup returns up to topN words starting with prefix, most frequent first.
// Unknown and empty prefixes, as well as topN <= 0, give an empty result.
func (idx *Index) Lookup(prefix string, topN int) []Entry {
	return idx.LookupMin(prefix, topN, 0)
}

// LookupMin is Lookup restricted to words with frequency >= minFrequency.
func (idx *Index) LookupMin(prefix string, topN int, minFrequency float64) []Entry {
	if topN <= 0 {
		return []Entry{}
	}

	list := idx.entry(prefix)
	size := topN
	if len(list) < size {
		size = len(list)
	}

	result := make([]Entry, 0, size)
	for _, e := range list {
		// lists are sorted, nothing after this passes either
		if e.Frequency < minFrequency {
			break
		}
		result = append(result, e)
		if len(result) == topN {
			break
		}
	}
	return result
}

// Candidates returns every word under prefix in ranked order.
func (idx *Index) Candidates(prefix string) []Entry {
	list := idx.entry(prefix)
	result := make([]Entry, len(list))
	copy(result, list)
	return result
}

// Count returns how many words share prefix.
func (idx *Index) Count(prefix string) int {
	return len(idx.entry(prefix))
}

func (idx *Index) entry(prefix string) []Entry {
	if prefix == "" {
		return nil
	}
	item := idx.entries.Get(patricia.Prefix(strings.ToLower(prefix)))
	if item == nil {
		return nil
	}
	return item.([]Entry)
}

// Frequency returns the corpus frequency of word, trying the lowercased form
// first and then the word as given. Missing words have frequency 0.
func (idx *Index) Frequency(word string) float64 {
	if freq, ok := idx.freqs[strings.ToLower(word)]; ok {
		return freq
	}
	if freq, ok := idx.freqs[word]; ok {
		return freq
	}
	return 0
}

// Stats returns statistics about the index.
func (idx *Index) Stats() map[string]int {
	return map[string]int{
		"totalWords": idx.words,
		"prefixes":   idx.prefixes,
		"maxDepth":   idx.maxDepth,
	}
}

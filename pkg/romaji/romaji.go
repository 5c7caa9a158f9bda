// Package romaji turns Latin-script Japanese input into hiragana so it can be looked up in a kana corpus.
//
// Conversion is a single longest-prefix match against a fixed syllable table:
// the matched syllable becomes kana and whatever follows is kept as typed.
// Everything in this package is safe for concurrent use.
package romaji

import (
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
	"golang.org/x/text/width"
)

// syllables holds the table keys so the longest key prefixing an input can be
// found with one trie walk.
var syllables = newSyllableTrie()

func newSyllableTrie() *patricia.Trie {
	trie := patricia.NewTrie()
	for key, kana := range hiragana {
		trie.Insert(patricia.Prefix(key), kana)
	}
	return trie
}

// Normalize converts romaji input to hiragana. Empty input, input that is
// already in another script and input no syllable matches are returned as is.
//
// Full-width Latin letters (as typed with a Japanese IME) are the one kind of
// non-ASCII input that is converted: they are folded to ASCII first, so
// "ｋａ" gives "か" and the remainder after the syllable comes back in ASCII.
func Normalize(text string) string {
	if text == "" {
		return text
	}

	folded := width.Fold.String(text)
	if !IsRomaji(folded) {
		return text
	}

	if kana, ok := ToHiragana(folded); ok {
		return kana
	}
	return text
}

// IsRomaji reports whether text consists only of ASCII letters, apostrophes and hyphens.
func IsRomaji(text string) bool {
	if text == "" {
		return false
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c == '\'' || c == '-':
		default:
			return false
		}
	}
	return true
}

// ToHiragana replaces the longest syllable prefixing text with its kana.
// The rest of the (lowercased) input follows unchanged. ok is false when no
// syllable prefixes text.
func ToHiragana(text string) (kana string, ok bool) {
	lower := strings.ToLower(text)

	var best string
	var bestKana string
	_ = syllables.VisitPrefixes(patricia.Prefix(lower), func(p patricia.Prefix, item patricia.Item) error {
		key := string(p)
		if len(key) > len(best) || (len(key) == len(best) && key < best) {
			best = key
			bestKana = item.(string)
		}
		return nil
	})

	if best == "" {
		return text, false
	}
	return bestKana + lower[len(best):], true
}

// Lookup returns the kana for an exact syllable.
func Lookup(syllable string) (string, bool) {
	kana, ok := hiragana[strings.ToLower(syllable)]
	return kana, ok
}

// Syllables returns the number of table entries.
func Syllables() int {
	return len(hiragana)
}

package romaji

import (
	"strings"
	"unicode/utf8"

	"github.com/tchap/go-patricia/v2/patricia"
)

// spellings is the syllable table turned around: kana to romaji.
var spellings = newSpellingTrie()

func newSpellingTrie() *patricia.Trie {
	trie := patricia.NewTrie()
	for key, kana := range hiragana {
		// one spelling per kana, the shortest and then alphabetical
		if prev := trie.Get(patricia.Prefix(kana)); prev != nil {
			p := prev.(string)
			if len(p) < len(key) || (len(p) == len(key) && p < key) {
				continue
			}
			trie.Set(patricia.Prefix(kana), key)
			continue
		}
		trie.Insert(patricia.Prefix(kana), key)
	}
	return trie
}

const sokuon = 'っ'

// ToRomaji spells a whole kana word in romaji, syllable by syllable, longest
// kana match first. Katakana is read as hiragana. A small tsu doubles the
// consonant that follows it. Runes the table has no spelling for, such as
// kanji, are kept.
func ToRomaji(text string) string {
	s := katakanaToHiragana(text)
	var b strings.Builder
	b.Grow(len(s))

	for s != "" {
		if kana, roma := longestKana(s); kana != "" {
			b.WriteString(roma)
			s = s[len(kana):]
			continue
		}

		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r == sokuon {
			if _, next := longestKana(s); next != "" && !isVowel(next[0]) {
				b.WriteByte(next[0])
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func longestKana(s string) (kana, roma string) {
	_ = spellings.VisitPrefixes(patricia.Prefix(s), func(p patricia.Prefix, item patricia.Item) error {
		if len(p) > len(kana) {
			kana, roma = string(p), item.(string)
		}
		return nil
	})
	return kana, roma
}

func isVowel(c byte) bool {
	return strings.IndexByte("aiueo", c) >= 0
}

// katakanaToHiragana maps ァ..ヶ onto ぁ..ゖ and leaves everything else alone.
func katakanaToHiragana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ァ' && r <= 'ヶ' {
			return r - ('ァ' - 'ぁ')
		}
		return r
	}, s)
}

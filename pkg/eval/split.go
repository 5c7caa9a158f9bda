// Package eval measures how many keystrokes the recommender saves on real sentences
// and how well it ranks the words a user goes on to type.
package eval

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Japanese particles and copulas split into their own tokens, longest first.
var particles = []string{"から", "まで", "です", "ます", "は", "を", "に", "で", "が", "と", "の", "も", "へ", "や", "か", "ね", "よ", "だ"}

const japanesePunctuation = "。、！？"

// SplitWords breaks sentence into the words a user would type one by one.
//
// Japanese text has no spaces, so runs of kana and kanji are cut at
// punctuation and at particles, which become words of their own. Other
// languages are lowercased and split into runs of letters, digits and '_'.
func SplitWords(sentence, lang string) []string {
	if lang == "ja" {
		return splitJapanese(sentence)
	}
	return splitLatin(sentence)
}

func splitLatin(sentence string) []string {
	return strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isJapanese(r rune) bool {
	// ー is in the Common script but only ever appears in kana words.
	return r == 'ー' || unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han)
}

func splitJapanese(sentence string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	rest := sentence
	for rest != "" {
		r, size := utf8.DecodeRuneInString(rest)

		switch {
		case strings.ContainsRune(japanesePunctuation, r):
			flush()
		case isJapanese(r):
			if particle, ok := particleAt(rest); ok {
				flush()
				words = append(words, particle)
				size = len(particle)
			} else {
				current.WriteRune(r)
			}
		default:
			flush()
		}
		rest = rest[size:]
	}
	flush()
	return words
}

func particleAt(s string) (string, bool) {
	for _, p := range particles {
		if strings.HasPrefix(s, p) {
			return p, true
		}
	}
	return "", false
}

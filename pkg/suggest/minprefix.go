package suggest

import (
	"strings"

	"github.com/bastiangx/wordtrail/pkg/personalize"
)

// PrefixDetail describes the shortest prefix that surfaces a word.
type PrefixDetail struct {
	Word        string
	Length      int
	Prefix      string
	Found       bool
	Suggestions []Suggestion
}

// MinPrefixForWord grows a prefix of word one character at a time and returns
// the first length at which word shows up in the top-N. When it never does,
// the full length of word is returned.
func (r *Recommender) MinPrefixForWord(word, lang string, topN int, profile *personalize.Profile) (int, error) {
	detail, err := r.MinPrefixDetail(word, lang, topN, profile)
	if err != nil {
		return 0, err
	}
	return detail.Length, nil
}

// MinPrefixDetail is MinPrefixForWord that also reports the prefix and the
// suggestions seen at that length.
func (r *Recommender) MinPrefixDetail(word, lang string, topN int, profile *personalize.Profile) (PrefixDetail, error) {
	if _, err := r.index(lang); err != nil {
		return PrefixDetail{}, err
	}

	runes := []rune(word)
	target := strings.ToLower(word)
	detail := PrefixDetail{Word: word, Length: len(runes), Prefix: word}

	for i := 1; i <= len(runes); i++ {
		prefix := string(runes[:i])
		suggestions, err := r.Recommend(prefix, lang, topN, profile)
		if err != nil {
			return PrefixDetail{}, err
		}
		for _, s := range suggestions {
			if strings.ToLower(s.Word) == target {
				return PrefixDetail{
					Word:        word,
					Length:      i,
					Prefix:      prefix,
					Found:       true,
					Suggestions: suggestions,
				}, nil
			}
		}
		if i == len(runes) {
			detail.Suggestions = suggestions
		}
	}
	return detail, nil
}

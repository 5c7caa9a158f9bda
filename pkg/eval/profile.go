package eval

import "github.com/bastiangx/wordtrail/pkg/personalize"

// maxRecordedPrefix caps how many leading characters of a word count as the prefix it was picked from.
const maxRecordedPrefix = 3

// BuildProfile replays sentences as if the user had picked each word after
// typing one, two and three of its characters.
func BuildProfile(userID string, sentences []string, lang string) *personalize.Profile {
	profile := personalize.NewProfile(userID)
	for _, sentence := range sentences {
		for _, word := range SplitWords(sentence, lang) {
			runes := []rune(word)
			for i := 1; i <= min(len(runes), maxRecordedPrefix); i++ {
				profile.RecordSelection(word, string(runes[:i]))
			}
		}
	}
	return profile
}

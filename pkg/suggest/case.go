package suggest

import "unicode"

// CapitalPositions marks which runes of prefix are upper case.
func CapitalPositions(prefix string) []bool {
	positions := make([]bool, 0, len(prefix))
	hasUpper := false
	for _, r := range prefix {
		upper := unicode.IsUpper(r)
		hasUpper = hasUpper || upper
		positions = append(positions, upper)
	}
	if !hasUpper {
		return nil
	}
	return positions
}

// ApplyCapitalization upper-cases the runes of word at the positions the user typed in upper case.
func ApplyCapitalization(word string, capitalPositions []bool) string {
	if len(capitalPositions) == 0 {
		return word
	}

	wordRunes := []rune(word)
	for i := 0; i < len(wordRunes) && i < len(capitalPositions); i++ {
		if capitalPositions[i] {
			wordRunes[i] = unicode.ToUpper(wordRunes[i])
		}
	}
	return string(wordRunes)
}

// MatchCase applies the capitalization of prefix to every suggestion in place.
func MatchCase(prefix string, suggestions []Suggestion) []Suggestion {
	positions := CapitalPositions(prefix)
	if positions == nil {
		return suggestions
	}
	for i := range suggestions {
		suggestions[i].Word = ApplyCapitalization(suggestions[i].Word, positions)
	}
	return suggestions
}

package simulate

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
)

// templateShare is the probability of writing a two-word template sentence
// instead of a one-word pattern sentence.
const templateShare = 0.5

// Generate writes n sentences the way persona would in set's language.
// The output depends only on the inputs and the state of rng.
func Generate(persona *Persona, set *LanguageSet, n int, rng *rand.Rand) []string {
	if persona == nil || set == nil || n <= 0 {
		return nil
	}

	prefixes := persona.Prefixes()
	if len(prefixes) == 0 {
		if len(set.CommonSentences) == 0 {
			return nil
		}
		sentences := make([]string, n)
		for i := range sentences {
			sentences[i] = pick(rng, set.CommonSentences)
		}
		return sentences
	}

	if len(persona.Templates) == 0 && len(set.Patterns) == 0 {
		return nil
	}

	sentences := make([]string, 0, n)
	for range n {
		useTemplate := len(persona.Templates) > 0 && (len(set.Patterns) == 0 || rng.Float64() < templateShare)
		if useTemplate {
			template := pick(rng, persona.Templates)
			word := pickWord(rng, persona, prefixes)
			word2 := word
			if len(prefixes) > 1 {
				word2 = pickWord(rng, persona, prefixes)
			}
			sentences = append(sentences, fill(template, word, word2))
			continue
		}

		word := pickWord(rng, persona, prefixes)
		sentences = append(sentences, fill(pick(rng, set.Patterns), word, word))
	}
	return sentences
}

// Generate produces n sentences for the persona id in lang.
func (c *Catalog) Generate(lang, id string, n int, rng *rand.Rand) ([]string, error) {
	set, persona, ok := c.Lookup(lang, id)
	if !ok {
		return nil, fmt.Errorf("no persona %q for language %q", id, lang)
	}
	return Generate(persona, set, n, rng), nil
}

func pick(rng *rand.Rand, items []string) string {
	return items[rng.IntN(len(items))]
}

func pickWord(rng *rand.Rand, p *Persona, prefixes []string) string {
	return pick(rng, p.PreferredWords[pick(rng, prefixes)])
}

func fill(template, word, word2 string) string {
	return strings.NewReplacer("{word2}", word2, "{word}", word).Replace(template)
}

// SentenceFile is where the sentences of user id in lang are kept under dir.
func SentenceFile(dir, id, lang string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_sentences.txt", id, lang))
}

// SaveSentences writes one sentence per line to SentenceFile.
func SaveSentences(dir, id, lang string, sentences []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create sentences directory: %w", err)
	}

	f, err := os.Create(SentenceFile(dir, id, lang))
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, s := range sentences {
		w.WriteString(s)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadSentences reads the non-empty lines of SentenceFile, falling back to
// "<id>_sentences.txt" for files written before languages were split.
func LoadSentences(dir, id, lang string) ([]string, error) {
	f, err := os.Open(SentenceFile(dir, id, lang))
	if os.IsNotExist(err) {
		f, err = os.Open(filepath.Join(dir, id+"_sentences.txt"))
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sentences []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			sentences = append(sentences, line)
		}
	}
	return sentences, scanner.Err()
}

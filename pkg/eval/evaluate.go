package eval

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/bastiangx/wordtrail/pkg/personalize"
	"github.com/bastiangx/wordtrail/pkg/romaji"
	"github.com/bastiangx/wordtrail/pkg/suggest"
	"github.com/charmbracelet/log"
)

var (
	// ErrNoWords marks a sentence SplitWords finds nothing in.
	ErrNoWords = errors.New("eval: sentence has no words")
	// ErrNoResults is returned by TestBatch when every sentence was skipped.
	ErrNoResults = errors.New("eval: no sentence could be processed")
)

// DefaultTopN is the list length a user scans when testing single sentences.
const DefaultTopN = 10

// DefaultKs are the cut-offs Evaluate reports when none are given.
var DefaultKs = []int{1, 3, 5, 10}

// Recommender is the part of suggest.Recommender evaluation needs.
type Recommender interface {
	Recommend(prefix, lang string, topN int, profile *personalize.Profile) ([]suggest.Suggestion, error)
	MinPrefixForWord(word, lang string, topN int, profile *personalize.Profile) (int, error)
}

// WordResult is the typing cost of one word.
type WordResult struct {
	Word         string `json:"word"`
	Prefix       string `json:"prefix"`
	PrefixLength int    `json:"prefix_length"`
	Length       int    `json:"length"`
	CharsSaved   int    `json:"chars_saved"`
}

// SentenceResult is the typing cost of a whole sentence.
type SentenceResult struct {
	Sentence          string       `json:"sentence"`
	Lang              string       `json:"lang"`
	Words             []WordResult `json:"words"`
	TotalCharsWithout int          `json:"total_chars_without"`
	TotalCharsWith    int          `json:"total_chars_with"`
	CharsSaved        int          `json:"chars_saved"`
	SavingsRate       float64      `json:"savings_rate"`
}

// SentenceOutcome records whether a sentence contributed to a run.
type SentenceOutcome struct {
	Sentence string
	Words    int
	Err      error
}

// Skipped reports whether the sentence was left out.
func (o SentenceOutcome) Skipped() bool {
	return o.Err != nil
}

// aborts reports errors that would fail every remaining sentence too.
func aborts(err error) bool {
	return errors.Is(err, suggest.ErrUnsupportedLanguage) || errors.Is(err, suggest.ErrNotReady)
}

// TestSentence computes, word by word, the shortest prefix after which the
// word shows up in the top DefaultTopN suggestions.
func TestSentence(rec Recommender, sentence, lang string, profile *personalize.Profile) (*SentenceResult, error) {
	return TestSentenceTop(rec, sentence, lang, DefaultTopN, profile)
}

// TestSentenceTop is TestSentence with an explicit list length.
func TestSentenceTop(rec Recommender, sentence, lang string, topN int, profile *personalize.Profile) (*SentenceResult, error) {
	words := SplitWords(sentence, lang)
	if len(words) == 0 {
		return nil, ErrNoWords
	}

	result := &SentenceResult{Sentence: sentence, Lang: lang, Words: make([]WordResult, 0, len(words))}
	for _, word := range words {
		lower := strings.ToLower(word)
		runes := []rune(lower)

		n, err := rec.MinPrefixForWord(lower, lang, topN, profile)
		if err != nil {
			return nil, fmt.Errorf("word %q: %w", word, err)
		}

		result.Words = append(result.Words, WordResult{
			Word:         lower,
			Prefix:       string(runes[:n]),
			PrefixLength: n,
			Length:       len(runes),
			CharsSaved:   len(runes) - n,
		})
		result.TotalCharsWithout += len(runes)
		result.TotalCharsWith += n
	}

	result.CharsSaved = result.TotalCharsWithout - result.TotalCharsWith
	result.SavingsRate = SavingsRate(result.TotalCharsWithout, result.TotalCharsWith)
	return result, nil
}

// Batch aggregates TestSentence over many sentences.
type Batch struct {
	Results           []SentenceResult  `json:"results"`
	Outcomes          []SentenceOutcome `json:"-"`
	SentenceCount     int               `json:"sentence_count"`
	TotalCharsWithout int               `json:"total_chars_without"`
	TotalCharsWith    int               `json:"total_chars_with"`
	TotalCharsSaved   int               `json:"total_chars_saved"`
	AvgSavingsRate    float64           `json:"avg_savings_rate"`
}

// TestBatch runs TestSentenceTop on every sentence. Sentences without words or
// with a failing lookup are skipped; an unsupported language stops the batch.
func TestBatch(rec Recommender, sentences []string, lang string, topN int, profile *personalize.Profile) (*Batch, error) {
	batch := &Batch{Outcomes: make([]SentenceOutcome, 0, len(sentences))}

	for _, sentence := range sentences {
		result, err := TestSentenceTop(rec, sentence, lang, topN, profile)
		if err != nil {
			if aborts(err) {
				return nil, err
			}
			log.Debugf("Skipping sentence %q: %v", sentence, err)
			batch.Outcomes = append(batch.Outcomes, SentenceOutcome{Sentence: sentence, Err: err})
			continue
		}

		batch.Outcomes = append(batch.Outcomes, SentenceOutcome{Sentence: sentence, Words: len(result.Words)})
		batch.Results = append(batch.Results, *result)
		batch.TotalCharsWithout += result.TotalCharsWithout
		batch.TotalCharsWith += result.TotalCharsWith
		batch.TotalCharsSaved += result.CharsSaved
	}

	if len(batch.Results) == 0 {
		return nil, ErrNoResults
	}
	batch.SentenceCount = len(batch.Results)
	batch.AvgSavingsRate = math.Round(SavingsRate(batch.TotalCharsWithout, batch.TotalCharsWith)*100) / 100
	return batch, nil
}

// Report summarizes ranking quality and keystroke savings over a sentence set.
type Report struct {
	TotalWords        int
	PrecisionAtK      map[int]float64
	RecallAtK         map[int]float64
	F1AtK             map[int]float64
	MAP               float64
	TotalCharsWithout int
	TotalCharsWith    int
	CharsSaved        int
	SavingsRate       float64
	Outcomes          []SentenceOutcome
	Skipped           int
	// WordRomaji spells each evaluated Japanese word in romaji; nil for other languages.
	WordRomaji map[string]string `json:",omitempty"`
}

type wordScore struct {
	precision, recall, f1 map[int]float64
	ap                    float64
	length, typed         int
}

// Evaluate treats every word of every sentence as the item the user wants. It
// types the word's shortest surfacing prefix and scores the suggestions shown
// for it at each cut-off in ks.
func Evaluate(rec Recommender, sentences []string, lang string, ks []int, profile *personalize.Profile) (*Report, error) {
	if len(ks) == 0 {
		ks = DefaultKs
	}
	topN := slices.Max(ks)

	report := &Report{
		PrecisionAtK: make(map[int]float64, len(ks)),
		RecallAtK:    make(map[int]float64, len(ks)),
		F1AtK:        make(map[int]float64, len(ks)),
		Outcomes:     make([]SentenceOutcome, 0, len(sentences)),
	}
	var scores []wordScore

	for _, sentence := range sentences {
		words := SplitWords(sentence, lang)
		if len(words) == 0 {
			report.Outcomes = append(report.Outcomes, SentenceOutcome{Sentence: sentence, Err: ErrNoWords})
			report.Skipped++
			continue
		}

		sentenceScores := make([]wordScore, 0, len(words))
		var failed error
		for _, word := range words {
			score, err := scoreWord(rec, strings.ToLower(word), lang, ks, topN, profile)
			if err != nil {
				if aborts(err) {
					return nil, err
				}
				failed = fmt.Errorf("word %q: %w", word, err)
				break
			}
			sentenceScores = append(sentenceScores, score)
		}

		if failed != nil {
			log.Debugf("Skipping sentence %q: %v", sentence, failed)
			report.Outcomes = append(report.Outcomes, SentenceOutcome{Sentence: sentence, Err: failed})
			report.Skipped++
			continue
		}
		report.Outcomes = append(report.Outcomes, SentenceOutcome{Sentence: sentence, Words: len(words)})
		scores = append(scores, sentenceScores...)
		if lang == suggest.Japanese {
			if report.WordRomaji == nil {
				report.WordRomaji = make(map[string]string)
			}
			for _, word := range words {
				w := strings.ToLower(word)
				report.WordRomaji[w] = romaji.ToRomaji(w)
			}
		}
	}

	report.TotalWords = len(scores)
	if len(scores) == 0 {
		for _, k := range ks {
			report.PrecisionAtK[k], report.RecallAtK[k], report.F1AtK[k] = 0, 0, 0
		}
		return report, nil
	}

	for _, s := range scores {
		for _, k := range ks {
			report.PrecisionAtK[k] += s.precision[k]
			report.RecallAtK[k] += s.recall[k]
			report.F1AtK[k] += s.f1[k]
		}
		report.MAP += s.ap
		report.TotalCharsWithout += s.length
		report.TotalCharsWith += s.typed
	}

	n := float64(len(scores))
	for _, k := range ks {
		report.PrecisionAtK[k] /= n
		report.RecallAtK[k] /= n
		report.F1AtK[k] /= n
	}
	report.MAP /= n
	report.CharsSaved = report.TotalCharsWithout - report.TotalCharsWith
	report.SavingsRate = SavingsRate(report.TotalCharsWithout, report.TotalCharsWith)
	return report, nil
}

func scoreWord(rec Recommender, word, lang string, ks []int, topN int, profile *personalize.Profile) (wordScore, error) {
	runes := []rune(word)
	n, err := rec.MinPrefixForWord(word, lang, topN, profile)
	if err != nil {
		return wordScore{}, err
	}

	suggestions, err := rec.Recommend(string(runes[:n]), lang, topN, profile)
	if err != nil {
		return wordScore{}, err
	}
	recommended := make([]string, len(suggestions))
	for i, s := range suggestions {
		recommended[i] = strings.ToLower(s.Word)
	}
	relevant := map[string]bool{word: true}

	score := wordScore{
		precision: make(map[int]float64, len(ks)),
		recall:    make(map[int]float64, len(ks)),
		f1:        make(map[int]float64, len(ks)),
		ap:        AveragePrecision(recommended, relevant),
		length:    len(runes),
		typed:     n,
	}
	for _, k := range ks {
		p := PrecisionAtK(recommended, relevant, k)
		r := RecallAtK(recommended, relevant, k)
		score.precision[k] = p
		score.recall[k] = r
		score.f1[k] = F1(p, r)
	}
	return score, nil
}

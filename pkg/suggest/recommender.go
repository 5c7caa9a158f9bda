package suggest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bastiangx/wordtrail/pkg/index"
	"github.com/bastiangx/wordtrail/pkg/personalize"
	"github.com/bastiangx/wordtrail/pkg/romaji"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnsupportedLanguage is returned for a language with no index.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrNotReady is returned while indexes are still building or after the build failed.
	ErrNotReady = errors.New("recommender not ready")
)

// Japanese prefixes are romaji-normalized before lookup.
const Japanese = "ja"

// DefaultLanguages are built when Options.Languages is empty.
var DefaultLanguages = []string{"en", "it", Japanese}

// DefaultWordlist is the corpus variant read when Options.Wordlist is empty.
const DefaultWordlist = "best"

// State is the build state of a Recommender.
type State int32

const (
	StateBuilding State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Options configures which indexes a Recommender builds and how it scores.
type Options struct {
	Languages []string
	Wordlist  string
	Scorer    personalize.Scorer
}

// Suggestion is a ranked word. Score equals Frequency unless a profile boosted it.
type Suggestion struct {
	Word      string  `json:"word" msgpack:"w"`
	Frequency float64 `json:"frequency" msgpack:"f"`
	Score     float64 `json:"score" msgpack:"s"`
}

// Recommender owns one prefix index per language.
// All query methods are safe for concurrent use once the build has finished.
type Recommender struct {
	langs  []string
	scorer personalize.Scorer

	state   atomic.Int32
	indexes atomic.Pointer[map[string]*index.Index]

	done chan struct{}
	once sync.Once
	err  error
}

// New builds every configured language from source and waits for the build.
func New(ctx context.Context, source CorpusSource, opts Options) (*Recommender, error) {
	r := Load(ctx, source, opts)
	if err := r.Wait(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Load starts building in the background and returns immediately.
// Queries fail with ErrNotReady until State reports StateReady.
func Load(ctx context.Context, source CorpusSource, opts Options) *Recommender {
	r := newRecommender(opts)
	variant := opts.Wordlist
	if variant == "" {
		variant = DefaultWordlist
	}

	go func() {
		r.finish(buildAll(ctx, r.langs, func(lang string) (map[string]float64, error) {
			return source.FrequencyDict(lang, variant)
		}))
	}()
	return r
}

// NewFromCorpora builds indexes from in-memory word→frequency maps, one per language.
func NewFromCorpora(corpora map[string]map[string]float64, opts Options) (*Recommender, error) {
	if len(opts.Languages) == 0 {
		for lang := range corpora {
			opts.Languages = append(opts.Languages, lang)
		}
		sort.Strings(opts.Languages)
	}

	r := newRecommender(opts)
	r.finish(buildAll(context.Background(), r.langs, func(lang string) (map[string]float64, error) {
		corpus, ok := corpora[lang]
		if !ok {
			return nil, fmt.Errorf("no corpus for language %q", lang)
		}
		return corpus, nil
	}))
	if r.err != nil {
		return nil, r.err
	}
	return r, nil
}

func newRecommender(opts Options) *Recommender {
	langs := opts.Languages
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	normalized := make([]string, 0, len(langs))
	for _, lang := range langs {
		normalized = append(normalized, normalizeLanguage(lang))
	}

	r := &Recommender{
		langs:  normalized,
		scorer: opts.Scorer,
		done:   make(chan struct{}),
	}
	r.state.Store(int32(StateBuilding))
	return r
}

func buildAll(ctx context.Context, langs []string, corpus func(string) (map[string]float64, error)) (map[string]*index.Index, error) {
	built := make([]*index.Index, len(langs))
	g, ctx := errgroup.WithContext(ctx)

	for i, lang := range langs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dict, err := corpus(lang)
			if err != nil {
				return fmt.Errorf("failed to load corpus for %s: %w", lang, err)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			idx, err := index.Build(lang, dict)
			if err != nil {
				return err
			}
			built[i] = idx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	indexes := make(map[string]*index.Index, len(langs))
	for i, lang := range langs {
		indexes[lang] = built[i]
	}
	return indexes, nil
}

func (r *Recommender) finish(indexes map[string]*index.Index, err error) {
	r.once.Do(func() {
		if err != nil {
			r.err = err
			r.state.Store(int32(StateFailed))
			log.Errorf("Index build failed: %v", err)
		} else {
			r.indexes.Store(&indexes)
			r.state.Store(int32(StateReady))
			log.Debugf("Indexes ready for %v", r.langs)
		}
		close(r.done)
	})
}

// Wait blocks until the build finishes or ctx is done and returns the build error.
func (r *Recommender) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State reports the build state.
func (r *Recommender) State() State {
	return State(r.state.Load())
}

// Err returns the build error once State is StateFailed.
func (r *Recommender) Err() error {
	if r.State() != StateFailed {
		return nil
	}
	return r.err
}

// Languages returns the configured language codes.
func (r *Recommender) Languages() []string {
	return append([]string(nil), r.langs...)
}

func (r *Recommender) index(lang string) (*index.Index, error) {
	indexes := r.indexes.Load()
	if indexes == nil {
		return nil, ErrNotReady
	}
	idx, ok := (*indexes)[normalizeLanguage(lang)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return idx, nil
}

func normalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// Recommend returns up to topN words starting with prefix, most relevant first.
// Japanese prefixes typed in romaji are converted to hiragana first. With a
// profile, words the user picked before are boosted; the profile only reorders
// the words the prefix matches and never adds new ones.
func (r *Recommender) Recommend(prefix, lang string, topN int, profile *personalize.Profile) ([]Suggestion, error) {
	return r.RecommendMin(prefix, lang, topN, 0, profile)
}

// RecommendMin is Recommend restricted to words with corpus frequency >= minFrequency.
func (r *Recommender) RecommendMin(prefix, lang string, topN int, minFrequency float64, profile *personalize.Profile) ([]Suggestion, error) {
	idx, err := r.index(lang)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		return []Suggestion{}, nil
	}

	if idx.Language() == Japanese {
		prefix = romaji.Normalize(prefix)
	}

	poolSize := topN
	if profile != nil {
		poolSize = max(idx.Count(prefix), topN)
	}
	pool := idx.LookupMin(prefix, poolSize, minFrequency)

	suggestions := make([]Suggestion, len(pool))
	for i, e := range pool {
		score := e.Frequency
		if profile != nil {
			score = r.scorer.Score(e.Word, e.Frequency, profile)
		}
		suggestions[i] = Suggestion{Word: e.Word, Frequency: e.Frequency, Score: score}
	}

	if profile != nil {
		sort.SliceStable(suggestions, func(i, j int) bool {
			return suggestions[i].Score > suggestions[j].Score
		})
	}

	if len(suggestions) > topN {
		suggestions = suggestions[:topN]
	}
	return suggestions, nil
}

// WordFrequency returns the corpus frequency of word in lang, or 0 when the
// word is not in the corpus. The word is not romaji-normalized.
func (r *Recommender) WordFrequency(word, lang string) (float64, error) {
	idx, err := r.index(lang)
	if err != nil {
		return 0, err
	}
	return idx.Frequency(word), nil
}

// Stats returns per-language index statistics keyed "<lang>.<stat>".
func (r *Recommender) Stats() map[string]int {
	stats := map[string]int{
		"languages": len(r.langs),
		"state":     int(r.State()),
	}

	indexes := r.indexes.Load()
	if indexes == nil {
		return stats
	}
	for lang, idx := range *indexes {
		for k, v := range idx.Stats() {
			stats[lang+"."+k] = v
		}
		stats["totalWords"] += idx.Stats()["totalWords"]
	}
	return stats
}

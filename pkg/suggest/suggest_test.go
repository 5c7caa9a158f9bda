package suggest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bastiangx/wordtrail/pkg/personalize"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var fixedNow = time.Date(2025, 3, 18, 12, 0, 0, 0, time.UTC)

var testCorpora = map[string]map[string]float64{
	"en": {"word": 0.001, "work": 0.002, "world": 0.0015, "apple": 0.003},
	"it": {"ciao": 0.01, "casa": 0.02, "cane": 0.005},
	"ja": {"かな": 0.01, "かわ": 0.02, "きゃく": 0.005, "さくら": 0.003},
}

func newTestRecommender(t *testing.T) *Recommender {
	t.Helper()
	r, err := NewFromCorpora(testCorpora, Options{
		Scorer: personalize.Scorer{Now: func() time.Time { return fixedNow }},
	})
	if err != nil {
		t.Fatalf("NewFromCorpora: %v", err)
	}
	return r
}

func words(suggestions []Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Word
	}
	return out
}

func equalWords(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type mapSource map[string]map[string]float64

func (m mapSource) FrequencyDict(lang, variant string) (map[string]float64, error) {
	if dict, ok := m[lang]; ok {
		return dict, nil
	}
	return nil, errors.New("no such corpus")
}

func TestRecommend(t *testing.T) {
	r := newTestRecommender(t)

	tests := []struct {
		name   string
		prefix string
		lang   string
		topN   int
		want   []string
	}{
		{"Frequency order", "wo", "en", 10, []string{"work", "world", "word"}},
		{"Top N bound", "wo", "en", 2, []string{"work", "world"}},
		{"Zero top N", "wo", "en", 0, []string{}},
		{"Unknown prefix", "zz", "en", 10, []string{}},
		{"Empty prefix", "", "en", 10, []string{}},
		{"Case insensitive", "WO", "en", 1, []string{"work"}},
		{"Italian", "ca", "it", 10, []string{"casa", "cane"}},
		{"Japanese kana", "か", "ja", 10, []string{"かわ", "かな"}},
		{"Japanese romaji", "ka", "ja", 10, []string{"かわ", "かな"}},
		{"Japanese yoon", "kya", "ja", 10, []string{"きゃく"}},
		{"Language code case", "ap", "EN", 10, []string{"apple"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Recommend(tt.prefix, tt.lang, tt.topN, nil)
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			if !equalWords(words(got), tt.want) {
				t.Errorf("Recommend(%q, %q, %d) = %v, want %v", tt.prefix, tt.lang, tt.topN, words(got), tt.want)
			}
		})
	}
}

func TestRecommendUnsupportedLanguage(t *testing.T) {
	r := newTestRecommender(t)

	if _, err := r.Recommend("wo", "fr", 5, nil); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("Recommend error = %v, want ErrUnsupportedLanguage", err)
	}
	if _, err := r.WordFrequency("word", "fr"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("WordFrequency error = %v, want ErrUnsupportedLanguage", err)
	}
	if _, err := r.MinPrefixForWord("word", "fr", 5, nil); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("MinPrefixForWord error = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestRecommendScoresWithoutProfile(t *testing.T) {
	r := newTestRecommender(t)
	got, _ := r.Recommend("wor", "en", 3, nil)
	for _, s := range got {
		if s.Score != s.Frequency {
			t.Errorf("%s: score %v should equal frequency %v", s.Word, s.Score, s.Frequency)
		}
	}
}

// Five recent picks of the least frequent word put it first.
func TestRecommendPersonalized(t *testing.T) {
	r := newTestRecommender(t)

	profile := personalize.NewProfile("alice")
	for i := 0; i < 5; i++ {
		profile.RecordSelectionAt("word", "wo", fixedNow.Add(-time.Duration(i)*time.Hour))
	}

	got, err := r.Recommend("wo", "en", 1, profile)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 1 || got[0].Word != "word" {
		t.Fatalf("personalized Recommend = %v, want [word]", words(got))
	}
	if got[0].Score <= got[0].Frequency {
		t.Errorf("score %v should be boosted above %v", got[0].Score, got[0].Frequency)
	}

	all, _ := r.Recommend("wo", "en", 10, profile)
	if !equalWords(words(all), []string{"word", "work", "world"}) {
		t.Errorf("personalized order = %v", words(all))
	}
}

func TestRecommendProfileOnlyReorders(t *testing.T) {
	r := newTestRecommender(t)
	profile := personalize.NewProfile("bob")
	profile.RecordSelectionAt("apple", "a", fixedNow)
	profile.RecordSelectionAt("casa", "c", fixedNow)

	got, _ := r.Recommend("wo", "en", 10, profile)
	if !equalWords(words(got), []string{"work", "world", "word"}) {
		t.Errorf("unrelated history changed results: %v", words(got))
	}
}

func TestRecommendMin(t *testing.T) {
	r := newTestRecommender(t)
	got, err := r.RecommendMin("wo", "en", 10, 0.0015, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !equalWords(words(got), []string{"work", "world"}) {
		t.Errorf("RecommendMin = %v", words(got))
	}
}

func TestWordFrequency(t *testing.T) {
	r := newTestRecommender(t)

	tests := []struct {
		word, lang string
		want       float64
	}{
		{"world", "en", 0.0015},
		{"World", "en", 0.0015},
		{"missing", "en", 0},
		{"かわ", "ja", 0.02},
		{"kawa", "ja", 0},
	}
	for _, tt := range tests {
		got, err := r.WordFrequency(tt.word, tt.lang)
		if err != nil || got != tt.want {
			t.Errorf("WordFrequency(%q, %q) = %v, %v; want %v", tt.word, tt.lang, got, err, tt.want)
		}
	}
}

func TestMinPrefixForWord(t *testing.T) {
	corpus := map[string]float64{"word": 0.001, "work": 0.002, "world": 0.0015, "was": 0.01}
	r, err := NewFromCorpora(map[string]map[string]float64{"en": corpus}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		word string
		topN int
		want int
	}{
		{"world", 2, 2},
		{"was", 1, 1},
		{"word", 2, 4},
		{"WORD", 3, 2},
		{"missing", 5, 7},
		{"world", 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got, err := r.MinPrefixForWord(tt.word, "en", tt.topN, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("MinPrefixForWord(%q, %d) = %d, want %d", tt.word, tt.topN, got, tt.want)
			}
		})
	}
}

func TestMinPrefixForWordThreeWordCorpus(t *testing.T) {
	r := newTestRecommender(t)
	got, err := r.MinPrefixForWord("world", "en", 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	// "w" already ranks work, world.
	if got != 1 {
		t.Errorf("MinPrefixForWord = %d, want 1", got)
	}
}

func TestMinPrefixPersonalized(t *testing.T) {
	r := newTestRecommender(t)
	profile := personalize.NewProfile("alice")
	for i := 0; i < 5; i++ {
		profile.RecordSelectionAt("word", "wo", fixedNow)
	}

	general, _ := r.MinPrefixForWord("word", "en", 1, nil)
	personal, _ := r.MinPrefixForWord("word", "en", 1, profile)
	if general != 4 || personal != 1 {
		t.Errorf("general %d personal %d, want 4 and 1", general, personal)
	}
}

func TestMinPrefixDetail(t *testing.T) {
	r := newTestRecommender(t)

	detail, err := r.MinPrefixDetail("world", "en", 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !detail.Found || detail.Prefix != "w" || len(detail.Suggestions) != 2 {
		t.Errorf("unexpected detail: %+v", detail)
	}

	detail, _ = r.MinPrefixDetail("さくら", "ja", 1, nil)
	if !detail.Found || detail.Length != 1 {
		t.Errorf("japanese detail: %+v", detail)
	}

	detail, _ = r.MinPrefixDetail("wordy", "en", 3, nil)
	if detail.Found || detail.Length != 5 || detail.Prefix != "wordy" {
		t.Errorf("missing word detail: %+v", detail)
	}
}

func TestNewBuildsFromSource(t *testing.T) {
	r, err := New(context.Background(), mapSource(testCorpora), Options{Languages: []string{"en", "ja"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.State() != StateReady {
		t.Errorf("state = %v, want ready", r.State())
	}
	if langs := r.Languages(); len(langs) != 2 {
		t.Errorf("Languages = %v", langs)
	}
	if _, err := r.Recommend("ca", "it", 5, nil); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("it was not built, got %v", err)
	}

	stats := r.Stats()
	if stats["en.totalWords"] != 4 || stats["totalWords"] != 8 {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestNewFailsOnMissingCorpus(t *testing.T) {
	_, err := New(context.Background(), mapSource(testCorpora), Options{Languages: []string{"en", "fr"}})
	if err == nil {
		t.Fatal("expected error for missing corpus")
	}

	r := Load(context.Background(), mapSource(testCorpora), Options{Languages: []string{"fr"}})
	if err := r.Wait(context.Background()); err == nil {
		t.Fatal("expected build error")
	}
	if r.State() != StateFailed || r.Err() == nil {
		t.Errorf("state = %v, err = %v", r.State(), r.Err())
	}
	if _, err := r.Recommend("wo", "en", 5, nil); !errors.Is(err, ErrNotReady) {
		t.Errorf("failed recommender should report ErrNotReady, got %v", err)
	}
}

type blockingSource struct {
	release chan struct{}
}

func (b blockingSource) FrequencyDict(lang, variant string) (map[string]float64, error) {
	<-b.release
	return testCorpora[lang], nil
}

func TestLoadReportsBuilding(t *testing.T) {
	src := blockingSource{release: make(chan struct{})}
	r := Load(context.Background(), src, Options{Languages: []string{"en"}})

	if r.State() != StateBuilding {
		t.Fatalf("state = %v, want building", r.State())
	}
	if _, err := r.Recommend("wo", "en", 5, nil); !errors.Is(err, ErrNotReady) {
		t.Errorf("Recommend while building = %v, want ErrNotReady", err)
	}

	close(src.release)
	if err := r.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r.State() != StateReady {
		t.Errorf("state = %v, want ready", r.State())
	}
}

func TestLoadHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := Load(ctx, mapSource(testCorpora), Options{Languages: []string{"en"}})
	if err := r.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait = %v, want context.Canceled", err)
	}
}

func TestConcurrentRecommend(t *testing.T) {
	r := newTestRecommender(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := r.Recommend("wo", "en", 3, nil)
				if err != nil || len(got) != 3 {
					t.Errorf("Recommend = %v, %v", got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestMatchCase(t *testing.T) {
	tests := []struct {
		prefix, word, want string
	}{
		{"Wo", "world", "World"},
		{"WO", "world", "WOrld"},
		{"wo", "world", "world"},
		{"É", "école", "École"},
	}
	for _, tt := range tests {
		got := MatchCase(tt.prefix, []Suggestion{{Word: tt.word}})
		if got[0].Word != tt.want {
			t.Errorf("MatchCase(%q, %q) = %q, want %q", tt.prefix, tt.word, got[0].Word, tt.want)
		}
	}
}

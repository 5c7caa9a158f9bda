package dictionary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// ErrUnknownLanguage is returned when no file for a (variant, language) pair exists.
var ErrUnknownLanguage = errors.New("dictionary: no word list for language")

// Word list variants.
const (
	VariantSmall    = "small"
	VariantLarge    = "large"
	VariantBest     = "best"
	VariantCombined = "combined"
)

// Source loads frequency dictionaries from a data directory and caches them.
// A Source is safe for concurrent use.
type Source struct {
	dir string

	mu    sync.Mutex
	dicts map[string]map[string]float64
}

// NewSource returns a Source reading from dir.
func NewSource(dir string) *Source {
	return &Source{
		dir:   dir,
		dicts: make(map[string]map[string]float64),
	}
}

// Dir returns the data directory.
func (s *Source) Dir() string {
	return s.dir
}

// AvailableLanguages maps each language with a word list for variant to its file.
// "best" prefers large lists over small ones; "combined" reads the small lists.
func (s *Source) AvailableLanguages(variant string) (map[string]string, error) {
	switch variant {
	case VariantBest:
		available, err := s.AvailableLanguages(VariantSmall)
		if err != nil {
			return nil, err
		}
		large, err := s.AvailableLanguages(VariantLarge)
		if err != nil {
			return nil, err
		}
		for lang, path := range large {
			available[lang] = path
		}
		return available, nil
	case VariantCombined:
		return s.AvailableLanguages(VariantSmall)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %s: %w", s.dir, err)
	}

	available := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") {
			continue
		}
		stem, format := splitWordlistName(name)
		if format == FormatUnknown {
			continue
		}
		listVariant, lang, ok := strings.Cut(stem, "_")
		if !ok || listVariant != variant || lang == "" {
			continue
		}
		lang = strings.ToLower(lang)
		// cBpack wins over text for the same language.
		if existing, seen := available[lang]; seen && strings.HasSuffix(existing, cbPackExt) {
			continue
		}
		available[lang] = filepath.Join(s.dir, name)
	}
	return available, nil
}

func splitWordlistName(name string) (string, FileFormat) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, cbPackExt):
		return name[:len(name)-len(cbPackExt)], FormatCBPack
	case strings.HasSuffix(lower, ".txt"):
		return name[:len(name)-len(".txt")], FormatText
	}
	return name, FormatUnknown
}

// FrequencyDict returns the word→frequency map for lang and variant.
// The returned map is shared and must not be modified.
func (s *Source) FrequencyDict(lang, variant string) (map[string]float64, error) {
	lang = strings.ToLower(lang)
	key := variant + "/" + lang

	s.mu.Lock()
	defer s.mu.Unlock()

	if dict, ok := s.dicts[key]; ok {
		return dict, nil
	}

	available, err := s.AvailableLanguages(variant)
	if err != nil {
		return nil, err
	}
	path, ok := available[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q (wordlist %q)", ErrUnknownLanguage, lang, variant)
	}

	dict, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	log.Debugf("Loaded %d words for %s from %s", len(dict), lang, filepath.Base(path))

	s.dicts[key] = dict
	return dict, nil
}

// WordFrequency looks up word the way FrequencyDict stores it, lowercase first.
// Words missing from the list get minimum.
func (s *Source) WordFrequency(word, lang, variant string, minimum float64) (float64, error) {
	dict, err := s.FrequencyDict(lang, variant)
	if err != nil {
		return 0, err
	}
	freq, ok := dict[strings.ToLower(word)]
	if !ok {
		freq = dict[word]
	}
	return max(freq, minimum), nil
}

// LoadFile reads a single word list, detecting its format from the name.
func LoadFile(path string) (map[string]float64, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	switch format {
	case FormatCBPack:
		buckets, err := ReadCBPack(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return BucketsToFreqs(buckets), nil
	case FormatText:
		freqs, err := ReadText(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return freqs, nil
	}
	return nil, fmt.Errorf("unsupported format %v for %s", format, path)
}

// Package simulate generates sentences for synthetic users so profiles and
// savings can be measured without real typing logs.
package simulate

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed personas.yaml
var defaultPersonas []byte

// Persona is a simulated user.
type Persona struct {
	ID             string              `yaml:"-"`
	Name           string              `yaml:"name"`
	PreferredWords map[string][]string `yaml:"preferred_words"`
	Templates      []string            `yaml:"templates"`
}

// Prefixes returns the persona's preferred prefixes in sorted order.
func (p *Persona) Prefixes() []string {
	prefixes := make([]string, 0, len(p.PreferredWords))
	for prefix, words := range p.PreferredWords {
		if len(words) > 0 {
			prefixes = append(prefixes, prefix)
		}
	}
	sort.Strings(prefixes)
	return prefixes
}

// LanguageSet holds the personas and shared sentence material of one language.
type LanguageSet struct {
	Patterns        []string            `yaml:"patterns"`
	CommonSentences []string            `yaml:"common_sentences"`
	Personas        map[string]*Persona `yaml:"personas"`
}

// Catalog maps language codes to their personas.
type Catalog struct {
	Languages map[string]*LanguageSet `yaml:"languages"`
}

// Load decodes a YAML persona catalog.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode personas: %w", err)
	}
	if len(c.Languages) == 0 {
		return nil, fmt.Errorf("persona catalog defines no languages")
	}

	for lang, set := range c.Languages {
		if set == nil {
			return nil, fmt.Errorf("language %q has no entries", lang)
		}
		for id, p := range set.Personas {
			if p == nil {
				p = &Persona{}
				set.Personas[id] = p
			}
			p.ID = id
			if len(p.PreferredWords) > 0 && len(p.Templates) == 0 && len(set.Patterns) == 0 {
				return nil, fmt.Errorf("persona %s/%s has preferred words but nothing to put them in", lang, id)
			}
		}
	}
	return &c, nil
}

// LoadFile reads a persona catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open personas file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultPersonas))
	if err != nil {
		panic(fmt.Sprintf("built-in personas are invalid: %v", err))
	}
	return c
}

// Lookup returns the language set and persona for lang and id.
func (c *Catalog) Lookup(lang, id string) (*LanguageSet, *Persona, bool) {
	set, ok := c.Languages[lang]
	if !ok {
		return nil, nil, false
	}
	p, ok := set.Personas[id]
	return set, p, ok
}

// PersonaIDs returns the persona ids of lang, sorted.
func (c *Catalog) PersonaIDs(lang string) []string {
	set, ok := c.Languages[lang]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set.Personas))
	for id := range set.Personas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LanguageCodes returns the catalog's languages, sorted.
func (c *Catalog) LanguageCodes() []string {
	langs := make([]string, 0, len(c.Languages))
	for lang := range c.Languages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

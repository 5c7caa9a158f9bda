// Package profiles keeps the per-language user profiles shared by the IPC server and the HTTP handler.
package profiles

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bastiangx/wordtrail/pkg/personalize"
	"github.com/bastiangx/wordtrail/pkg/store"
	"github.com/bastiangx/wordtrail/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Registry owns one personalize.Manager per language and guards the profiles
// it hands out: reads run under View, writes under Record.
type Registry struct {
	mu       sync.RWMutex
	managers map[string]*personalize.Manager
	store    *store.Store
	enabled  bool
}

// New creates managers for langs. st may be nil, in which case selections live in memory only.
// When enabled is false every lookup yields a nil profile.
func New(langs []string, st *store.Store, enabled bool) *Registry {
	r := &Registry{
		managers: make(map[string]*personalize.Manager, len(langs)),
		store:    st,
		enabled:  enabled,
	}
	for _, lang := range langs {
		lang = normalize(lang)
		r.managers[lang] = personalize.NewManager(lang)
	}
	return r
}

func normalize(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// Restore loads every saved profile from the store. It returns the number of profiles loaded.
func (r *Registry) Restore() (int, error) {
	if r.store == nil {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for lang, m := range r.managers {
		n, err := r.store.LoadAll(lang, m)
		total += n
		if err != nil {
			return total, fmt.Errorf("restore %s profiles: %w", lang, err)
		}
	}
	return total, nil
}

// Enabled reports whether personalization is applied.
func (r *Registry) Enabled() bool {
	return r.enabled
}

func (r *Registry) manager(lang string) (*personalize.Manager, error) {
	m, ok := r.managers[normalize(lang)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", suggest.ErrUnsupportedLanguage, lang)
	}
	return m, nil
}

// View runs fn with the user's profile held for reading. The profile is nil for
// anonymous or unknown users, or when personalization is off.
func (r *Registry) View(lang, userID string, fn func(*personalize.Profile) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.enabled || userID == "" {
		return fn(nil)
	}
	m, err := r.manager(lang)
	if err != nil {
		return err
	}
	p, _ := m.Profile(userID)
	return fn(p)
}

// Record stores a selection for the user, creating the profile if needed, and
// persists it when a store is attached. It returns the user's selection total.
func (r *Registry) Record(lang, userID, word, prefix string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("selection without user id")
	}
	if word == "" {
		return 0, fmt.Errorf("selection without word")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.manager(lang)
	if err != nil {
		return 0, err
	}
	p := m.Create(userID)
	p.RecordSelection(word, prefix)

	if r.store != nil {
		if err := r.store.Save(m.Language(), p); err != nil {
			log.Warnf("Selection kept in memory only: %v", err)
		}
	}
	return p.TotalSelections(), nil
}

// Put replaces the user's profile, typically with one built offline.
func (r *Registry) Put(lang string, p *personalize.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.manager(lang)
	if err != nil {
		return err
	}
	m.Put(p)
	if r.store != nil {
		return r.store.Save(m.Language(), p)
	}
	return nil
}

// Users lists the known user ids for lang.
func (r *Registry) Users(lang string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, err := r.manager(lang)
	if err != nil {
		return nil, err
	}
	return m.Users(), nil
}

// TopWords returns the user's n most selected words, or nil for unknown users.
func (r *Registry) TopWords(lang, userID string, n int) ([]personalize.WordCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, err := r.manager(lang)
	if err != nil {
		return nil, err
	}
	p, ok := m.Profile(userID)
	if !ok {
		return nil, nil
	}
	return p.TopWords(n), nil
}

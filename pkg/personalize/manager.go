package personalize

import (
	"sort"
	"sync"
)

// Selection is one (prefix, chosen word) event.
type Selection struct {
	Prefix string
	Word   string
}

// Manager owns the profiles of one language's users.
// Its methods are safe for concurrent use; the profiles it hands out are not.
type Manager struct {
	lang     string
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewManager returns an empty manager for lang.
func NewManager(lang string) *Manager {
	return &Manager{
		lang:     lang,
		profiles: make(map[string]*Profile),
	}
}

// Language returns the language the manager's profiles belong to.
func (m *Manager) Language() string {
	return m.lang
}

// Profile looks up a user. Unknown users are not created.
func (m *Manager) Profile(userID string) (*Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	return p, ok
}

// Create returns the user's profile, creating an empty one first if needed.
func (m *Manager) Create(userID string) *Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[userID]; ok {
		return p
	}
	p := NewProfile(userID)
	m.profiles[userID] = p
	return p
}

// Put stores p under its user id, replacing any existing profile.
func (m *Manager) Put(p *Profile) {
	p.ensureMaps()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
}

// Simulate records a batch of selections for userID.
func (m *Manager) Simulate(userID string, selections []Selection) *Profile {
	p := m.Create(userID)
	for _, s := range selections {
		p.RecordSelection(s.Word, s.Prefix)
	}
	return p
}

// Users returns the known user ids in sorted order.
func (m *Manager) Users() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.profiles))
	for id := range m.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of profiles.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles)
}

// Package store persists user profiles in a pogreb key/value database.
//
// Keys are "<lang>/<user id>" and values are msgpack-encoded profiles. A bloom
// filter of every key ever written lets lookups of unknown users skip the disk.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/akrylysov/pogreb"
	"github.com/bastiangx/wordtrail/pkg/personalize"
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	expectedProfiles  = 100000
	falsePositiveRate = 0.01
)

// Store is a profile database. It is safe for concurrent use, but a profile
// must not be modified while Save encodes it.
type Store struct {
	db *pogreb.DB

	mu    sync.RWMutex
	known *bloom.BloomFilter
}

// Open opens or creates the database directory at path.
func Open(path string) (*Store, error) {
	db, err := pogreb.Open(path, &pogreb.Options{
		BackgroundSyncInterval:       0,
		BackgroundCompactionInterval: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open profile store %s: %w", path, err)
	}

	s := &Store{
		db:    db,
		known: bloom.NewWithEstimates(expectedProfiles, falsePositiveRate),
	}

	it := db.Items()
	for {
		key, _, err := it.Next()
		if errors.Is(err, pogreb.ErrIterationDone) {
			break
		}
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to scan profile store: %w", err)
		}
		s.known.Add(key)
	}

	log.Debugf("Opened profile store %s with %d profiles", path, db.Count())
	return s, nil
}

func key(lang, userID string) []byte {
	return []byte(lang + "/" + userID)
}

// Save writes p under lang.
func (s *Store) Save(lang string, p *personalize.Profile) error {
	if p == nil || p.UserID == "" {
		return errors.New("store: profile without user id")
	}

	data, err := msgpack.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", p.UserID, err)
	}

	k := key(lang, p.UserID)
	if err := s.db.Put(k, data); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.UserID, err)
	}

	s.mu.Lock()
	s.known.Add(k)
	s.mu.Unlock()
	return nil
}

// Load reads the profile of userID in lang. ok is false when none was saved.
func (s *Store) Load(lang, userID string) (p *personalize.Profile, ok bool, err error) {
	k := key(lang, userID)

	s.mu.RLock()
	maybe := s.known.Test(k)
	s.mu.RUnlock()
	if !maybe {
		return nil, false, nil
	}

	data, err := s.db.Get(k)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read profile %s: %w", userID, err)
	}
	if data == nil {
		return nil, false, nil
	}

	p, err = decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("profile %s: %w", userID, err)
	}
	return p, true, nil
}

// LoadAll puts every saved profile of lang into m and returns how many it loaded.
func (s *Store) LoadAll(lang string, m *personalize.Manager) (int, error) {
	prefix := []byte(lang + "/")
	loaded := 0

	it := s.db.Items()
	for {
		k, data, err := it.Next()
		if errors.Is(err, pogreb.ErrIterationDone) {
			break
		}
		if err != nil {
			return loaded, fmt.Errorf("failed to scan profiles: %w", err)
		}
		if !bytes.HasPrefix(k, prefix) {
			continue
		}

		p, err := decode(data)
		if err != nil {
			log.Warnf("Skipping unreadable profile %s: %v", k, err)
			continue
		}
		m.Put(p)
		loaded++
	}
	return loaded, nil
}

// Delete removes a saved profile.
func (s *Store) Delete(lang, userID string) error {
	return s.db.Delete(key(lang, userID))
}

// Count returns the number of stored profiles across languages.
func (s *Store) Count() uint32 {
	return s.db.Count()
}

// Sync flushes writes to disk.
func (s *Store) Sync() error {
	return s.db.Sync()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func decode(data []byte) (*personalize.Profile, error) {
	var p personalize.Profile
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if p.WordCounts == nil {
		p.WordCounts = map[string]int{}
	}
	return &p, nil
}

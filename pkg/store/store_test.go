package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bastiangx/wordtrail/pkg/personalize"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestSaveLoad(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "profiles"))
	defer s.Close()

	at := time.Date(2025, 3, 17, 8, 30, 0, 0, time.UTC)
	p := personalize.NewProfile("alice")
	p.RecordSelectionAt("Word", "wo", at)
	p.RecordSelectionAt("word", "w", at.Add(time.Hour))

	if err := s.Save("en", p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := s.Load("en", "alice")
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	if got.UserID != "alice" || got.Usage("word") != 2 {
		t.Errorf("loaded profile = %+v", got)
	}
	if ts := got.WordTimestamps["word"]; len(ts) != 2 || !ts[0].Equal(at) {
		t.Errorf("timestamps = %v", ts)
	}
	if got.PrefixHistory("wo")["word"] != 1 {
		t.Errorf("prefix history = %v", got.PrefixSelections)
	}

	if _, ok, err := s.Load("it", "alice"); ok || err != nil {
		t.Errorf("profile leaked across languages: %v, %v", ok, err)
	}
	if _, ok, err := s.Load("en", "bob"); ok || err != nil {
		t.Errorf("unknown user = %v, %v", ok, err)
	}
}

func TestSaveRejectsAnonymous(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "profiles"))
	defer s.Close()

	if err := s.Save("en", personalize.NewProfile("")); err == nil {
		t.Error("expected error for empty user id")
	}
	if err := s.Save("en", nil); err == nil {
		t.Error("expected error for nil profile")
	}
}

func TestReopenAndLoadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles")

	s := openStore(t, path)
	for _, id := range []string{"alice", "bob"} {
		p := personalize.NewProfile(id)
		p.RecordSelection("work", "wo")
		if err := s.Save("en", p); err != nil {
			t.Fatal(err)
		}
	}
	ja := personalize.NewProfile("carol")
	ja.RecordSelection("かわ", "か")
	if err := s.Save("ja", ja); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s = openStore(t, path)
	defer s.Close()

	if s.Count() != 3 {
		t.Errorf("Count = %d, want 3", s.Count())
	}
	if _, ok, _ := s.Load("ja", "carol"); !ok {
		t.Error("reopened store should know carol")
	}

	m := personalize.NewManager("en")
	n, err := s.LoadAll("en", m)
	if err != nil || n != 2 {
		t.Fatalf("LoadAll = %d, %v", n, err)
	}
	if users := m.Users(); len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
		t.Errorf("Users = %v", users)
	}
}

func TestDelete(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "profiles"))
	defer s.Close()

	if err := s.Save("en", personalize.NewProfile("alice")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("en", "alice"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.Load("en", "alice"); ok || err != nil {
		t.Errorf("deleted profile = %v, %v", ok, err)
	}
}

func TestSyncKeepsSavedProfiles(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "profiles"))
	defer s.Close()

	p := personalize.NewProfile("dave")
	p.RecordSelection("world", "wor")
	if err := s.Save("en", p); err != nil {
		t.Fatal(err)
	}
	if err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	got, ok, err := s.Load("en", "dave")
	if err != nil || !ok || got.Usage("world") != 1 {
		t.Errorf("after Sync Load = %+v, %v, %v", got, ok, err)
	}
}

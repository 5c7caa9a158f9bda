package profiles

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/bastiangx/wordtrail/pkg/personalize"
	"github.com/bastiangx/wordtrail/pkg/store"
	"github.com/bastiangx/wordtrail/pkg/suggest"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func TestRecordAndView(t *testing.T) {
	r := New([]string{"en", "JA"}, nil, true)

	total, err := r.Record("en", "alice", "word", "wo")
	if err != nil || total != 1 {
		t.Fatalf("Record = %d, %v", total, err)
	}
	if _, err := r.Record("ja", "alice", "さくら", "sa"); err != nil {
		t.Fatalf("Record ja: %v", err)
	}

	var usage int
	err = r.View("EN", "alice", func(p *personalize.Profile) error {
		if p == nil {
			t.Fatal("profile missing")
		}
		usage = p.Usage("word")
		return nil
	})
	if err != nil || usage != 1 {
		t.Errorf("View usage = %d, %v", usage, err)
	}

	err = r.View("en", "bob", func(p *personalize.Profile) error {
		if p != nil {
			t.Errorf("unknown user got profile %+v", p)
		}
		return nil
	})
	if err != nil {
		t.Errorf("View unknown user: %v", err)
	}
}

func TestRecordErrors(t *testing.T) {
	r := New([]string{"en"}, nil, true)

	tests := []struct {
		name                string
		lang, user, word    string
		wantUnsupportedLang bool
	}{
		{"no user", "en", "", "word", false},
		{"no word", "en", "alice", "", false},
		{"unknown language", "fr", "alice", "mot", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Record(tt.lang, tt.user, tt.word, "w")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, suggest.ErrUnsupportedLanguage); got != tt.wantUnsupportedLang {
				t.Errorf("errors.Is(ErrUnsupportedLanguage) = %v", got)
			}
		})
	}
}

func TestDisabledYieldsNilProfile(t *testing.T) {
	r := New([]string{"en"}, nil, false)
	if _, err := r.Record("en", "alice", "word", "wo"); err != nil {
		t.Fatal(err)
	}
	_ = r.View("en", "alice", func(p *personalize.Profile) error {
		if p != nil {
			t.Error("personalization disabled but profile returned")
		}
		return nil
	})
	if r.Enabled() {
		t.Error("Enabled() = true")
	}
}

func TestPersistAndRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}

	r := New([]string{"en", "it"}, st, true)
	if _, err := r.Record("en", "alice", "word", "wo"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Record("it", "bruno", "casa", "ca"); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	st, err = store.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	restored := New([]string{"en", "it"}, st, true)
	n, err := restored.Restore()
	if err != nil || n != 2 {
		t.Fatalf("Restore = %d, %v", n, err)
	}
	users, _ := restored.Users("en")
	if len(users) != 1 || users[0] != "alice" {
		t.Errorf("en users = %v", users)
	}
	top, _ := restored.TopWords("it", "bruno", 5)
	if len(top) != 1 || top[0].Word != "casa" {
		t.Errorf("it top words = %v", top)
	}
}

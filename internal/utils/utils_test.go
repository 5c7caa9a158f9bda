package utils

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func TestIsValidInput(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"wo", true},
		{"kya", true},
		{"かわ", true},
		{"コーヒー", true},
		{"quest'e", true},
		{"è", true},
		{"", false},
		{"123", false},
		{"wo!", false},
		{"www", false},
		{"ああああ", false},
		{"ww", true},
	}
	for _, tt := range tests {
		if got := IsValidInput(tt.input); got != tt.want {
			t.Errorf("IsValidInput(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSuggestionFilter(t *testing.T) {
	tests := []struct {
		name  string
		typed []string
		words []string
		want  []string
	}{
		{"typed word dropped", []string{"Wo"}, []string{"wo", "work", "world"}, []string{"work", "world"}},
		{"case repeats dropped", []string{"wo"}, []string{"work", "Work", "WORK", "world"}, []string{"work", "world"}},
		{"width repeats dropped", []string{"wo"}, []string{"work", "ｗｏｒｋ"}, []string{"work"}},
		{"full width typed word", []string{"ｗｏ"}, []string{"wo", "word"}, []string{"word"}},
		{"romaji and kana forms", []string{"sa", "さ"}, []string{"さ", "さかな", "sa", "さくら"}, []string{"さかな", "さくら"}},
		{"blank forms ignored", []string{"", " "}, []string{"a"}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterWords(NewSuggestionFilter(tt.typed...), tt.words, func(w string) string { return w })
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("FilterWords = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateRankList(t *testing.T) {
	ranks := CreateRankList(3)
	if len(ranks) != 3 || ranks[0] != 1 || ranks[2] != 3 {
		t.Errorf("CreateRankList(3) = %v", ranks)
	}
	if len(CreateRankList(-1)) != 0 {
		t.Error("negative count should be empty")
	}
	long := CreateRankList(math.MaxUint16 + 5)
	if long[math.MaxUint16-1] != math.MaxUint16 || long[len(long)-1] != math.MaxUint16 {
		t.Errorf("ranks past the uint16 range = %d, %d", long[math.MaxUint16-1], long[len(long)-1])
	}
}

func TestTOMLHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	content := "[dict]\nlanguages = [\"en\", 3, \"ja\"]\ndata_dir = \"data\"\n[personalize]\ntime_decay_factor = 1\nenabled = true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := ParseTOMLWithRecovery(path)
	if err != nil {
		t.Fatal(err)
	}
	dict, ok := ExtractSection(data, "dict")
	if !ok {
		t.Fatal("missing dict section")
	}
	if langs, ok := ExtractStrings(dict, "languages"); !ok || len(langs) != 2 {
		t.Errorf("ExtractStrings = %v, %v", langs, ok)
	}
	if dir, ok := ExtractString(dict, "data_dir"); !ok || dir != "data" {
		t.Errorf("ExtractString = %q, %v", dir, ok)
	}

	p, _ := ExtractSection(data, "personalize")
	if decay, ok := ExtractFloat(p, "time_decay_factor"); !ok || decay != 1 {
		t.Errorf("ExtractFloat from int = %v, %v", decay, ok)
	}
	if enabled, ok := ExtractBool(p, "enabled"); !ok || !enabled {
		t.Errorf("ExtractBool = %v, %v", enabled, ok)
	}
	if _, ok := ExtractInt64(p, "missing"); ok {
		t.Error("missing key should not extract")
	}
}

func TestSaveTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	type section struct {
		Name string `toml:"name"`
	}
	if err := SaveTOMLFile(struct {
		S section `toml:"s"`
	}{section{"x"}}, path); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Fatal("file not written")
	}
	if err := SaveTOMLFile(make(chan int), path); err == nil {
		t.Error("unencodable value should fail")
	}
}

func TestDataDir(t *testing.T) {
	dir := t.TempDir()
	if IsValidDataDir(dir) {
		t.Error("empty dir should not be valid")
	}

	os.WriteFile(filepath.Join(dir, "_small_en.msgpack.gz"), []byte("x"), 0o644)
	if IsValidDataDir(dir) {
		t.Error("underscore files should be ignored")
	}

	os.WriteFile(filepath.Join(dir, "small_en.msgpack.gz"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "large_it.txt"), []byte("x"), 0o644)
	if got := ListWordlists(dir); len(got) != 2 {
		t.Errorf("ListWordlists = %v", got)
	}

	pr, err := NewPathResolver()
	if err != nil {
		t.Skipf("no executable path: %v", err)
	}
	got, err := pr.GetDataDir(dir)
	if err != nil || got != dir {
		t.Errorf("GetDataDir(%q) = %q, %v", dir, got, err)
	}
}

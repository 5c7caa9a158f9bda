package dictionary

import (
	"bytes"
	"compress/gzip"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func writePack(t *testing.T, path string, buckets [][]string) {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteCBPack(&buf, buckets); err != nil {
		t.Fatalf("WriteCBPack: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCBPackRoundTrip(t *testing.T) {
	buckets := [][]string{{"the"}, {}, {"of", "and"}, nil}
	var buf bytes.Buffer
	if err := WriteCBPack(&buf, buckets); err != nil {
		t.Fatalf("WriteCBPack: %v", err)
	}

	got, err := ReadCBPack(&buf)
	if err != nil {
		t.Fatalf("ReadCBPack: %v", err)
	}
	if len(got) != len(buckets) {
		t.Fatalf("got %d buckets, want %d", len(got), len(buckets))
	}
	if len(got[2]) != 2 || got[2][1] != "and" {
		t.Errorf("bucket 2 = %v", got[2])
	}
	if len(got[3]) != 0 {
		t.Errorf("nil bucket should decode empty, got %v", got[3])
	}
}

func TestReadCBPackBadHeader(t *testing.T) {
	tests := []struct {
		name   string
		header any
	}{
		{"wrong format", map[string]any{"format": "dB", "version": 1}},
		{"wrong version", map[string]any{"format": "cB", "version": 2}},
		{"not a map", "cB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			gz := gzip.NewWriter(&buf)
			enc := msgpack.NewEncoder(gz)
			if err := enc.Encode([]any{tt.header, []string{"a"}}); err != nil {
				t.Fatal(err)
			}
			gz.Close()

			if _, err := ReadCBPack(&buf); !errors.Is(err, ErrBadHeader) {
				t.Errorf("ReadCBPack error = %v, want ErrBadHeader", err)
			}
		})
	}
}

func TestReadCBPackNotGzip(t *testing.T) {
	if _, err := ReadCBPack(strings.NewReader("plain")); err == nil {
		t.Error("expected error for non-gzip input")
	}
}

func TestCentibels(t *testing.T) {
	tests := []struct {
		cB   int
		freq float64
	}{
		{0, 1},
		{-100, 0.1},
		{-200, 0.01},
		{-250, math.Pow(10, -2.5)},
	}

	for _, tt := range tests {
		freq, err := CBToFreq(tt.cB)
		if err != nil {
			t.Fatalf("CBToFreq(%d): %v", tt.cB, err)
		}
		if math.Abs(freq-tt.freq) > 1e-12 {
			t.Errorf("CBToFreq(%d) = %v, want %v", tt.cB, freq, tt.freq)
		}
		cB, err := FreqToCB(tt.freq)
		if err != nil || cB != tt.cB {
			t.Errorf("FreqToCB(%v) = %d, %v; want %d", tt.freq, cB, err, tt.cB)
		}
	}

	if _, err := CBToFreq(1); err == nil {
		t.Error("positive centibels should fail")
	}
	for _, bad := range []float64{0, -0.1, 1.5, math.NaN()} {
		if _, err := FreqToCB(bad); err == nil {
			t.Errorf("FreqToCB(%v) should fail", bad)
		}
	}
}

func TestBucketsToFreqs(t *testing.T) {
	freqs := BucketsToFreqs([][]string{{"the"}, {"of"}, {"the"}})
	want02, _ := CBToFreq(-2)
	if freqs["the"] != want02 {
		t.Errorf("later bucket should win: got %v", freqs["the"])
	}
	want01, _ := CBToFreq(-1)
	if freqs["of"] != want01 {
		t.Errorf("of = %v, want %v", freqs["of"], want01)
	}
}

func TestFreqsToBuckets(t *testing.T) {
	buckets, err := FreqsToBuckets(map[string]float64{"b": 0.1, "a": 0.1, "c": 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(buckets) != 101 {
		t.Fatalf("got %d buckets, want 101", len(buckets))
	}
	if buckets[0][0] != "c" || buckets[100][0] != "a" || buckets[100][1] != "b" {
		t.Errorf("unexpected buckets: %v %v", buckets[0], buckets[100])
	}

	if _, err := FreqsToBuckets(map[string]float64{"x": 2}); err == nil {
		t.Error("expected error for frequency above 1")
	}
}

func TestReadText(t *testing.T) {
	input := "# header\nwork\t0.9\n\nworld 0.8\nword\t0.5\n"
	freqs, err := ReadText(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if len(freqs) != 3 || freqs["world"] != 0.8 {
		t.Errorf("unexpected freqs: %v", freqs)
	}

	bad := []string{"word\n", "word\tabc\n", "word\t0\n", "word\t1.2\n"}
	for _, in := range bad {
		if _, err := ReadText(strings.NewReader(in)); err == nil {
			t.Errorf("ReadText(%q) should fail", in)
		}
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, map[string]float64{"b": 0.5, "a": 0.5, "c": 0.9}); err != nil {
		t.Fatal(err)
	}
	want := "c\t0.9\na\t0.5\nb\t0.5\n"
	if buf.String() != want {
		t.Errorf("WriteText = %q, want %q", buf.String(), want)
	}
}

func TestSourceVariants(t *testing.T) {
	dir := t.TempDir()
	writePack(t, filepath.Join(dir, "small_en.msgpack.gz"), [][]string{{"small"}})
	writePack(t, filepath.Join(dir, "large_en.msgpack.gz"), [][]string{{"large"}})
	writePack(t, filepath.Join(dir, "small_IT.msgpack.gz"), [][]string{{"ciao"}})
	writePack(t, filepath.Join(dir, "_small_fr.msgpack.gz"), [][]string{{"ignored"}})
	if err := os.WriteFile(filepath.Join(dir, "small_ja.txt"), []byte("こんにちは\t0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewSource(dir)

	tests := []struct {
		lang, variant, word string
	}{
		{"en", VariantSmall, "small"},
		{"en", VariantLarge, "large"},
		{"en", VariantBest, "large"},
		{"en", VariantCombined, "small"},
		{"it", VariantBest, "ciao"},
		{"IT", VariantSmall, "ciao"},
		{"ja", VariantBest, "こんにちは"},
	}
	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.variant, func(t *testing.T) {
			dict, err := src.FrequencyDict(tt.lang, tt.variant)
			if err != nil {
				t.Fatalf("FrequencyDict: %v", err)
			}
			if _, ok := dict[tt.word]; !ok {
				t.Errorf("expected %q in %v", tt.word, dict)
			}
		})
	}

	if _, err := src.FrequencyDict("fr", VariantSmall); !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("underscore files should be ignored, got %v", err)
	}
}

func TestSourceCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small_en.msgpack.gz")
	writePack(t, path, [][]string{{"the"}})

	src := NewSource(dir)
	first, err := src.FrequencyDict("en", VariantSmall)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	second, err := src.FrequencyDict("en", VariantSmall)
	if err != nil {
		t.Fatalf("cached lookup should not touch disk: %v", err)
	}
	if len(first) != len(second) {
		t.Error("cached dictionary differs")
	}
}

func TestSourceWordFrequency(t *testing.T) {
	dir := t.TempDir()
	writePack(t, filepath.Join(dir, "small_en.msgpack.gz"), [][]string{{"the"}, {"of"}})
	src := NewSource(dir)

	freq, err := src.WordFrequency("The", "en", VariantSmall, 0)
	if err != nil || freq != 1 {
		t.Errorf("WordFrequency(The) = %v, %v", freq, err)
	}
	freq, err = src.WordFrequency("missing", "en", VariantSmall, 1e-6)
	if err != nil || freq != 1e-6 {
		t.Errorf("WordFrequency(missing) = %v, %v", freq, err)
	}
}

func TestDetectFileFormat(t *testing.T) {
	dir := t.TempDir()
	pack := filepath.Join(dir, "small_en.msgpack.gz")
	writePack(t, pack, [][]string{{"a"}})
	text := filepath.Join(dir, "small_en.txt")
	os.WriteFile(text, []byte("a\t0.5\n"), 0o644)
	fake := filepath.Join(dir, "fake_en.msgpack.gz")
	os.WriteFile(fake, bytes.Repeat([]byte("x"), 32), 0o644)
	other := filepath.Join(dir, "dict.bin")
	os.WriteFile(other, []byte("data"), 0o644)

	tests := []struct {
		path    string
		want    FileFormat
		wantErr bool
	}{
		{pack, FormatCBPack, false},
		{text, FormatText, false},
		{fake, FormatUnknown, true},
		{other, FormatUnknown, true},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			got, err := DetectFileFormat(tt.path)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("DetectFileFormat = %v, %v; want %v (err %v)", got, err, tt.want, tt.wantErr)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "small_en.txt")
	if err := os.WriteFile(src, []byte("# test list\nthe\t0.05\nworld\t0.0015\nword\t0.001\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	packed := filepath.Join(dir, "small_en.msgpack.gz")
	n, err := Convert(src, packed)
	if err != nil || n != 3 {
		t.Fatalf("Convert = %d, %v", n, err)
	}
	if format, err := DetectFileFormat(packed); err != nil || format != FormatCBPack {
		t.Fatalf("DetectFileFormat = %v, %v", format, err)
	}
	if _, err := os.Stat(packed + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	back := filepath.Join(dir, "back_en.txt")
	if _, err := Convert(packed, back); err != nil {
		t.Fatalf("Convert back: %v", err)
	}
	freqs, err := LoadFile(back)
	if err != nil {
		t.Fatal(err)
	}
	for word, want := range map[string]float64{"the": 0.05, "world": 0.0015, "word": 0.001} {
		// cB quantization keeps frequencies within about 1.2%
		if got := freqs[word]; math.Abs(got-want)/want > 0.012 {
			t.Errorf("%s = %v, want ~%v", word, got, want)
		}
	}

	if _, err := Convert(src, filepath.Join(dir, "out.csv")); err == nil {
		t.Error("expected error for unknown output format")
	}
}

package dictionary

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SaveFile writes freqs to path in the format its extension names.
// The file is written next to its final name and renamed into place.
func SaveFile(path string, freqs map[string]float64) error {
	lower := strings.ToLower(filepath.Base(path))

	var write func(*bufio.Writer) error
	switch {
	case strings.HasSuffix(lower, cbPackExt):
		buckets, err := FreqsToBuckets(freqs)
		if err != nil {
			return err
		}
		write = func(w *bufio.Writer) error { return WriteCBPack(w, buckets) }
	case strings.HasSuffix(lower, ".txt"):
		write = func(w *bufio.Writer) error { return WriteText(w, freqs) }
	default:
		return fmt.Errorf("unable to pick a format for %s", path)
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	bw := bufio.NewWriter(file)
	if err := write(bw); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Convert reads the word list at src and writes it to dst, converting between
// formats as the file names dictate. It returns the number of words written.
func Convert(src, dst string) (int, error) {
	freqs, err := LoadFile(src)
	if err != nil {
		return 0, err
	}
	if err := SaveFile(dst, freqs); err != nil {
		return 0, err
	}
	return len(freqs), nil
}

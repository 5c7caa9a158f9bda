package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ReadText parses "word<TAB>frequency" lines. Blank lines and lines starting
// with '#' are skipped; any field separator of spaces or tabs is accepted.
func ReadText(r io.Reader) (map[string]float64, error) {
	freqs := make(map[string]float64)
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected word and frequency, got %q", lineNo, line)
		}
		freq, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid frequency %q: %w", lineNo, fields[1], err)
		}
		if math.IsNaN(freq) || freq <= 0 || freq > 1 {
			return nil, fmt.Errorf("line %d: frequency %v outside (0, 1]", lineNo, freq)
		}
		freqs[fields[0]] = freq
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read text dictionary: %w", err)
	}
	return freqs, nil
}

// WriteText writes freqs most frequent first, ties in word order.
func WriteText(w io.Writer, freqs map[string]float64) error {
	words := make([]string, 0, len(freqs))
	for word := range freqs {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if freqs[words[i]] != freqs[words[j]] {
			return freqs[words[i]] > freqs[words[j]]
		}
		return words[i] < words[j]
	})

	bw := bufio.NewWriter(w)
	for _, word := range words {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", word, strconv.FormatFloat(freqs[word], 'g', -1, 64)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

package dictionary

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrBadHeader is returned when a cBpack stream does not start with a cB v1 header.
var ErrBadHeader = errors.New("dictionary: unexpected cBpack header")

const (
	cbFormat  = "cB"
	cbVersion = 1
)

type cbHeader struct {
	Format  string `msgpack:"format"`
	Version int    `msgpack:"version"`
}

// ReadCBPack decodes a gzip-compressed msgpack word list.
// Bucket i holds the words whose frequency is i centibels below 1.
func ReadCBPack(r io.Reader) ([][]string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	dec := msgpack.NewDecoder(gz)
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, fmt.Errorf("failed to read cBpack array: %w", err)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: missing header", ErrBadHeader)
	}

	var header cbHeader
	if err := dec.Decode(&header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if header.Format != cbFormat || header.Version != cbVersion {
		return nil, fmt.Errorf("%w: %+v", ErrBadHeader, header)
	}

	buckets := make([][]string, 0, n-1)
	for i := 1; i < n; i++ {
		var bucket []string
		if err := dec.Decode(&bucket); err != nil {
			return nil, fmt.Errorf("failed to read bucket %d: %w", i-1, err)
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

// WriteCBPack encodes buckets in the format ReadCBPack understands.
func WriteCBPack(w io.Writer, buckets [][]string) error {
	gz := gzip.NewWriter(w)
	enc := msgpack.NewEncoder(gz)

	if err := enc.EncodeArrayLen(len(buckets) + 1); err != nil {
		return err
	}
	if err := enc.Encode(map[string]any{"format": cbFormat, "version": cbVersion}); err != nil {
		return err
	}
	for _, bucket := range buckets {
		if bucket == nil {
			bucket = []string{}
		}
		if err := enc.Encode(bucket); err != nil {
			return err
		}
	}
	return gz.Close()
}

// CBToFreq converts centibels to a linear frequency in (0, 1].
func CBToFreq(cB int) (float64, error) {
	if cB > 0 {
		return 0, fmt.Errorf("a frequency cannot be a positive number of centibels: %d", cB)
	}
	return math.Pow(10, float64(cB)/100), nil
}

// FreqToCB converts a frequency in (0, 1] to the nearest centibel value.
func FreqToCB(freq float64) (int, error) {
	if math.IsNaN(freq) || freq <= 0 || freq > 1 {
		return 0, fmt.Errorf("frequency %v outside (0, 1]", freq)
	}
	return int(math.Round(100 * math.Log10(freq))), nil
}

// BucketsToFreqs flattens cBpack buckets into a word→frequency map.
// A word repeated in a later bucket takes that bucket's frequency.
func BucketsToFreqs(buckets [][]string) map[string]float64 {
	freqs := make(map[string]float64)
	for index, bucket := range buckets {
		freq, _ := CBToFreq(-index)
		for _, word := range bucket {
			freqs[word] = freq
		}
	}
	return freqs
}

// FreqsToBuckets groups a word→frequency map into centibel buckets, words sorted inside each bucket.
func FreqsToBuckets(freqs map[string]float64) ([][]string, error) {
	var buckets [][]string
	for word, freq := range freqs {
		cB, err := FreqToCB(freq)
		if err != nil {
			return nil, fmt.Errorf("word %q: %w", word, err)
		}
		index := -cB
		for len(buckets) <= index {
			buckets = append(buckets, []string{})
		}
		buckets[index] = append(buckets[index], word)
	}
	for _, bucket := range buckets {
		sort.Strings(bucket)
	}
	return buckets, nil
}

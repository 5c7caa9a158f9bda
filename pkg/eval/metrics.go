package eval

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned by MeanAP when the two lists differ in length.
var ErrLengthMismatch = errors.New("eval: recommended and relevant lists differ in length")

// PrecisionAtK is the share of the first k recommendations that are relevant.
func PrecisionAtK(recommended []string, relevant map[string]bool, k int) float64 {
	top := topK(recommended, k)
	if len(top) == 0 {
		return 0
	}
	return float64(hits(top, relevant)) / float64(len(top))
}

// RecallAtK is the share of relevant items found in the first k recommendations.
func RecallAtK(recommended []string, relevant map[string]bool, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	return float64(hits(topK(recommended, k), relevant)) / float64(len(relevant))
}

// F1 is the harmonic mean of precision and recall.
func F1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// AveragePrecision averages precision at every rank holding a relevant item,
// divided by the number of relevant items.
func AveragePrecision(recommended []string, relevant map[string]bool) float64 {
	if len(relevant) == 0 {
		return 0
	}

	found := 0
	sum := 0.0
	for i, item := range recommended {
		if relevant[item] {
			found++
			sum += float64(found) / float64(i+1)
		}
	}
	if found == 0 {
		return 0
	}
	return sum / float64(len(relevant))
}

// MeanAP is the mean AveragePrecision over paired queries.
func MeanAP(recommended [][]string, relevant []map[string]bool) (float64, error) {
	if len(recommended) == 0 || len(relevant) == 0 {
		return 0, nil
	}
	if len(recommended) != len(relevant) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(recommended), len(relevant))
	}

	sum := 0.0
	for i := range recommended {
		sum += AveragePrecision(recommended[i], relevant[i])
	}
	return sum / float64(len(recommended)), nil
}

// SavingsRate is the percentage of characters autocomplete spared the user.
func SavingsRate(charsWithout, charsWith int) float64 {
	if charsWithout <= 0 {
		return 0
	}
	return (1 - float64(charsWith)/float64(charsWithout)) * 100
}

func topK(items []string, k int) []string {
	if k < 0 {
		k = 0
	}
	if len(items) > k {
		return items[:k]
	}
	return items
}

func hits(items []string, relevant map[string]bool) int {
	n := 0
	for _, item := range items {
		if relevant[item] {
			n++
		}
	}
	return n
}

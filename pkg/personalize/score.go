package personalize

import (
	"math"
	"strings"
	"time"
)

// DefaultDecay is the per-day weight multiplier applied to older selections.
const DefaultDecay = 0.95

const (
	recencyWeight = 0.1
	userBoost     = 10.0
)

// Scorer blends a profile's history into base frequencies.
// The zero value uses DefaultDecay and the wall clock.
type Scorer struct {
	// Decay must lie in (0, 1). Zero means DefaultDecay.
	Decay float64
	// Now overrides the clock used to age selections.
	Now func() time.Time
}

// NewScorer returns a Scorer with the given decay factor.
func NewScorer(decay float64) Scorer {
	return Scorer{Decay: decay}
}

// Score computes
//
//	recency = Σ decay^days_since(selection)
//	weight  = count * (1 + 0.1*recency)
//	score   = base * (1 + 10*weight)
//
// and returns base unchanged when the user never picked word. The result is
// not capped and may exceed 1.
func Score(word string, baseFrequency float64, p *Profile, decay float64) float64 {
	return Scorer{Decay: decay}.Score(word, baseFrequency, p)
}

// Score is the method form of the package-level Score.
func (s Scorer) Score(word string, baseFrequency float64, p *Profile) float64 {
	if p == nil {
		return baseFrequency
	}

	lower := strings.ToLower(word)
	usage := p.WordCounts[lower]
	if usage == 0 {
		return baseFrequency
	}

	decay := s.Decay
	if decay == 0 {
		decay = DefaultDecay
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	recency := 0.0
	for _, ts := range p.WordTimestamps[lower] {
		recency += math.Pow(decay, float64(daysBetween(ts, now)))
	}

	weight := float64(usage) * (1 + recencyWeight*recency)
	return baseFrequency * (1 + userBoost*weight)
}

// daysBetween returns whole days from then to now, rounded down.
func daysBetween(then, now time.Time) int {
	return int(math.Floor(now.Sub(then).Hours() / 24))
}

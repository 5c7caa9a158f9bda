package eval

import (
	"github.com/bastiangx/wordtrail/pkg/personalize"
)

// Comparison is the keystroke savings of one user with and without their history.
type Comparison struct {
	UserID    string `json:"user_id"`
	Lang      string `json:"lang"`
	Sentences int    `json:"sentences"`
	// savings rates in percent
	General      float64 `json:"general_savings_rate"`
	Personalized float64 `json:"personalized_savings_rate"`
	// Improvement is in percentage points, ImprovementPercent relative to General.
	Improvement        float64 `json:"improvement"`
	ImprovementPercent float64 `json:"improvement_percent"`
}

// Compare builds userID's profile from train and measures how much typing
// it saves on test compared to plain frequency ranking.
func Compare(rec Recommender, userID, lang string, train, test []string, topN int) (*Comparison, *personalize.Profile, error) {
	profile := BuildProfile(userID, train, lang)

	general, err := TestBatch(rec, test, lang, topN, nil)
	if err != nil {
		return nil, nil, err
	}
	personalized, err := TestBatch(rec, test, lang, topN, profile)
	if err != nil {
		return nil, nil, err
	}

	c := &Comparison{
		UserID:       userID,
		Lang:         lang,
		Sentences:    general.SentenceCount,
		General:      SavingsRate(general.TotalCharsWithout, general.TotalCharsWith),
		Personalized: SavingsRate(personalized.TotalCharsWithout, personalized.TotalCharsWith),
	}
	c.Improvement = c.Personalized - c.General
	if c.General > 0 {
		c.ImprovementPercent = c.Improvement / c.General * 100
	}
	return c, profile, nil
}

package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"
)

// Scores is the raw polarity breakdown from the lexicon model.
// Compound is a normalized aggregate in [-1,1]; Positive, Neutral, and
// Negative are the valence proportions.
type Scores struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"pos"`
	Neutral  float64 `json:"neu"`
	Negative float64 `json:"neg"`
}

// Scorer wraps the VADER lexicon/rule model. Deterministic for a given
// lexicon version; no side effects.
type Scorer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewScorer creates a Scorer with the default VADER lexicon.
func NewScorer() *Scorer {
	return &Scorer{sia: govader.NewSentimentIntensityAnalyzer()}
}

// Score computes the polarity breakdown for text. Empty or whitespace-only
// input returns the neutral zero vector (compound=0, neu=1).
func (s *Scorer) Score(text string) Scores {
	if strings.TrimSpace(text) == "" {
		return Scores{Neutral: 1}
	}
	r := s.sia.PolarityScores(text)
	return Scores{
		Compound: r.Compound,
		Positive: r.Positive,
		Neutral:  r.Neutral,
		Negative: r.Negative,
	}
}

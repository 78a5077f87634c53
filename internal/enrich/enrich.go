// Package enrich turns a scored result into a short supportive message.
// Enrichment is best-effort decoration: it never gates scoring or alerting,
// and every failure path degrades to the local templates.
package enrich

import (
	"context"

	"github.com/RAVBLACK/sentiguard/internal/sentiment"
)

// Enricher produces a supportive message for a scored result. moodContext
// is free-form recent-mood text the caller may pass for flavor; it may be
// empty.
type Enricher interface {
	Enrich(ctx context.Context, r sentiment.Result, moodContext string) (string, error)
}

// Band boundaries for the response templates. Finer-grained than the
// scoring categories so the low-negative range gets its own gentler tone.
const (
	bandVeryPositive     = 0.6
	bandPositive         = 0.2
	bandNeutral          = -0.1
	bandSlightlyNegative = -0.4
	bandNegative         = -0.7
)

// Local is the deterministic template enricher. Always available; the
// remote enricher falls back to it on any failure.
type Local struct{}

// NewLocal creates the template enricher.
func NewLocal() *Local {
	return &Local{}
}

var localTemplates = map[sentiment.Category]string{
	sentiment.CategoryVeryPositive:     "You sound like you're having a great time. Hold on to that energy!",
	sentiment.CategoryPositive:         "Things seem to be going well for you. Keep it up!",
	sentiment.CategoryNeutral:          "Sounds like a steady day. Remember to take a break now and then.",
	sentiment.CategorySlightlyNegative: "Seems like something is weighing on you a little. Be kind to yourself today.",
	sentiment.CategoryNegative:         "It sounds like things are rough right now. Talking to someone you trust can help.",
	sentiment.CategoryVeryNegative:     "I'm really sorry you're feeling this way. Please reach out to someone who cares about you.",
}

const concernMessage = "What you wrote sounds really heavy. You don't have to carry it alone - please talk to someone you trust, or reach out to a crisis line."

// Enrich picks the template for the result's mood band. Never fails.
func (l *Local) Enrich(_ context.Context, r sentiment.Result, _ string) (string, error) {
	if r.MentalHealthConcern {
		return concernMessage, nil
	}
	return localTemplates[band(r.AdjustedScore)], nil
}

// band maps an adjusted score onto the template key.
func band(score float64) sentiment.Category {
	switch {
	case score >= bandVeryPositive:
		return sentiment.CategoryVeryPositive
	case score >= bandPositive:
		return sentiment.CategoryPositive
	case score >= bandNeutral:
		return sentiment.CategoryNeutral
	case score >= bandSlightlyNegative:
		return sentiment.CategorySlightlyNegative
	case score >= bandNegative:
		return sentiment.CategoryNegative
	default:
		return sentiment.CategoryVeryNegative
	}
}

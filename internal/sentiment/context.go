package sentiment

import (
	"math"
	"regexp"
	"strings"
)

// Category buckets an adjusted score for display and response selection.
type Category string

const (
	CategoryVeryPositive     Category = "very_positive"
	CategoryPositive         Category = "positive"
	CategoryNeutral          Category = "neutral"
	CategorySlightlyNegative Category = "slightly_negative"
	CategoryNegative         Category = "negative"
	CategoryVeryNegative     Category = "very_negative"
)

// ContextAnalyzer detects the signals the lexicon model misses: sarcasm and
// irony, negative-context phrasing, and mental-health risk. All detection
// runs over the lowercased text against static pattern tables compiled once;
// the analyzer holds no mutable state and is safe for concurrent use.
type ContextAnalyzer struct {
	sarcasm           []*regexp.Regexp
	negativeContexts  []*regexp.Regexp
	potentialSarcasm  []*regexp.Regexp
	mentalHealth      []*regexp.Regexp
	concerningCombos  []*regexp.Regexp
	concerningPhrases []*regexp.Regexp
}

// NewContextAnalyzer creates an analyzer over the built-in pattern tables.
func NewContextAnalyzer() *ContextAnalyzer {
	return &ContextAnalyzer{
		sarcasm:           sarcasmPatterns,
		negativeContexts:  negativeContextPatterns,
		potentialSarcasm:  potentialSarcasmPatterns,
		mentalHealth:      mentalHealthPatterns,
		concerningCombos:  concerningCombinationPatterns,
		concerningPhrases: concerningPhrasePatterns,
	}
}

// DetectSarcasm reports whether text reads as sarcastic and a confidence in
// [0,1]. One strong sarcasm-pattern hit is enough; conflicting positive and
// negative words in the same line, negative-context phrases, and undercut
// positive expressions each add fixed increments.
func (a *ContextAnalyzer) DetectSarcasm(text string) (bool, float64) {
	lower := strings.ToLower(text)
	score := 0.0

	for _, re := range a.sarcasm {
		if re.MatchString(lower) {
			score += sarcasmPatternWeight
			break
		}
	}

	hasPositive := containsAny(lower, positiveWords)
	hasNegative := containsAny(lower, negativeWords)
	if hasPositive && hasNegative {
		score += conflictWeight
	}

	for _, re := range a.negativeContexts {
		if re.MatchString(lower) {
			score += negativeContextWeight
			break
		}
	}

	for _, re := range a.potentialSarcasm {
		if re.MatchString(lower) {
			if hasNegative || containsAny(lower, contrastiveMarkers) {
				score += potentialSarcasmWeight
			}
		}
	}

	return score > sarcasmFlagThreshold, math.Min(score, 1.0)
}

// DetectConcern reports whether text carries mental-health risk phrasing and
// a confidence in [0,1]. Unlike sarcasm, every matching pattern contributes;
// a line hitting several crisis indicators saturates quickly.
func (a *ContextAnalyzer) DetectConcern(text string) (bool, float64) {
	lower := strings.ToLower(text)
	score := 0.0

	for _, re := range a.mentalHealth {
		if re.MatchString(lower) {
			score += mentalHealthWeight
		}
	}

	for _, re := range a.concerningCombos {
		if re.MatchString(lower) {
			score += concerningComboWeight
		}
	}

	return score > concernFlagThreshold, math.Min(score, 1.0)
}

// Adjust applies the correction policy to the base compound score, in fixed
// order: sarcasm flip/dampen, mental-health clamp, concerning-phrase clamp.
func (a *ContextAnalyzer) Adjust(compound float64, text string, sarcastic, concern bool) float64 {
	adjusted := compound

	if sarcastic {
		if adjusted > 0.1 {
			// Positive-looking sarcasm flips negative, less extreme.
			adjusted = -math.Abs(adjusted) * sarcasmPositiveDampening
		} else if adjusted < -0.1 {
			// Already negative, likely exaggerated; dampen, don't flip.
			adjusted = adjusted * sarcasmNegativeDampening
		}
	}

	if concern {
		adjusted = math.Min(adjusted, concernScoreClamp)
	}

	lower := strings.ToLower(text)
	for _, re := range a.concerningPhrases {
		if re.MatchString(lower) {
			adjusted = math.Min(adjusted, concerningPhraseClamp)
			break
		}
	}

	return adjusted
}

// NeedsAttention decides whether a result should be surfaced for review.
func NeedsAttention(adjusted float64, sarcastic, concern bool, concernConfidence float64) bool {
	return adjusted < attentionScoreThreshold ||
		sarcastic ||
		concern ||
		concernConfidence > concernAttentionLevel
}

// Categorize buckets an adjusted score.
func Categorize(score float64) Category {
	switch {
	case score >= 0.5:
		return CategoryVeryPositive
	case score >= 0.1:
		return CategoryPositive
	case score >= -0.1:
		return CategoryNeutral
	case score >= -0.5:
		return CategoryNegative
	default:
		return CategoryVeryNegative
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

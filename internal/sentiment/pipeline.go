package sentiment

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// PreviewMaxRunes bounds how much of an analyzed text may leave the pipeline
// for logging. Privacy constraint: never more than this prefix.
const PreviewMaxRunes = 100

// Result is the full outcome of analyzing one text sample. Derived purely
// from the input text; it carries no persistent identity.
type Result struct {
	RawScore            float64  `json:"raw_score"`
	AdjustedScore       float64  `json:"adjusted_score"`
	Category            Category `json:"category"`
	IsSarcastic         bool     `json:"is_sarcastic"`
	SarcasmConfidence   float64  `json:"sarcasm_confidence"`
	MentalHealthConcern bool     `json:"mental_health_concern"`
	ConcernConfidence   float64  `json:"concern_confidence"`
	NeedsAttention      bool     `json:"needs_attention"`
	Explanation         string   `json:"explanation"`
	Breakdown           Scores   `json:"breakdown"`
}

// AttentionSink receives results flagged as needing attention. Implementations
// must bound what they retain; the pipeline only ever hands over the
// truncated preview, never the full text.
type AttentionSink interface {
	Record(ts time.Time, preview string, r Result)
}

// Pipeline composes the lexicon scorer and the context analyzer into the
// full scoring path. Scoring never returns an error; malformed input
// degrades to the neutral result because this path gates mood alerting.
type Pipeline struct {
	scorer  *Scorer
	context *ContextAnalyzer
	sink    AttentionSink
	now     func() time.Time
}

// NewPipeline creates a Pipeline. sink may be nil to disable attention
// logging (tests, pure scoring).
func NewPipeline(sink AttentionSink) *Pipeline {
	return &Pipeline{
		scorer:  NewScorer(),
		context: NewContextAnalyzer(),
		sink:    sink,
		now:     time.Now,
	}
}

// neutralResult is the fixed outcome for empty/whitespace input.
func neutralResult() Result {
	return Result{
		Category:    CategoryNeutral,
		Explanation: "no input",
		Breakdown:   Scores{Neutral: 1},
	}
}

// Analyze scores one text sample: base lexicon pass, then context
// correction. Results for the same text and pattern tables are identical
// across calls.
func (p *Pipeline) Analyze(text string) Result {
	if strings.TrimSpace(text) == "" {
		return neutralResult()
	}

	raw := p.scorer.Score(text)
	sarcastic, sarcasmConf := p.context.DetectSarcasm(text)
	concern, concernConf := p.context.DetectConcern(text)
	adjusted := p.context.Adjust(raw.Compound, text, sarcastic, concern)

	r := Result{
		RawScore:            raw.Compound,
		AdjustedScore:       adjusted,
		Category:            Categorize(adjusted),
		IsSarcastic:         sarcastic,
		SarcasmConfidence:   sarcasmConf,
		MentalHealthConcern: concern,
		ConcernConfidence:   concernConf,
		NeedsAttention:      NeedsAttention(adjusted, sarcastic, concern, concernConf),
		Explanation:         explain(raw.Compound, adjusted, sarcastic, concern),
		Breakdown:           raw,
	}

	if r.NeedsAttention && p.sink != nil {
		p.sink.Record(p.now(), Preview(text), r)
	}

	return r
}

// AnalyzeIncremental scores only the lines beyond previousCount, so callers
// ingesting a growing line log never rescore unchanged history. Re-running
// on an unchanged line set yields the same scores.
func (p *Pipeline) AnalyzeIncremental(lines []string, previousCount int) []Result {
	if previousCount < 0 {
		previousCount = 0
	}
	if previousCount >= len(lines) {
		return nil
	}

	results := make([]Result, 0, len(lines)-previousCount)
	for _, line := range lines[previousCount:] {
		results = append(results, p.Analyze(line))
	}
	return results
}

// Preview returns the loggable prefix of text, truncated to PreviewMaxRunes.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewMaxRunes {
		return text
	}
	return string(runes[:PreviewMaxRunes]) + "..."
}

// explain summarizes why (or that no) adjustment was applied.
func explain(original, adjusted float64, sarcastic, concern bool) string {
	switch {
	case concern:
		return "Mental health concern detected - flagged for attention"
	case sarcastic:
		return fmt.Sprintf("Sarcasm detected - sentiment adjusted from %.2f to %.2f", original, adjusted)
	case math.Abs(original-adjusted) > 0.2:
		return fmt.Sprintf("Context adjustment applied - modified from %.2f to %.2f", original, adjusted)
	default:
		return "Standard sentiment analysis applied"
	}
}

package sentiment

import "regexp"

// Pattern confidence increments. Tuned empirically in production use; the
// strict > comparisons that consume them live in context.go.
const (
	sarcasmPatternWeight     = 0.7
	conflictWeight           = 0.5
	negativeContextWeight    = 0.6
	potentialSarcasmWeight   = 0.4
	mentalHealthWeight       = 0.8
	concerningComboWeight    = 0.6
	sarcasmFlagThreshold     = 0.5
	concernFlagThreshold     = 0.5
	concernAttentionLevel    = 0.3
	attentionScoreThreshold  = -0.4
	concernScoreClamp        = -0.7
	concerningPhraseClamp    = -0.6
	sarcasmPositiveDampening = 0.7
	sarcasmNegativeDampening = 0.5
)

// sarcasmPatterns pair an intensity or positive word with a proximate
// violent/negative word. One match is a strong indicator; scanning stops at
// the first hit.
var sarcasmPatterns = compilePatterns([]string{
	`so\s+(\w+)\s+.*?(kill|die|murder|destroy|hate)`,
	`really\s+(\w+)\s+.*?(awful|terrible|horrible)`,
	`just\s+(perfect|great|wonderful)\s+.*?(not|never|fail|wrong|disaster)`,
	`(happy|excited|thrilled)\s+.*?(kill|murder|destroy)`,
	`(love|adore)\s+.*?(when\s+things\s+go\s+wrong|when\s+people\s+ignore)`,
	`(amazing|wonderful|perfect)\s+.*?(day|time)\s+.*?(disaster|failure|wrong|disappointment)`,
	`(so|really|very)\s+(excited|happy|thrilled)\s+.*?(could\s+(die|kill))`,
	`(great|perfect|wonderful),?\s+another\s+.*?(day|time)\s+.*?(disappointment|failure|disaster)`,
	`(love|adore)\s+it\s+when\s+.*?(ignore|hurt|disappoint)`,
})

// negativeContextPatterns are phrases whose negative meaning survives any
// positive framing around them.
var negativeContextPatterns = compilePatterns([]string{
	`(kill|murder|destroy|eliminate)\s+(someone|somebody|people)`,
	`(die|death|dead)\s+(inside|emotionally)`,
	`could\s+(murder|kill)\s+(for|someone)`,
	`(hate|despise)\s+(everything|everyone|life)`,
	`want\s+to\s+(die|disappear|give\s+up)`,
	`wish\s+.*?(dead|gone|never\s+born)`,
	`(end|finish)\s+it\s+all`,
	`nothing\s+matters\s+anymore`,
})

// potentialSarcasmPatterns are positive expressions that read as sarcastic
// when negative elements or a contrastive conjunction appear alongside.
var potentialSarcasmPatterns = compilePatterns([]string{
	`(so|really|very)\s+(happy|excited|thrilled|perfect|great|wonderful|amazing)`,
	`(absolutely|totally|completely)\s+(love|adore|perfect)`,
	`just\s+(perfect|great|wonderful|amazing)`,
})

// mentalHealthPatterns are crisis indicators that need immediate attention.
var mentalHealthPatterns = compilePatterns([]string{
	`(want|wish)\s+to\s+(die|kill\s+myself|end\s+it)`,
	`(suicide|suicidal|self\s+harm|cutting)`,
	`(no\s+point|meaningless|worthless|useless)`,
	`(everyone\s+hates\s+me|nobody\s+cares|alone\s+forever)`,
	`(can't\s+take\s+it|give\s+up|end\s+everything)`,
})

// concerningCombinationPatterns pair positive words with harm words.
var concerningCombinationPatterns = compilePatterns([]string{
	`(happy|excited).*?(kill|murder|hurt)`,
	`(love|adore).*?(pain|suffering|death)`,
	`(perfect|wonderful).*?(end|finish|over)`,
})

// concerningPhrasePatterns force the adjusted score negative regardless of
// any positive words in the same line.
var concerningPhrasePatterns = compilePatterns([]string{
	`(kill|murder)\s+(someone|somebody|people)`,
	`want\s+to\s+(die|kill\s+myself)`,
	`(hate|despise)\s+(life|everything|everyone)`,
	`(wish|want)\s+.*?(dead|gone|disappear)`,
	`(end|finish)\s+it\s+all`,
	`no\s+point\s+(in\s+)?(living|trying|anything)`,
})

var positiveWords = []string{
	"happy", "great", "wonderful", "perfect", "amazing",
	"love", "excited", "thrilled", "fantastic",
}

var negativeWords = []string{
	"kill", "murder", "destroy", "hate", "die",
	"awful", "terrible", "horrible", "disaster",
}

// contrastiveMarkers suggest a positive phrase is being undercut.
var contrastiveMarkers = []string{"when", "while", "but"}

// compilePatterns compiles a pattern list, skipping any entry that fails to
// compile. A bad pattern degrades to "no match" rather than taking down the
// scoring path.
func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

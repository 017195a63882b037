package domain

// Limits shared by all languages and modes.
const (
	MinTextChars    = 50
	MaxSentences    = 50
	MaxKeywords     = 100
	DefaultMaxSents = 5
	DefaultKeywords = 15
)

// LanguagePolicy carries everything that differs between English and
// Chinese processing: sentence terminators, the size estimator used by
// the chunker, the token budget accepted by the model, stopwords and
// default generation constraints. Components take a policy instead of
// branching on a language flag.
type LanguagePolicy struct {
	Language       Language
	Terminators    []rune
	TokenBudget    int
	CharsPerToken  int
	SentenceJoiner string
	Model          string

	// Per-chunk constraints for the multi-pass path and the
	// single-call fast path.
	EnhancedConstraints GenerationConstraints
	FastConstraints     GenerationConstraints

	Stopwords map[string]struct{}
}

// EstimateTokens approximates the model token count of text. English
// uses a chars-per-token heuristic; Chinese counts runes directly
// (CharsPerToken = 1).
func (p LanguagePolicy) EstimateTokens(text string) int {
	runes := 0
	for range text {
		runes++
	}
	if p.CharsPerToken <= 1 {
		return runes
	}
	return (runes + p.CharsPerToken - 1) / p.CharsPerToken
}

// IsTerminator reports whether r ends a sentence under this policy.
func (p LanguagePolicy) IsTerminator(r rune) bool {
	for _, t := range p.Terminators {
		if r == t {
			return true
		}
	}
	return false
}

// EnglishPolicy builds the canonical English policy around a model
// checkpoint name and input budget.
func EnglishPolicy(model string, tokenBudget int, stopwords map[string]struct{}) LanguagePolicy {
	if tokenBudget <= 0 {
		tokenBudget = 1024
	}
	return LanguagePolicy{
		Language:       LanguageEnglish,
		Terminators:    []rune{'.', '!', '?'},
		TokenBudget:    tokenBudget,
		CharsPerToken:  4,
		SentenceJoiner: " ",
		Model:          model,
		EnhancedConstraints: GenerationConstraints{
			MaxOutputTokens: 150,
			MinOutputTokens: 40,
			Temperature:     0.8,
			TopP:            0.9,
		},
		FastConstraints: GenerationConstraints{
			MaxOutputTokens: 500,
			MinOutputTokens: 50,
		},
		Stopwords: stopwords,
	}
}

// ChinesePolicy builds the canonical Chinese policy. The budget is
// tighter because the reference checkpoints accept fewer tokens.
func ChinesePolicy(model string, tokenBudget int, stopwords map[string]struct{}) LanguagePolicy {
	if tokenBudget <= 0 {
		tokenBudget = 800
	}
	return LanguagePolicy{
		Language:       LanguageChinese,
		Terminators:    []rune{'。', '！', '？'},
		TokenBudget:    tokenBudget,
		CharsPerToken:  1,
		SentenceJoiner: "",
		Model:          model,
		EnhancedConstraints: GenerationConstraints{
			MaxOutputTokens: 150,
			MinOutputTokens: 30,
			Temperature:     0.8,
			TopP:            0.9,
		},
		FastConstraints: GenerationConstraints{
			MaxOutputTokens: 150,
			MinOutputTokens: 30,
		},
		Stopwords: stopwords,
	}
}

package domain

import "time"

type Language string

const (
	LanguageEnglish Language = "english"
	LanguageChinese Language = "chinese"
)

type Mode string

const (
	ModeFast     Mode = "fast"
	ModeEnhanced Mode = "enhanced"
)

// Document is the immutable input of one processing request.
type Document struct {
	Text     string
	Language Language
}

// Sentence is one segmenter unit. CharStart/CharEnd are byte offsets
// into the document text; Index preserves original order.
type Sentence struct {
	Text      string
	Index     int
	CharStart int
	CharEnd   int
}

// Chunk is a contiguous, sentence-respecting slice of a document sized
// to fit one generative-model invocation. A single sentence over the
// budget becomes its own oversized chunk rather than being truncated.
type Chunk struct {
	Sentences    []Sentence
	TokenBudget  int
	SizeEstimate int
}

func (c Chunk) SentenceCount() int {
	return len(c.Sentences)
}

// Join assembles the chunk text with the policy's sentence joiner.
func (c Chunk) Join(sep string) string {
	switch len(c.Sentences) {
	case 0:
		return ""
	case 1:
		return c.Sentences[0].Text
	}
	n := 0
	for _, s := range c.Sentences {
		n += len(s.Text) + len(sep)
	}
	out := make([]byte, 0, n)
	for i, s := range c.Sentences {
		if i > 0 {
			out = append(out, sep...)
		}
		out = append(out, s.Text...)
	}
	return string(out)
}

// GenerationConstraints is passed opaquely to the generative model and
// never mutated mid-run.
type GenerationConstraints struct {
	MaxOutputTokens int
	MinOutputTokens int
	Temperature     float64
	TopP            float64
	NumSentences    int
}

// PartialSummary is the output of one model invocation over one chunk.
type PartialSummary struct {
	ChunkIndex int
	Text       string
}

// Summary is the final merged output. Counters feed the metrics layer.
type Summary struct {
	Text         string
	Language     Language
	Mode         Mode
	ChunkCount   int
	Passes       int
	FailedChunks int
	Retries      int
	Elapsed      time.Duration
}

type TermKind string

const (
	TermWord   TermKind = "word"
	TermPhrase TermKind = "phrase"
)

// Term is one ranked keyword or phrase. Output ordering is descending
// by score, ties broken by first occurrence in the document.
type Term struct {
	Text  string   `json:"text"`
	Kind  TermKind `json:"kind"`
	Score float64  `json:"score"`
}

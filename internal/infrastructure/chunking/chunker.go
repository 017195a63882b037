package chunking

import (
	"github.com/docdigest/docdigest/internal/core/domain"
	"github.com/docdigest/docdigest/internal/core/ports"
)

// SentenceChunker packs sentences into chunks by greedy bin packing in
// document order. Chunk boundaries never fall inside a sentence and
// the union of all chunks equals the input sequence exactly once.
type SentenceChunker struct{}

func New() *SentenceChunker {
	return &SentenceChunker{}
}

// Chunk groups sentences under tokenBudget using estimate for sizing.
// A single sentence over the budget becomes its own oversized chunk;
// truncating it would lose information silently.
func (c *SentenceChunker) Chunk(sentences []domain.Sentence, tokenBudget int, estimate ports.SizeEstimator) []domain.Chunk {
	if len(sentences) == 0 {
		return nil
	}
	if tokenBudget <= 0 {
		tokenBudget = 1024
	}

	out := make([]domain.Chunk, 0, 4)
	current := domain.Chunk{TokenBudget: tokenBudget}

	flush := func() {
		if len(current.Sentences) > 0 {
			out = append(out, current)
			current = domain.Chunk{TokenBudget: tokenBudget}
		}
	}

	for _, s := range sentences {
		size := estimate(s.Text)
		if len(current.Sentences) > 0 && current.SizeEstimate+size > tokenBudget {
			flush()
		}
		current.Sentences = append(current.Sentences, s)
		current.SizeEstimate += size
	}
	flush()
	return out
}

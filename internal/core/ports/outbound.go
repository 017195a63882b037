package ports

import (
	"context"

	"github.com/docdigest/docdigest/internal/core/domain"
)

// SentenceSegmenter splits raw text into ordered sentences with byte
// offsets. The whole document is segmented eagerly.
type SentenceSegmenter interface {
	Segment(text string) ([]domain.Sentence, error)
}

// SizeEstimator approximates the model-facing size of a text fragment.
type SizeEstimator func(text string) int

// Chunker groups sentences into budget-respecting chunks without
// breaking sentence boundaries or order.
type Chunker interface {
	Chunk(sentences []domain.Sentence, tokenBudget int, estimate SizeEstimator) []domain.Chunk
}

// TextGenerator is the opaque generative model boundary. Failures that
// may succeed on retry carry the domain.ErrModel kind.
type TextGenerator interface {
	Generate(ctx context.Context, model, text string, constraints domain.GenerationConstraints) (string, error)
}

// WordSegmenter tokenizes text into words. Boundaries must be stable
// for identical input and configuration.
type WordSegmenter interface {
	Cut(text string) []string
}

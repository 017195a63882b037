package ports

import (
	"context"
	"io"

	"github.com/docdigest/docdigest/internal/core/domain"
)

// SummarizeRequest is the inbound contract of one summarization run.
type SummarizeRequest struct {
	Text         string
	Language     domain.Language
	Mode         domain.Mode
	MaxSentences int
}

// Summarizer drives the chunking and multi-pass generation pipeline.
type Summarizer interface {
	Summarize(ctx context.Context, req SummarizeRequest) (*domain.Summary, error)
}

// RankRequest is the inbound contract of one keyword ranking call.
type RankRequest struct {
	Text           string
	Language       domain.Language
	Kind           domain.TermKind
	TopN           int
	ExtraStopwords []string
}

// KeywordRanker scores terms and phrases independently of the
// summarization passes.
type KeywordRanker interface {
	Rank(ctx context.Context, req RankRequest) ([]domain.Term, error)
}

// DocumentLoader turns an uploaded artifact into raw text. The format
// is inferred from the filename.
type DocumentLoader interface {
	Load(ctx context.Context, filename string, r io.Reader) (string, error)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/docdigest/docdigest/internal/core/domain"
	"github.com/docdigest/docdigest/internal/core/ports"
)

// LanguageRuntime bundles the policy with the language-specific
// collaborators selected at bootstrap.
type LanguageRuntime struct {
	Policy    domain.LanguagePolicy
	Segmenter ports.SentenceSegmenter
	Words     ports.WordSegmenter
}

type runState string

const (
	stateNotStarted runState = "not_started"
	stateChunking   runState = "chunking"
	stateFirstPass  runState = "first_pass"
	stateSecondPass runState = "second_pass"
	stateMerging    runState = "merging"
	stateDone       runState = "done"
	stateFailed     runState = "failed"
)

// SummarizeUseCase runs the chunking and multi-pass generation state
// machine. One invocation processes one document synchronously; no
// state survives the call.
type SummarizeUseCase struct {
	runtimes  map[domain.Language]LanguageRuntime
	chunker   ports.Chunker
	generator ports.TextGenerator
}

func NewSummarizeUseCase(
	runtimes map[domain.Language]LanguageRuntime,
	chunker ports.Chunker,
	generator ports.TextGenerator,
) *SummarizeUseCase {
	return &SummarizeUseCase{
		runtimes:  runtimes,
		chunker:   chunker,
		generator: generator,
	}
}

type run struct {
	state    runState
	req      ports.SummarizeRequest
	rt       LanguageRuntime
	chunks   []domain.Chunk
	partials []domain.PartialSummary
	failed   int
	retries  int
	passes   int
}

func (uc *SummarizeUseCase) Summarize(ctx context.Context, req ports.SummarizeRequest) (*domain.Summary, error) {
	started := time.Now()
	r := &run{state: stateNotStarted, req: req}

	if err := uc.validate(r); err != nil {
		r.state = stateFailed
		return nil, err
	}
	if err := uc.chunkDocument(r); err != nil {
		r.state = stateFailed
		return nil, err
	}
	if err := uc.firstPass(ctx, r); err != nil {
		r.state = stateFailed
		return nil, err
	}
	if err := uc.secondPass(ctx, r); err != nil {
		r.state = stateFailed
		return nil, err
	}

	r.state = stateMerging
	text := uc.merge(r)
	r.state = stateDone

	slog.Debug("summarization_run",
		"state", string(r.state),
		"language", string(req.Language),
		"mode", string(req.Mode),
		"chunks", len(r.chunks),
		"passes", r.passes,
		"failed_chunks", r.failed,
	)

	return &domain.Summary{
		Text:         text,
		Language:     req.Language,
		Mode:         req.Mode,
		ChunkCount:   len(r.chunks),
		Passes:       r.passes,
		FailedChunks: r.failed,
		Retries:      r.retries,
		Elapsed:      time.Since(started),
	}, nil
}

// validate rejects malformed requests before any model call is made.
func (uc *SummarizeUseCase) validate(r *run) error {
	rt, ok := uc.runtimes[r.req.Language]
	if !ok {
		return domain.WrapError(domain.ErrInvalidParameter, "validate request",
			fmt.Errorf("unsupported language %q", r.req.Language))
	}
	r.rt = rt

	if r.req.Mode != domain.ModeFast && r.req.Mode != domain.ModeEnhanced {
		return domain.WrapError(domain.ErrInvalidParameter, "validate request",
			fmt.Errorf("unsupported mode %q", r.req.Mode))
	}
	if n := len([]rune(strings.TrimSpace(r.req.Text))); n < domain.MinTextChars {
		return domain.WrapError(domain.ErrInvalidParameter, "validate request",
			fmt.Errorf("text is %d chars, need at least %d", n, domain.MinTextChars))
	}
	if r.req.MaxSentences < 1 || r.req.MaxSentences > domain.MaxSentences {
		return domain.WrapError(domain.ErrInvalidParameter, "validate request",
			fmt.Errorf("max sentences %d outside 1..%d", r.req.MaxSentences, domain.MaxSentences))
	}
	return nil
}

func (uc *SummarizeUseCase) chunkDocument(r *run) error {
	r.state = stateChunking
	sentences, err := r.rt.Segmenter.Segment(r.req.Text)
	if err != nil {
		return fmt.Errorf("segment document: %w", err)
	}
	r.chunks = uc.chunker.Chunk(sentences, r.rt.Policy.TokenBudget, r.rt.Policy.EstimateTokens)
	return nil
}

// firstPass summarizes every chunk in order. A chunk failure is
// absorbed as long as at least one chunk succeeds.
func (uc *SummarizeUseCase) firstPass(ctx context.Context, r *run) error {
	r.state = stateFirstPass
	constraints := uc.scaledConstraints(r, len(r.chunks))

	for i, chunk := range r.chunks {
		text := chunk.Join(r.rt.Policy.SentenceJoiner)
		out, err := uc.generateWithRetry(ctx, r, text, constraints)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			slog.Warn("chunk_generation_failed",
				"chunk", i,
				"chunks_total", len(r.chunks),
				"error", err,
			)
			r.failed++
			continue
		}
		r.partials = append(r.partials, domain.PartialSummary{ChunkIndex: i, Text: out})
	}
	r.passes = 1

	if len(r.partials) == 0 {
		return domain.WrapError(domain.ErrSummarizationUnavailable, "first pass",
			errors.New("every chunk failed"))
	}
	return nil
}

// secondPass compresses the concatenated first-pass output when
// independently summarized chunks may overlap or exceed the requested
// budget in aggregate. A second-pass chunk failure degrades to its
// input text instead of dropping content that already survived.
func (uc *SummarizeUseCase) secondPass(ctx context.Context, r *run) error {
	combined := uc.joinPartials(r)
	overBudget := r.rt.Policy.EstimateTokens(combined) > r.rt.Policy.TokenBudget
	if !overBudget && !(r.req.Mode == domain.ModeEnhanced && len(r.chunks) > 1) {
		return nil
	}

	r.state = stateSecondPass
	sentences, err := r.rt.Segmenter.Segment(combined)
	if err != nil {
		return domain.WrapError(domain.ErrSummarizationUnavailable, "second pass", err)
	}
	chunks := uc.chunker.Chunk(sentences, r.rt.Policy.TokenBudget, r.rt.Policy.EstimateTokens)
	constraints := uc.scaledConstraints(r, len(chunks))

	compressed := make([]domain.PartialSummary, 0, len(chunks))
	for i, chunk := range chunks {
		text := chunk.Join(r.rt.Policy.SentenceJoiner)
		out, err := uc.generateWithRetry(ctx, r, text, constraints)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			slog.Warn("second_pass_chunk_degraded", "chunk", i, "error", err)
			out = text
		}
		compressed = append(compressed, domain.PartialSummary{ChunkIndex: i, Text: out})
	}
	r.partials = compressed
	r.passes = 2
	return nil
}

// generateWithRetry invokes the model once, retrying a transient model
// failure a single time with reduced constraints.
func (uc *SummarizeUseCase) generateWithRetry(
	ctx context.Context,
	r *run,
	text string,
	constraints domain.GenerationConstraints,
) (string, error) {
	out, err := uc.generator.Generate(ctx, r.rt.Policy.Model, text, constraints)
	if err == nil {
		return strings.TrimSpace(out), nil
	}
	if ctx.Err() != nil || !domain.IsKind(err, domain.ErrModel) {
		return "", err
	}

	r.retries++
	reduced := reduceConstraints(constraints)
	slog.Warn("retrying_chunk_with_reduced_constraints",
		"max_output_tokens", reduced.MaxOutputTokens,
		"error", err,
	)
	out, err = uc.generator.Generate(ctx, r.rt.Policy.Model, text, reduced)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// scaledConstraints divides the requested sentence budget across
// chunks so independent chunk summaries stay proportionate.
func (uc *SummarizeUseCase) scaledConstraints(r *run, chunkCount int) domain.GenerationConstraints {
	constraints := r.rt.Policy.EnhancedConstraints
	if r.req.Mode == domain.ModeFast {
		constraints = r.rt.Policy.FastConstraints
	}
	if chunkCount < 1 {
		chunkCount = 1
	}
	constraints.NumSentences = max(1, r.req.MaxSentences/chunkCount)
	return constraints
}

func reduceConstraints(c domain.GenerationConstraints) domain.GenerationConstraints {
	c.MaxOutputTokens = max(16, c.MaxOutputTokens/2)
	if c.MinOutputTokens > c.MaxOutputTokens {
		c.MinOutputTokens = c.MaxOutputTokens
	}
	return c
}

func (uc *SummarizeUseCase) joinPartials(r *run) string {
	parts := make([]string, len(r.partials))
	for i, p := range r.partials {
		parts[i] = p.Text
	}
	return strings.Join(parts, r.rt.Policy.SentenceJoiner)
}

// merge produces the final summary string: plain sentence-trimmed text
// in fast mode, deduplicated markdown bullets in enhanced mode.
func (uc *SummarizeUseCase) merge(r *run) string {
	combined := uc.joinPartials(r)
	if r.req.Mode == domain.ModeFast {
		return uc.trimToSentences(r, combined)
	}
	return uc.formatBullets(r, combined)
}

// trimToSentences caps the summary at the requested sentence count.
// Output that already fits is returned verbatim.
func (uc *SummarizeUseCase) trimToSentences(r *run, text string) string {
	sentences, err := r.rt.Segmenter.Segment(text)
	if err != nil || len(sentences) <= r.req.MaxSentences {
		return text
	}
	parts := make([]string, r.req.MaxSentences)
	for i := range parts {
		parts[i] = sentences[i].Text
	}
	return strings.Join(parts, r.rt.Policy.SentenceJoiner)
}

// formatBullets restructures the merged summary into markdown bullets,
// dropping near-identical bullets by normalized comparison so chunk
// overlap does not produce redundant points.
func (uc *SummarizeUseCase) formatBullets(r *run, text string) string {
	sentences, err := r.rt.Segmenter.Segment(text)
	if err != nil {
		return text
	}
	if len(sentences) > r.req.MaxSentences {
		sentences = sentences[:r.req.MaxSentences]
	}
	if len(sentences) == 1 {
		return sentences[0].Text
	}

	seen := make(map[string]struct{}, len(sentences))
	lines := make([]string, 0, len(sentences))
	for _, s := range sentences {
		key := normalizeBullet(s.Text)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		lines = append(lines, "- "+s.Text)
	}
	if len(lines) == 1 {
		return strings.TrimPrefix(lines[0], "- ")
	}
	return strings.Join(lines, "\n")
}

// normalizeBullet case-folds, strips punctuation and collapses
// whitespace; two bullets with the same normalization are duplicates.
func normalizeBullet(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

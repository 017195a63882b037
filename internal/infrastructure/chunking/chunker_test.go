package chunking

import (
	"strings"
	"testing"

	"github.com/docdigest/docdigest/internal/core/domain"
)

func runeEstimate(text string) int {
	return len([]rune(text))
}

func makeSentences(texts ...string) []domain.Sentence {
	out := make([]domain.Sentence, len(texts))
	offset := 0
	for i, t := range texts {
		out[i] = domain.Sentence{Text: t, Index: i, CharStart: offset, CharEnd: offset + len(t)}
		offset += len(t) + 1
	}
	return out
}

func TestChunkCoversEverySentenceExactlyOnce(t *testing.T) {
	sentences := makeSentences(
		"Alpha beta gamma.",
		"Delta epsilon.",
		"Zeta eta theta iota kappa.",
		"Lambda mu.",
		"Nu xi omicron pi rho sigma.",
	)
	chunks := New().Chunk(sentences, 30, runeEstimate)
	if len(chunks) < 2 {
		t.Fatalf("budget should force multiple chunks, got %d", len(chunks))
	}

	var flattened []domain.Sentence
	for _, c := range chunks {
		flattened = append(flattened, c.Sentences...)
	}
	if len(flattened) != len(sentences) {
		t.Fatalf("expected %d sentences across chunks, got %d", len(sentences), len(flattened))
	}
	for i, s := range flattened {
		if s.Index != sentences[i].Index || s.Text != sentences[i].Text {
			t.Fatalf("sentence %d reordered or altered: %#v", i, s)
		}
	}
}

func TestChunkRespectsBudget(t *testing.T) {
	sentences := makeSentences(
		"Short one.",
		"Another short sentence here.",
		"A third sentence of text.",
		"And a final closing line.",
	)
	budget := 40
	for _, c := range New().Chunk(sentences, budget, runeEstimate) {
		if len(c.Sentences) > 1 && c.SizeEstimate > budget {
			t.Fatalf("multi-sentence chunk exceeds budget: %d > %d", c.SizeEstimate, budget)
		}
	}
}

func TestOversizedSentenceBecomesOwnChunk(t *testing.T) {
	long := strings.Repeat("word ", 40)
	sentences := makeSentences("Tiny.", long, "Tail.")
	chunks := New().Chunk(sentences, 50, runeEstimate)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[1].SentenceCount() != 1 || chunks[1].SizeEstimate <= 50 {
		t.Fatalf("oversized sentence must stand alone untruncated: %#v", chunks[1])
	}
}

func TestSingleSentenceUnderBudgetYieldsOneChunk(t *testing.T) {
	chunks := New().Chunk(makeSentences("One small sentence."), 1024, runeEstimate)
	if len(chunks) != 1 || chunks[0].SentenceCount() != 1 {
		t.Fatalf("expected exactly one chunk with one sentence, got %#v", chunks)
	}
}

func TestChunkJoinUsesSeparator(t *testing.T) {
	chunks := New().Chunk(makeSentences("First.", "Second."), 1024, runeEstimate)
	if got := chunks[0].Join(" "); got != "First. Second." {
		t.Fatalf("Join() = %q", got)
	}
}

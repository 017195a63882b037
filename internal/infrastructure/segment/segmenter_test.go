package segment

import (
	"testing"

	"github.com/docdigest/docdigest/internal/core/domain"
)

func TestLatinSplitsOnTerminalPunctuation(t *testing.T) {
	text := "The market closed higher today. Analysts expect more gains! Will the trend hold?"
	got, err := NewLatin().Segment(text)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	want := []string{
		"The market closed higher today.",
		"Analysts expect more gains!",
		"Will the trend hold?",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %#v", len(want), len(got), got)
	}
	for i, s := range got {
		if s.Text != want[i] {
			t.Fatalf("sentence %d = %q, want %q", i, s.Text, want[i])
		}
		if s.Index != i {
			t.Fatalf("sentence %d carries index %d", i, s.Index)
		}
		if text[s.CharStart:s.CharEnd] != s.Text {
			t.Fatalf("offsets of sentence %d do not slice back to its text", i)
		}
	}
}

func TestLatinGuardsSingleLetterAbbreviations(t *testing.T) {
	got, err := NewLatin().Segment("Dr J. Smith arrived late. Everyone noticed.")
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %#v", len(got), got)
	}
	if got[0].Text != "Dr J. Smith arrived late." {
		t.Fatalf("abbreviation split sentence: %q", got[0].Text)
	}
}

func TestLatinKeepsLowercaseContinuation(t *testing.T) {
	got, err := NewLatin().Segment("version 2.0 was released. it works")
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected conservative non-split, got %d sentences", len(got))
	}
}

func TestLatinTextWithoutTerminatorIsOneSentence(t *testing.T) {
	got, err := NewLatin().Segment("a fragment without any terminal punctuation")
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(got))
	}
}

func TestHanSplitsOnFullWidthPunctuation(t *testing.T) {
	text := "今天天气很好。我们去公园散步！你也来吗？"
	got, err := NewHan().Segment(text)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	want := []string{"今天天气很好。", "我们去公园散步！", "你也来吗？"}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %#v", len(want), len(got), got)
	}
	for i, s := range got {
		if s.Text != want[i] {
			t.Fatalf("sentence %d = %q, want %q", i, s.Text, want[i])
		}
		if text[s.CharStart:s.CharEnd] != s.Text {
			t.Fatalf("offsets of sentence %d do not slice back to its text", i)
		}
	}
}

func TestSegmentRejectsWhitespaceOnlyInput(t *testing.T) {
	_, err := NewLatin().Segment("   \n\t ")
	if !domain.IsKind(err, domain.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter kind, got %v", err)
	}
}

package segment

import (
	"errors"
	"strings"
	"unicode"

	"github.com/docdigest/docdigest/internal/core/domain"
)

// Splitter is a conservative rule-based sentence segmenter. Latin mode
// splits on terminal punctuation followed by whitespace and a capital
// letter (or end of text) and guards against single-letter
// abbreviations. Han mode splits directly after full-width terminators
// with no whitespace assumption.
type Splitter struct {
	terminators map[rune]struct{}
	latinRules  bool
}

func NewLatin() *Splitter {
	return &Splitter{
		terminators: map[rune]struct{}{'.': {}, '!': {}, '?': {}},
		latinRules:  true,
	}
}

func NewHan() *Splitter {
	return &Splitter{
		terminators: map[rune]struct{}{'。': {}, '！': {}, '？': {}},
		latinRules:  false,
	}
}

// Segment splits text eagerly into ordered sentences carrying byte
// offsets into the original text. Trailing text without a terminator
// becomes the last sentence. Whitespace-only fragments are dropped.
func (s *Splitter) Segment(text string) ([]domain.Sentence, error) {
	rs := []rune(text)
	offs := make([]int, len(rs)+1)
	{
		b := 0
		for i, r := range rs {
			offs[i] = b
			b += len(string(r))
		}
		offs[len(rs)] = len(text)
	}

	var sentences []domain.Sentence
	emit := func(from, to int) {
		for from < to && unicode.IsSpace(rs[from]) {
			from++
		}
		for to > from && unicode.IsSpace(rs[to-1]) {
			to--
		}
		if from >= to {
			return
		}
		sentences = append(sentences, domain.Sentence{
			Text:      string(rs[from:to]),
			Index:     len(sentences),
			CharStart: offs[from],
			CharEnd:   offs[to],
		})
	}

	start := 0
	for k := 0; k < len(rs); k++ {
		if _, ok := s.terminators[rs[k]]; !ok {
			continue
		}
		if !s.latinRules {
			emit(start, k+1)
			start = k + 1
			continue
		}
		if rs[k] == '.' && isInitialAbbrev(rs, k) {
			continue
		}
		next := k + 1
		if next < len(rs) && !unicode.IsSpace(rs[next]) {
			continue
		}
		for next < len(rs) && unicode.IsSpace(rs[next]) {
			next++
		}
		if next < len(rs) && !unicode.IsUpper(rs[next]) && !unicode.IsDigit(rs[next]) {
			continue
		}
		emit(start, k+1)
		start = next
		k = next - 1
	}
	emit(start, len(rs))

	if len(sentences) == 0 {
		if strings.TrimSpace(text) == "" {
			return nil, domain.WrapError(domain.ErrInvalidParameter, "segment text", errors.New("empty input"))
		}
		return nil, domain.WrapError(domain.ErrInvalidParameter, "segment text", errors.New("no sentences found"))
	}
	return sentences, nil
}

// isInitialAbbrev reports whether the period at rs[k] terminates a
// single-letter token such as an initial ("J. Smith").
func isInitialAbbrev(rs []rune, k int) bool {
	if k == 0 || !unicode.IsLetter(rs[k-1]) {
		return false
	}
	return k-2 < 0 || !unicode.IsLetter(rs[k-2])
}

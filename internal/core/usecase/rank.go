package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/docdigest/docdigest/internal/core/domain"
	"github.com/docdigest/docdigest/internal/core/ports"
)

// RankUseCase scores keywords and phrases over the full document,
// independently of the summarization passes. It never mutates its
// input and has no external dependency that can transiently fail.
type RankUseCase struct {
	runtimes map[domain.Language]LanguageRuntime
	tokenRE  *regexp.Regexp
}

func NewRankUseCase(runtimes map[domain.Language]LanguageRuntime) *RankUseCase {
	return &RankUseCase{
		runtimes: runtimes,
		tokenRE:  regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
	}
}

type candidate struct {
	text  string
	kind  domain.TermKind
	score float64
	first int
	words int
}

func (uc *RankUseCase) Rank(ctx context.Context, req ports.RankRequest) ([]domain.Term, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rt, ok := uc.runtimes[req.Language]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidParameter, "rank terms",
			fmt.Errorf("unsupported language %q", req.Language))
	}
	if req.TopN < 1 || req.TopN > domain.MaxKeywords {
		return nil, domain.WrapError(domain.ErrInvalidParameter, "rank terms",
			fmt.Errorf("top n %d outside 1..%d", req.TopN, domain.MaxKeywords))
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidParameter, "rank terms",
			errors.New("empty text"))
	}

	blocked := blockset(rt.Policy.Stopwords, req.ExtraStopwords)

	var candidates []candidate
	switch {
	case req.Language == domain.LanguageChinese:
		candidates = uc.chineseCandidates(rt, req.Text, blocked)
	case req.Kind == domain.TermPhrase:
		candidates = uc.phraseCandidates(req.Text, blocked)
	default:
		candidates = uc.wordCandidates(req.Text, blocked)
	}

	ordered := orderCandidates(candidates)
	if req.Kind == domain.TermPhrase {
		ordered = dropRedundantPhrases(ordered)
	}
	if len(ordered) > req.TopN {
		ordered = ordered[:req.TopN]
	}

	terms := make([]domain.Term, len(ordered))
	for i, c := range ordered {
		terms[i] = domain.Term{Text: c.text, Kind: c.kind, Score: c.score}
	}
	return terms, nil
}

type tokenOcc struct {
	text  string
	start int
}

func (uc *RankUseCase) tokenize(text string) []tokenOcc {
	matches := uc.tokenRE.FindAllStringIndex(text, -1)
	out := make([]tokenOcc, 0, len(matches))
	for _, m := range matches {
		out = append(out, tokenOcc{
			text:  strings.ToLower(text[m[0]:m[1]]),
			start: m[0],
		})
	}
	return out
}

// wordCandidates scores distinct words by normalized term frequency.
// Over a single-document corpus TF-IDF degenerates to exactly this.
func (uc *RankUseCase) wordCandidates(text string, blocked map[string]struct{}) []candidate {
	counts := make(map[string]*candidate)
	for _, tok := range uc.tokenize(text) {
		if _, skip := blocked[tok.text]; skip {
			continue
		}
		if len([]rune(tok.text)) < 2 {
			continue
		}
		if c, ok := counts[tok.text]; ok {
			c.score++
			continue
		}
		counts[tok.text] = &candidate{text: tok.text, kind: domain.TermWord, score: 1, first: tok.start, words: 1}
	}

	maxFreq := 0.0
	for _, c := range counts {
		if c.score > maxFreq {
			maxFreq = c.score
		}
	}
	out := make([]candidate, 0, len(counts))
	for _, c := range counts {
		if maxFreq > 0 {
			c.score /= maxFreq
		}
		out = append(out, *c)
	}
	return out
}

// phraseCandidates extracts unigram through trigram windows that do
// not begin or end with a stopword and weights frequency by length so
// multi-word phrases surface above their parts.
func (uc *RankUseCase) phraseCandidates(text string, blocked map[string]struct{}) []candidate {
	tokens := uc.tokenize(text)
	counts := make(map[string]*candidate)

	record := func(words []tokenOcc) {
		first, last := words[0].text, words[len(words)-1].text
		if _, skip := blocked[first]; skip {
			return
		}
		if _, skip := blocked[last]; skip {
			return
		}
		parts := make([]string, len(words))
		for i, w := range words {
			parts[i] = w.text
		}
		key := strings.Join(parts, " ")
		// The blocklist holds whole forbidden terms too, not just words.
		if _, skip := blocked[key]; skip {
			return
		}
		if c, ok := counts[key]; ok {
			c.score += float64(len(words))
			return
		}
		kind := domain.TermWord
		if len(words) > 1 {
			kind = domain.TermPhrase
		}
		counts[key] = &candidate{
			text:  key,
			kind:  kind,
			score: float64(len(words)),
			first: words[0].start,
			words: len(words),
		}
	}

	for i := range tokens {
		for n := 1; n <= 3 && i+n <= len(tokens); n++ {
			record(tokens[i : i+n])
		}
	}

	out := make([]candidate, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	return out
}

// chineseCandidates scores unigrams and adjacent bigrams over the
// deterministic word segmentation, skipping stopwords, the caller
// blocklist and bare single characters.
func (uc *RankUseCase) chineseCandidates(rt LanguageRuntime, text string, blocked map[string]struct{}) []candidate {
	raw := rt.Words.Cut(text)
	kept := make([]tokenOcc, 0, len(raw))
	pos := 0
	for _, tok := range raw {
		start := pos
		pos += len(tok)
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, skip := blocked[tok]; skip {
			continue
		}
		if isBareSingleRune(tok) {
			continue
		}
		kept = append(kept, tokenOcc{text: tok, start: start})
	}

	counts := make(map[string]*candidate)
	add := func(key string, kind domain.TermKind, weight float64, first, words int) {
		if c, ok := counts[key]; ok {
			c.score += weight
			return
		}
		counts[key] = &candidate{text: key, kind: kind, score: weight, first: first, words: words}
	}
	for i, tok := range kept {
		add(tok.text, domain.TermWord, 1, tok.start, 1)
		if i+1 < len(kept) {
			add(tok.text+kept[i+1].text, domain.TermPhrase, 2, tok.start, 2)
		}
	}

	out := make([]candidate, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	return out
}

// isBareSingleRune reports whether tok is a lone character that is not
// an ASCII letter or digit; such tokens carry no keyword value.
func isBareSingleRune(tok string) bool {
	rs := []rune(tok)
	if len(rs) != 1 {
		return false
	}
	r := rs[0]
	return !(r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

// orderCandidates sorts by score descending; ties break by first
// occurrence, then lexicographically for full determinism.
func orderCandidates(candidates []candidate) []candidate {
	out := make([]candidate, len(candidates))
	copy(out, candidates)
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		if out[i].first != out[j].first {
			return out[i].first < out[j].first
		}
		return out[i].text < out[j].text
	})
	return out
}

// dropRedundantPhrases suppresses candidates that are word-boundary
// substrings of an already accepted higher-scoring phrase, so "company"
// does not trail right behind "the company results".
func dropRedundantPhrases(ordered []candidate) []candidate {
	accepted := make([]candidate, 0, len(ordered))
	for _, c := range ordered {
		redundant := false
		for _, a := range accepted {
			if a.words > c.words && containsWordSpan(a.text, c.text) {
				redundant = true
				break
			}
		}
		if !redundant {
			accepted = append(accepted, c)
		}
	}
	return accepted
}

func containsWordSpan(phrase, sub string) bool {
	if phrase == sub {
		return true
	}
	return strings.HasPrefix(phrase, sub+" ") ||
		strings.HasSuffix(phrase, " "+sub) ||
		strings.Contains(phrase, " "+sub+" ")
}

func blockset(base map[string]struct{}, extra []string) map[string]struct{} {
	out := make(map[string]struct{}, len(base)+len(extra))
	for w := range base {
		out[w] = struct{}{}
	}
	for _, w := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out[w] = struct{}{}
		}
	}
	return out
}

package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/docdigest/docdigest/internal/core/domain"
	"github.com/docdigest/docdigest/internal/core/ports"
)

type scriptedWords struct {
	tokens []string
}

func (s *scriptedWords) Cut(string) []string {
	return s.tokens
}

func rankRuntimes(words ports.WordSegmenter) map[domain.Language]LanguageRuntime {
	en := englishRuntime(1024)[domain.LanguageEnglish]
	zh := chineseRuntime(800)[domain.LanguageChinese]
	zh.Words = words
	return map[domain.Language]LanguageRuntime{
		domain.LanguageEnglish: en,
		domain.LanguageChinese: zh,
	}
}

func TestRankValidatesParameters(t *testing.T) {
	uc := NewRankUseCase(rankRuntimes(nil))

	cases := []ports.RankRequest{
		{Text: "some text", Language: domain.LanguageEnglish, TopN: 0},
		{Text: "some text", Language: domain.LanguageEnglish, TopN: domain.MaxKeywords + 1},
		{Text: "   ", Language: domain.LanguageEnglish, TopN: 5},
		{Text: "some text", Language: "german", TopN: 5},
	}
	for i, req := range cases {
		if _, err := uc.Rank(context.Background(), req); !domain.IsKind(err, domain.ErrInvalidParameter) {
			t.Fatalf("case %d: expected invalid parameter, got %v", i, err)
		}
	}
}

func TestWordRankingOrdersByFrequencyThenFirstOccurrence(t *testing.T) {
	text := "Solar panels convert sunlight. Solar output doubled as panels spread. Sunlight remains free. Solar wins."
	uc := NewRankUseCase(rankRuntimes(nil))

	terms, err := uc.Rank(context.Background(), ports.RankRequest{
		Text:     text,
		Language: domain.LanguageEnglish,
		Kind:     domain.TermWord,
		TopN:     4,
	})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(terms) != 4 {
		t.Fatalf("expected 4 terms, got %d", len(terms))
	}
	if terms[0].Text != "solar" || terms[0].Score != 1 {
		t.Fatalf("expected solar with normalized score 1 first, got %+v", terms[0])
	}
	// panels and sunlight both occur twice; panels appears first.
	if terms[1].Text != "panels" || terms[2].Text != "sunlight" {
		t.Fatalf("tie must break by first occurrence: %+v", terms[1:3])
	}
	for i := 1; i < len(terms); i++ {
		if terms[i].Score > terms[i-1].Score {
			t.Fatalf("scores are not descending: %+v", terms)
		}
	}
}

func TestWordRankingFiltersStopwordsAndExtras(t *testing.T) {
	text := "The committee and the board discussed the merger with the advisors."
	uc := NewRankUseCase(rankRuntimes(nil))

	terms, err := uc.Rank(context.Background(), ports.RankRequest{
		Text:           text,
		Language:       domain.LanguageEnglish,
		Kind:           domain.TermWord,
		TopN:           10,
		ExtraStopwords: []string{"merger"},
	})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for _, term := range terms {
		switch term.Text {
		case "the", "and", "with", "merger":
			t.Fatalf("blocked term %q leaked into results", term.Text)
		}
	}
}

func TestRankingIsDeterministic(t *testing.T) {
	text := strings.Repeat("Quantum computing hardware advances rapidly. Cryptography must adapt to quantum threats. ", 3)
	uc := NewRankUseCase(rankRuntimes(nil))
	req := ports.RankRequest{
		Text:     text,
		Language: domain.LanguageEnglish,
		Kind:     domain.TermWord,
		TopN:     8,
	}

	first, err := uc.Rank(context.Background(), req)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for run := 0; run < 5; run++ {
		again, err := uc.Rank(context.Background(), req)
		if err != nil {
			t.Fatalf("Rank() error = %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("length changed across runs: %d vs %d", len(again), len(first))
		}
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("run %d term %d differs: %+v vs %+v", run, i, again[i], first[i])
			}
		}
	}
}

func TestTopNIsPrefixOfLargerTopN(t *testing.T) {
	text := "Glaciers retreat yearly. Ocean levels rise. Coastal cities adapt slowly. Glaciers feed rivers. Rivers carry sediment. Ocean warming continues."
	uc := NewRankUseCase(rankRuntimes(nil))

	base := ports.RankRequest{Text: text, Language: domain.LanguageEnglish, Kind: domain.TermWord}
	small, err := uc.Rank(context.Background(), withTopN(base, 5))
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	large, err := uc.Rank(context.Background(), withTopN(base, 10))
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for i := range small {
		if small[i] != large[i] {
			t.Fatalf("top 5 is not a prefix of top 10 at %d: %+v vs %+v", i, small[i], large[i])
		}
	}
}

func withTopN(req ports.RankRequest, n int) ports.RankRequest {
	req.TopN = n
	return req
}

func TestPhraseRankingSuppressesRedundantSubphrases(t *testing.T) {
	text := "Machine learning drives automation. Machine learning reshapes industry. Machine learning needs data. Data powers machine learning."
	uc := NewRankUseCase(rankRuntimes(nil))

	terms, err := uc.Rank(context.Background(), ports.RankRequest{
		Text:     text,
		Language: domain.LanguageEnglish,
		Kind:     domain.TermPhrase,
		TopN:     6,
	})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if terms[0].Text != "machine learning" || terms[0].Kind != domain.TermPhrase {
		t.Fatalf("expected 'machine learning' on top, got %+v", terms[0])
	}
	for _, term := range terms[1:] {
		if term.Text == "machine" || term.Text == "learning" {
			t.Fatalf("substring of a higher-scoring phrase survived: %+v", term)
		}
	}
}

func TestPhraseRankingHonorsMultiWordForbiddenTerms(t *testing.T) {
	text := "Machine learning drives automation. Machine learning reshapes industry. Machine learning needs data. Data powers machine learning."
	uc := NewRankUseCase(rankRuntimes(nil))

	terms, err := uc.Rank(context.Background(), ports.RankRequest{
		Text:           text,
		Language:       domain.LanguageEnglish,
		Kind:           domain.TermPhrase,
		TopN:           10,
		ExtraStopwords: []string{"Machine Learning"},
	})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for _, term := range terms {
		if term.Text == "machine learning" {
			t.Fatalf("forbidden phrase survived: %+v", term)
		}
	}
}

func TestPhraseCandidatesNeverStartOrEndWithStopword(t *testing.T) {
	text := "The quarterly report exceeded the expectations of the analysts again and again."
	uc := NewRankUseCase(rankRuntimes(nil))

	terms, err := uc.Rank(context.Background(), ports.RankRequest{
		Text:     text,
		Language: domain.LanguageEnglish,
		Kind:     domain.TermPhrase,
		TopN:     10,
	})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for _, term := range terms {
		words := strings.Fields(term.Text)
		for _, edge := range []string{words[0], words[len(words)-1]} {
			switch edge {
			case "the", "of", "and", "again":
				t.Fatalf("phrase %q starts or ends with a stopword", term.Text)
			}
		}
	}
}

func TestChineseRankingFiltersStopwordsAndSingleChars(t *testing.T) {
	words := &scriptedWords{tokens: []string{
		"人工智能", "的", "发展", "推动", "了", "人工智能", "产业", "发展", "是", "大",
	}}
	uc := NewRankUseCase(rankRuntimes(words))

	terms, err := uc.Rank(context.Background(), ports.RankRequest{
		Text:     "人工智能的发展推动了人工智能产业发展",
		Language: domain.LanguageChinese,
		TopN:     5,
	})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(terms) == 0 {
		t.Fatalf("expected Chinese terms")
	}
	for _, term := range terms {
		switch term.Text {
		case "的", "了", "是", "大":
			t.Fatalf("stopword or bare single char %q leaked into results", term.Text)
		}
	}
	if terms[0].Text != "人工智能" && terms[0].Text != "发展" {
		t.Fatalf("expected a frequent unigram on top, got %+v", terms[0])
	}
	foundBigram := false
	for _, term := range terms {
		if term.Kind == domain.TermPhrase {
			foundBigram = true
		}
	}
	if !foundBigram {
		t.Fatalf("expected at least one bigram among top terms: %+v", terms)
	}
}

func TestChineseRankingHonorsBlocklist(t *testing.T) {
	words := &scriptedWords{tokens: []string{"公司", "业绩", "增长", "公司", "利润", "增长"}}
	uc := NewRankUseCase(rankRuntimes(words))

	terms, err := uc.Rank(context.Background(), ports.RankRequest{
		Text:           "公司业绩增长公司利润增长",
		Language:       domain.LanguageChinese,
		TopN:           10,
		ExtraStopwords: []string{"公司"},
	})
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for _, term := range terms {
		if strings.Contains(term.Text, "公司") {
			t.Fatalf("blocklisted term leaked: %+v", term)
		}
	}
}

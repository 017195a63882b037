package bootstrap

import (
	"fmt"

	"github.com/docdigest/docdigest/internal/config"
	"github.com/docdigest/docdigest/internal/core/domain"
	"github.com/docdigest/docdigest/internal/core/ports"
	"github.com/docdigest/docdigest/internal/core/usecase"
	"github.com/docdigest/docdigest/internal/infrastructure/chunking"
	"github.com/docdigest/docdigest/internal/infrastructure/llm/ollama"
	"github.com/docdigest/docdigest/internal/infrastructure/loader"
	"github.com/docdigest/docdigest/internal/infrastructure/resilience"
	"github.com/docdigest/docdigest/internal/infrastructure/segment"
	"github.com/docdigest/docdigest/internal/infrastructure/stopwords"
	"github.com/docdigest/docdigest/internal/infrastructure/tokenizer/zhseg"
)

type App struct {
	Config config.Config

	Summarizer ports.Summarizer
	Ranker     ports.KeywordRanker
	Loader     ports.DocumentLoader
}

func New(cfg config.Config) (*App, error) {
	words, err := zhseg.New()
	if err != nil {
		return nil, fmt.Errorf("load chinese dictionary: %w", err)
	}

	// The use case owns the per-chunk retry; the guard only tracks
	// model host health.
	guardCfg := resilience.DefaultConfig()
	guardCfg.Enabled = cfg.BreakerEnabled

	generator := ollama.New(cfg.OllamaURL, guardCfg, cfg.ModelRateLimitRPS, cfg.ModelRateLimitBurst)

	runtimes := map[domain.Language]usecase.LanguageRuntime{
		domain.LanguageEnglish: {
			Policy:    domain.EnglishPolicy(cfg.ModelEnglish, cfg.TokenBudgetEnglish, stopwords.English()),
			Segmenter: segment.NewLatin(),
		},
		domain.LanguageChinese: {
			Policy:    domain.ChinesePolicy(cfg.ModelChinese, cfg.TokenBudgetChinese, stopwords.Chinese()),
			Segmenter: segment.NewHan(),
			Words:     words,
		},
	}

	return &App{
		Config:     cfg,
		Summarizer: usecase.NewSummarizeUseCase(runtimes, chunking.New(), generator),
		Ranker:     usecase.NewRankUseCase(runtimes),
		Loader:     loader.New(cfg.MaxUploadMB, cfg.MinTextChars),
	}, nil
}

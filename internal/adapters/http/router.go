package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docdigest/docdigest/internal/config"
	"github.com/docdigest/docdigest/internal/core/domain"
	"github.com/docdigest/docdigest/internal/core/ports"
	"github.com/docdigest/docdigest/internal/observability/metrics"
)

const serviceName = "docdigest-api"

type Router struct {
	summarizer ports.Summarizer
	ranker     ports.KeywordRanker
	loader     ports.DocumentLoader
	metrics    *metrics.ServerMetrics
	cfg        config.Config
}

func NewRouter(
	summarizer ports.Summarizer,
	ranker ports.KeywordRanker,
	loader ports.DocumentLoader,
	m *metrics.ServerMetrics,
	cfg config.Config,
) *Router {
	return &Router{
		summarizer: summarizer,
		ranker:     ranker,
		loader:     loader,
		metrics:    m,
		cfg:        cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	backpressureWait := time.Duration(rt.cfg.BackpressureWaitMS) * time.Millisecond

	api := http.NewServeMux()
	api.Handle("/v1/summaries",
		backpressureMiddleware(http.HandlerFunc(rt.createSummary), 1, backpressureWait))
	api.HandleFunc("/v1/keywords", rt.rankKeywords)

	root := http.NewServeMux()
	root.HandleFunc("/healthz", rt.healthz)
	root.Handle("/metrics", rt.metrics.Handler())
	root.Handle("/", rateLimitMiddleware(api, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst))

	return requestIDMiddleware(accessLogMiddleware(rt.metrics.Middleware(serviceName, root)))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type summaryResponse struct {
	Summary      string  `json:"summary"`
	Language     string  `json:"language"`
	Mode         string  `json:"mode"`
	ChunkCount   int     `json:"chunk_count"`
	Passes       int     `json:"passes"`
	FailedChunks int     `json:"failed_chunks"`
	Retries      int     `json:"retries"`
	ElapsedMS    float64 `json:"elapsed_ms"`
}

func (rt *Router) createSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var (
		text         string
		rawLanguage  string
		rawMode      string
		maxSentences int
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
			return
		}
		defer file.Close()

		text, err = rt.loader.Load(r.Context(), fileHeader.Filename, file)
		if err != nil {
			writeError(w, err)
			return
		}
		rawLanguage = r.FormValue("language")
		rawMode = r.FormValue("mode")
		if raw := r.FormValue("max_sentences"); raw != "" {
			maxSentences, err = strconv.Atoi(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "max_sentences must be an integer"})
				return
			}
		}
	} else {
		var req struct {
			Text         string `json:"text"`
			Language     string `json:"language"`
			Mode         string `json:"mode"`
			MaxSentences int    `json:"max_sentences"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		text = req.Text
		rawLanguage = req.Language
		rawMode = req.Mode
		maxSentences = req.MaxSentences
	}

	language, err := parseLanguage(rawLanguage)
	if err != nil {
		writeError(w, err)
		return
	}
	mode, err := parseMode(rawMode)
	if err != nil {
		writeError(w, err)
		return
	}
	if maxSentences == 0 {
		maxSentences = rt.cfg.DefaultMaxSentences
	}

	start := time.Now()
	summary, err := rt.summarizer.Summarize(r.Context(), ports.SummarizeRequest{
		Text:         text,
		Language:     language,
		Mode:         mode,
		MaxSentences: maxSentences,
	})
	if err != nil {
		rt.metrics.RecordSummarization(serviceName, string(language), string(mode), "failed",
			0, 0, 0, 0, time.Since(start))
		writeError(w, err)
		return
	}
	rt.metrics.RecordSummarization(serviceName, string(language), string(mode), "ok",
		summary.ChunkCount, summary.Passes, summary.Retries, summary.FailedChunks, summary.Elapsed)

	writeJSON(w, http.StatusOK, summaryResponse{
		Summary:      summary.Text,
		Language:     string(summary.Language),
		Mode:         string(summary.Mode),
		ChunkCount:   summary.ChunkCount,
		Passes:       summary.Passes,
		FailedChunks: summary.FailedChunks,
		Retries:      summary.Retries,
		ElapsedMS:    float64(summary.Elapsed.Microseconds()) / 1000.0,
	})
}

func (rt *Router) rankKeywords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Text           string   `json:"text"`
		Language       string   `json:"language"`
		Kind           string   `json:"kind"`
		TopN           int      `json:"top_n"`
		ExtraStopwords []string `json:"extra_stopwords"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	language, err := parseLanguage(req.Language)
	if err != nil {
		writeError(w, err)
		return
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		writeError(w, err)
		return
	}
	topN := req.TopN
	if topN == 0 {
		topN = rt.cfg.DefaultKeywords
	}

	terms, err := rt.ranker.Rank(r.Context(), ports.RankRequest{
		Text:           req.Text,
		Language:       language,
		Kind:           kind,
		TopN:           topN,
		ExtraStopwords: req.ExtraStopwords,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordKeywordRequest(serviceName, string(language), string(kind))

	writeJSON(w, http.StatusOK, map[string]any{"terms": terms})
}

func parseLanguage(raw string) (domain.Language, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "english", "en":
		return domain.LanguageEnglish, nil
	case "chinese", "zh":
		return domain.LanguageChinese, nil
	default:
		return "", domain.WrapError(domain.ErrInvalidParameter, "parse language",
			errors.New("language must be 'english' or 'chinese'"))
	}
}

func parseMode(raw string) (domain.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "fast":
		return domain.ModeFast, nil
	case "enhanced":
		return domain.ModeEnhanced, nil
	default:
		return "", domain.WrapError(domain.ErrInvalidParameter, "parse mode",
			errors.New("mode must be 'fast' or 'enhanced'"))
	}
}

func parseKind(raw string) (domain.TermKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "word", "words":
		return domain.TermWord, nil
	case "phrase", "phrases":
		return domain.TermPhrase, nil
	default:
		return "", domain.WrapError(domain.ErrInvalidParameter, "parse kind",
			errors.New("kind must be 'word' or 'phrase'"))
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

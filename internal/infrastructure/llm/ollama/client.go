package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/docdigest/docdigest/internal/core/domain"
	"github.com/docdigest/docdigest/internal/infrastructure/resilience"
)

// Client talks to an Ollama server. The model checkpoint is chosen per
// call because English and Chinese runs use different checkpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	guard      *resilience.ModelGuard
	limiter    *rate.Limiter
}

// New builds a client. The guard watches model host health across all
// invocations; the limiter caps calls per second because the model is
// a shared expensive resource.
func New(baseURL string, guardCfg resilience.Config, rps float64, burst int) *Client {
	if rps <= 0 {
		rps = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		guard:      resilience.NewModelGuard(guardCfg, classifyOllamaError),
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Generate runs one summarization invocation over text. Transient
// transport failures surface with the domain.ErrModel kind so the
// orchestrator can apply its chunk-level retry policy.
func (c *Client) Generate(ctx context.Context, model, text string, constraints domain.GenerationConstraints) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	reqBody := map[string]any{
		"model":  model,
		"prompt": buildSummaryPrompt(text, constraints),
		"stream": false,
		"options": map[string]any{
			"temperature": constraints.Temperature,
			"top_p":       effectiveTopP(constraints),
			"num_predict": constraints.MaxOutputTokens,
		},
	}

	var response struct {
		Response string `json:"response"`
	}
	err := c.guard.Do(ctx, "generate", func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/generate", reqBody, &response, "generate")
	})
	if err != nil {
		return "", wrapModelError("generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}

// effectiveTopP keeps greedy decoding intact when sampling is off.
func effectiveTopP(c domain.GenerationConstraints) float64 {
	if c.TopP <= 0 || c.TopP > 1 {
		return 1
	}
	return c.TopP
}

package ollama

import (
	"fmt"
	"strings"

	"github.com/docdigest/docdigest/internal/core/domain"
)

// buildSummaryPrompt turns the opaque generation constraints into an
// instruction. Output length is capped by num_predict; the sentence
// budget and minimum length have no request option, so they ride in
// the prompt.
func buildSummaryPrompt(text string, c domain.GenerationConstraints) string {
	var b strings.Builder
	b.WriteString("Summarize the following text in the same language as the text.\n")
	if c.NumSentences > 0 {
		fmt.Fprintf(&b, "Use at most %d sentences.\n", c.NumSentences)
	}
	if c.MinOutputTokens > 0 {
		fmt.Fprintf(&b, "Write at least %d words.\n", c.MinOutputTokens)
	}
	b.WriteString("Return only the summary, no preamble.\n\nText:\n")
	b.WriteString(text)
	return b.String()
}

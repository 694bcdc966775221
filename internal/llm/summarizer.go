package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/fieldmark/relabel/internal/model"
)

// Provider generates natural-language text for a run summary.
type Provider interface {
	Name() string
	Summarize(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Summarizer produces an optional plain-language blurb about a correction
// run. It is off by default and never affects correction results or exit
// status; a failed summary is a warning, nothing more.
type Summarizer struct {
	provider Provider
	cfg      model.LLMConfig
}

// NewSummarizer creates a summarizer from the LLM configuration. An empty
// provider name disables summarization.
func NewSummarizer(cfg model.LLMConfig) (*Summarizer, error) {
	if cfg.Provider == "" {
		return &Summarizer{cfg: cfg}, nil
	}
	if cfg.Provider != "openai" {
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}

	provider, err := NewOpenAIProvider(cfg)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, cfg: cfg}, nil
}

// IsEnabled reports whether a provider is configured.
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// GenerateSummary asks the provider for a short narrative over the
// aggregate counts. Only counts go into the prompt: document contents
// never leave the machine.
func (s *Summarizer) GenerateSummary(ctx context.Context, summary *model.RunSummary) (string, error) {
	if !s.IsEnabled() {
		return "", fmt.Errorf("summarizer is disabled")
	}

	maxTokens := s.cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 500
	}

	return s.provider.Summarize(ctx, BuildPrompt(summary), maxTokens)
}

// BuildPrompt constructs the summarization prompt from aggregate counts.
func BuildPrompt(summary *model.RunSummary) string {
	var b strings.Builder

	b.WriteString("You are summarizing a batch run of a label-correction tool. ")
	b.WriteString("The tool rewrites extracted measurement values to match a curated ground-truth table.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("1. Describe only the counts below; do not speculate about causes.\n")
	b.WriteString("2. Call out anything unusual: high unmatched-group counts, many skipped documents.\n")
	b.WriteString("3. Keep it under four sentences.\n\n")

	fmt.Fprintf(&b, "Run counts:\n")
	fmt.Fprintf(&b, "- Documents processed: %d\n", summary.Documents)
	fmt.Fprintf(&b, "- Corrected: %d\n", summary.Corrected)
	fmt.Fprintf(&b, "- Skipped (malformed): %d\n", summary.SkippedMalformed)
	fmt.Fprintf(&b, "- Failed validation: %d\n", summary.FailedValidation)
	fmt.Fprintf(&b, "- Matched groups: %d\n", summary.MatchedGroups)
	fmt.Fprintf(&b, "- Unmatched groups: %d\n", summary.UnmatchedGroups)
	fmt.Fprintf(&b, "- Corrected fields: %d\n", summary.CorrectedFields)

	return b.String()
}

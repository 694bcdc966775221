package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/fieldmark/relabel/internal/model"
)

func TestNewSummarizer_DisabledByDefault(t *testing.T) {
	s, err := NewSummarizer(model.LLMConfig{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.IsEnabled() {
		t.Error("expected summarizer to be disabled without a provider")
	}
	if _, err := s.GenerateSummary(context.Background(), &model.RunSummary{}); err == nil {
		t.Error("expected an error from a disabled summarizer")
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	if _, err := NewSummarizer(model.LLMConfig{Provider: "oracle"}); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}

func TestNewSummarizer_OpenAIRequiresKey(t *testing.T) {
	if _, err := NewSummarizer(model.LLMConfig{Provider: "openai"}); err == nil {
		t.Error("expected an error when the API key is missing")
	}
}

func TestBuildPrompt_ContainsCountsOnly(t *testing.T) {
	summary := &model.RunSummary{
		Documents:        12,
		Corrected:        9,
		SkippedMalformed: 2,
		FailedValidation: 1,
		MatchedGroups:    40,
		UnmatchedGroups:  6,
		CorrectedFields:  73,
	}

	prompt := BuildPrompt(summary)

	for _, want := range []string{
		"Documents processed: 12",
		"Corrected: 9",
		"Skipped (malformed): 2",
		"Failed validation: 1",
		"Matched groups: 40",
		"Unmatched groups: 6",
		"Corrected fields: 73",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

type fakeProvider struct {
	prompt string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Summarize(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.prompt = prompt
	return "summary text", nil
}

func TestGenerateSummary_UsesProvider(t *testing.T) {
	fake := &fakeProvider{}
	s := &Summarizer{provider: fake, cfg: model.LLMConfig{MaxTokens: 100}}

	out, err := s.GenerateSummary(context.Background(), &model.RunSummary{Documents: 3})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "summary text" {
		t.Errorf("unexpected summary: %q", out)
	}
	if !strings.Contains(fake.prompt, "Documents processed: 3") {
		t.Errorf("provider did not receive the built prompt:\n%s", fake.prompt)
	}
}

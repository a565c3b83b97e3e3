package steps

import (
	"context"
	"strings"
	"time"

	"github.com/graduation-masterpiece/demo-repository/internal/modules/cards/prompts"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/openai"
)

type SummarizeDeps struct {
	Log       *logger.Logger
	LLM       openai.Client
	MaxTokens int
	Timeout   time.Duration
}

type Summary struct {
	Raw       string
	Sentences []string
}

type Summarizer struct {
	deps SummarizeDeps
}

func NewSummarizer(deps SummarizeDeps) *Summarizer {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.MaxTokens <= 0 {
		deps.MaxTokens = 600
	}
	if deps.Timeout <= 0 {
		deps.Timeout = 60 * time.Second
	}
	deps.Log = deps.Log.With("step", "summarize")
	return &Summarizer{deps: deps}
}

// Summarize asks the model for a teaser of the book and splits it into
// sentences. There is no retry here.
func (s *Summarizer) Summarize(ctx context.Context, title, description string) (Summary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Summary{}, apierr.Validation("title is required", map[string]string{"title": "is required"})
	}
	p, err := prompts.Build(prompts.PromptCardSummary, prompts.Input{
		Title:       title,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		return Summary{}, apierr.Internal("build summary prompt", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()
	start := time.Now()
	raw, err := s.deps.LLM.Complete(callCtx, openai.CompletionRequest{
		System:    p.System,
		User:      p.User,
		MaxTokens: s.deps.MaxTokens,
	})
	if err != nil {
		if apierr.IsTimeout(err) {
			return Summary{}, apierr.Upstream("summarization timed out", err)
		}
		return Summary{}, apierr.Upstream("summarization failed", err)
	}

	sentences, err := SplitSentences(raw)
	if err != nil {
		return Summary{}, err
	}
	s.deps.Log.Debug("summary generated",
		"prompt_version", p.Version,
		"sentences", len(sentences),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Summary{Raw: strings.TrimSpace(raw), Sentences: sentences}, nil
}

package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Ensure Gemini implements SummarizationBackend
var _ driven.SummarizationBackend = (*Gemini)(nil)

// Gemini implements SummarizationBackend with the Google generative AI API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a new Gemini backend.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", domain.ErrInvalidInput)
	}
	if model == "" {
		model = domain.DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, unavailable(domain.AIProviderGemini, err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Summarize asks the model for a bounded summary.
func (g *Gemini) Summarize(ctx context.Context, text string, targetLen, minLen int) (string, error) {
	return g.generate(ctx, summaryPrompt(text, targetLen, minLen), maxTokens(targetLen))
}

// GenerateText completes a free-form prompt.
func (g *Gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, prompt, 0)
}

func (g *Gemini) generate(ctx context.Context, prompt string, limit int) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if limit > 0 {
		model.SetMaxOutputTokens(int32(limit))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", unavailable(domain.AIProviderGemini, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", emptyOutput(domain.AIProviderGemini)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return nonEmpty(domain.AIProviderGemini, b.String())
}

// Model returns the model name.
func (g *Gemini) Model() string {
	return g.model
}

// Ping fetches model metadata.
func (g *Gemini) Ping(ctx context.Context) error {
	if _, err := g.client.GenerativeModel(g.model).Info(ctx); err != nil {
		return unavailable(domain.AIProviderGemini, err)
	}
	return nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

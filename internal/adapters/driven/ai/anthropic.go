package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Ensure Anthropic implements SummarizationBackend
var _ driven.SummarizationBackend = (*Anthropic)(nil)

// Anthropic implements SummarizationBackend with the Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates a new Anthropic backend. baseURL is optional.
func NewAnthropic(apiKey, model, baseURL string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: anthropic api key is required", domain.ErrInvalidInput)
	}
	if model == "" {
		model = domain.DefaultAnthropicModel
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL), option.WithMaxRetries(0))
	}

	return &Anthropic{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// Summarize asks the model for a bounded summary.
func (a *Anthropic) Summarize(ctx context.Context, text string, targetLen, minLen int) (string, error) {
	return a.complete(ctx, summaryPrompt(text, targetLen, minLen), maxTokens(targetLen))
}

// GenerateText completes a free-form prompt.
func (a *Anthropic) GenerateText(ctx context.Context, prompt string) (string, error) {
	return a.complete(ctx, prompt, 1024)
}

func (a *Anthropic) complete(ctx context.Context, prompt string, limit int) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(limit),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", unavailable(domain.AIProviderAnthropic, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return nonEmpty(domain.AIProviderAnthropic, b.String())
}

// Model returns the model name.
func (a *Anthropic) Model() string {
	return a.model
}

// Ping sends a one token request.
func (a *Anthropic) Ping(ctx context.Context) error {
	_, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return unavailable(domain.AIProviderAnthropic, err)
	}
	return nil
}

// Close is a no-op.
func (a *Anthropic) Close() error {
	return nil
}

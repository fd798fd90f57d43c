package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Ensure OpenAI implements SummarizationBackend
var _ driven.SummarizationBackend = (*OpenAI)(nil)

// OpenAI implements SummarizationBackend with the chat completions API.
// BaseURL makes it usable against any OpenAI compatible server.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a new OpenAI backend.
func NewOpenAI(apiKey, model, baseURL string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai api key is required", domain.ErrInvalidInput)
	}
	if model == "" {
		model = domain.DefaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Summarize asks the chat model for a bounded summary.
func (o *OpenAI) Summarize(ctx context.Context, text string, targetLen, minLen int) (string, error) {
	return o.complete(ctx, summaryPrompt(text, targetLen, minLen), maxTokens(targetLen))
}

// GenerateText completes a free-form prompt.
func (o *OpenAI) GenerateText(ctx context.Context, prompt string) (string, error) {
	return o.complete(ctx, prompt, 0)
}

func (o *OpenAI) complete(ctx context.Context, prompt string, limit int) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
		MaxTokens:   limit,
		Temperature: 0.3,
	})
	if err != nil {
		return "", unavailable(domain.AIProviderOpenAI, err)
	}
	if len(resp.Choices) == 0 {
		return "", emptyOutput(domain.AIProviderOpenAI)
	}
	return nonEmpty(domain.AIProviderOpenAI, resp.Choices[0].Message.Content)
}

// Model returns the model name.
func (o *OpenAI) Model() string {
	return o.model
}

// Ping lists models to verify credentials and reachability.
func (o *OpenAI) Ping(ctx context.Context) error {
	if _, err := o.client.ListModels(ctx); err != nil {
		return unavailable(domain.AIProviderOpenAI, err)
	}
	return nil
}

// Close is a no-op.
func (o *OpenAI) Close() error {
	return nil
}

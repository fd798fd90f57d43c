package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// DefaultOllamaHost is the local Ollama server.
const DefaultOllamaHost = "http://localhost:11434"

// Ensure Ollama implements SummarizationBackend
var _ driven.SummarizationBackend = (*Ollama)(nil)

// Ollama implements SummarizationBackend against a self-hosted Ollama server.
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama creates a new Ollama backend.
func NewOllama(host, model string) (*Ollama, error) {
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		model = domain.DefaultOllamaModel
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ollama host %q: %v", domain.ErrInvalidInput, host, err)
	}

	return &Ollama{
		client: api.NewClient(u, &http.Client{Timeout: 120 * time.Second}),
		model:  model,
	}, nil
}

// Summarize asks the model for a bounded summary.
func (o *Ollama) Summarize(ctx context.Context, text string, targetLen, minLen int) (string, error) {
	return o.generate(ctx, summaryPrompt(text, targetLen, minLen), maxTokens(targetLen))
}

// GenerateText completes a free-form prompt.
func (o *Ollama) GenerateText(ctx context.Context, prompt string) (string, error) {
	return o.generate(ctx, prompt, 0)
}

func (o *Ollama) generate(ctx context.Context, prompt string, limit int) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
	}
	if limit > 0 {
		req.Options = map[string]any{"num_predict": limit}
	}

	var b strings.Builder
	err := o.client.Generate(ctx, req, func(gr api.GenerateResponse) error {
		b.WriteString(gr.Response)
		return nil
	})
	if err != nil {
		return "", unavailable(domain.AIProviderOllama, err)
	}
	return nonEmpty(domain.AIProviderOllama, b.String())
}

// Model returns the model name.
func (o *Ollama) Model() string {
	return o.model
}

// Ping checks that the server is up.
func (o *Ollama) Ping(ctx context.Context) error {
	if err := o.client.Heartbeat(ctx); err != nil {
		return unavailable(domain.AIProviderOllama, err)
	}
	return nil
}

// Close is a no-op.
func (o *Ollama) Close() error {
	return nil
}

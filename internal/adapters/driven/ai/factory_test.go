package ai

import (
	"errors"
	"testing"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func TestFactory_Create(t *testing.T) {
	factory := NewFactory(FactoryConfig{})

	tests := []struct {
		name      string
		settings  *domain.BackendSettings
		wantModel string
	}{
		{
			name:      "huggingface",
			settings:  &domain.BackendSettings{Provider: domain.AIProviderHuggingFace, APIKey: "hf"},
			wantModel: domain.DefaultHuggingFaceSummaryModel,
		},
		{
			name:      "huggingface custom summary model",
			settings:  &domain.BackendSettings{Provider: domain.AIProviderHuggingFace, APIKey: "hf", SummaryModel: "sshleifer/distilbart-cnn-12-6"},
			wantModel: "sshleifer/distilbart-cnn-12-6",
		},
		{
			name:      "openai",
			settings:  &domain.BackendSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk-test"},
			wantModel: domain.DefaultOpenAIModel,
		},
		{
			name:      "anthropic",
			settings:  &domain.BackendSettings{Provider: domain.AIProviderAnthropic, APIKey: "sk-ant", Model: "claude-3-5-sonnet-latest"},
			wantModel: "claude-3-5-sonnet-latest",
		},
		{
			name:      "ollama without key",
			settings:  &domain.BackendSettings{Provider: domain.AIProviderOllama},
			wantModel: domain.DefaultOllamaModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := factory.Create(tt.settings)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if backend.Model() != tt.wantModel {
				t.Errorf("expected model %s, got %s", tt.wantModel, backend.Model())
			}
			if err := backend.Close(); err != nil {
				t.Errorf("unexpected close error: %v", err)
			}
		})
	}
}

func TestFactory_CreateErrors(t *testing.T) {
	factory := NewFactory(FactoryConfig{})

	tests := []struct {
		name     string
		settings *domain.BackendSettings
		wantErr  error
	}{
		{"nil settings", nil, domain.ErrInvalidInput},
		{"unknown provider", &domain.BackendSettings{Provider: "cohere", APIKey: "k"}, domain.ErrInvalidProvider},
		{"missing key", &domain.BackendSettings{Provider: domain.AIProviderOpenAI}, domain.ErrInvalidInput},
		{"missing gemini key", &domain.BackendSettings{Provider: domain.AIProviderGemini}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.Create(tt.settings)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSummaryPrompt(t *testing.T) {
	got := summaryPrompt("Body text.", 800, 200)
	want := "Summarize the following text in 200 to 800 words. Reply with the summary only.\n\nBody text."
	if got != want {
		t.Errorf("unexpected prompt %q", got)
	}
	if maxTokens(0) != 1024 || maxTokens(100) != 264 {
		t.Errorf("unexpected max tokens %d %d", maxTokens(0), maxTokens(100))
	}
}

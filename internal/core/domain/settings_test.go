package domain

import (
	"errors"
	"testing"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		valid    bool
	}{
		{AIProviderHuggingFace, true},
		{AIProviderOpenAI, true},
		{AIProviderAnthropic, true},
		{AIProviderOllama, true},
		{AIProviderGemini, true},
		{"cohere", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			if tt.provider.IsValid() != tt.valid {
				t.Errorf("expected %v, got %v", tt.valid, tt.provider.IsValid())
			}
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	if AIProviderOllama.RequiresAPIKey() {
		t.Error("ollama is self-hosted")
	}
	if !AIProviderHuggingFace.RequiresAPIKey() {
		t.Error("huggingface requires a key")
	}
}

func TestBackendSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings BackendSettings
		wantErr  error
	}{
		{"valid huggingface", BackendSettings{Provider: AIProviderHuggingFace, APIKey: "hf_x"}, nil},
		{"ollama without key", BackendSettings{Provider: AIProviderOllama}, nil},
		{"openai without key", BackendSettings{Provider: AIProviderOpenAI}, ErrInvalidInput},
		{"unknown provider", BackendSettings{Provider: "cohere", APIKey: "k"}, ErrInvalidProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if !tt.settings.IsConfigured() {
					t.Error("expected configured")
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBackendSettings_EffectiveModel(t *testing.T) {
	s := BackendSettings{Provider: AIProviderHuggingFace}
	if s.EffectiveModel() != DefaultHuggingFaceTextModel {
		t.Errorf("expected default model, got %s", s.EffectiveModel())
	}
	s.Model = "custom"
	if s.EffectiveModel() != "custom" {
		t.Errorf("expected custom, got %s", s.EffectiveModel())
	}
}

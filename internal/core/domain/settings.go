package domain

import "fmt"

// AIProvider identifies the summarization backend provider
type AIProvider string

const (
	AIProviderHuggingFace AIProvider = "huggingface"
	AIProviderOpenAI      AIProvider = "openai"
	AIProviderAnthropic   AIProvider = "anthropic"
	AIProviderOllama      AIProvider = "ollama"
	AIProviderGemini      AIProvider = "gemini"
)

// Default models per provider
const (
	DefaultHuggingFaceSummaryModel = "facebook/bart-large-cnn"
	DefaultHuggingFaceTextModel    = "mistralai/Mistral-7B-Instruct-v0.2"
	DefaultOpenAIModel             = "gpt-4o-mini"
	DefaultAnthropicModel          = "claude-3-5-haiku-latest"
	DefaultOllamaModel             = "llama3.2"
	DefaultGeminiModel             = "gemini-1.5-flash"
)

// RequiresAPIKey returns true if this provider requires an API key
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOllama:
		return false // self-hosted
	default:
		return true
	}
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHuggingFace, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama, AIProviderGemini:
		return true
	default:
		return false
	}
}

// DefaultModel returns the text model used when none is configured
func (p AIProvider) DefaultModel() string {
	switch p {
	case AIProviderHuggingFace:
		return DefaultHuggingFaceTextModel
	case AIProviderOpenAI:
		return DefaultOpenAIModel
	case AIProviderAnthropic:
		return DefaultAnthropicModel
	case AIProviderOllama:
		return DefaultOllamaModel
	case AIProviderGemini:
		return DefaultGeminiModel
	}
	return ""
}

// BackendSettings configures the summarization backend
type BackendSettings struct {
	Provider     AIProvider `json:"provider"`
	Model        string     `json:"model,omitempty"`
	SummaryModel string     `json:"summary_model,omitempty"` // HuggingFace summarization model
	APIKey       string     `json:"-"`                       // Never serialize to JSON
	BaseURL      string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if the backend settings are usable
func (s *BackendSettings) IsConfigured() bool {
	if s.Provider == "" {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// Validate checks the provider and key requirements
func (s *BackendSettings) Validate() error {
	if !s.Provider.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, s.Provider)
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return fmt.Errorf("%w: %s requires an api key", ErrInvalidInput, s.Provider)
	}
	return nil
}

// EffectiveModel returns the configured model or the provider default
func (s *BackendSettings) EffectiveModel() string {
	if s.Model != "" {
		return s.Model
	}
	return s.Provider.DefaultModel()
}

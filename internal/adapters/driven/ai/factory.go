package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Ensure Factory implements BackendFactory
var _ driven.BackendFactory = (*Factory)(nil)

// FactoryConfig holds configuration shared by every backend the factory builds.
type FactoryConfig struct {
	// Inference and Summarization override the HuggingFace transports
	Inference     driven.Doer
	Summarization driven.Doer

	Logger *slog.Logger
}

// Factory creates summarization backends based on configuration
type Factory struct {
	inference     driven.Doer
	summarization driven.Doer
	logger        *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(cfg FactoryConfig) *Factory {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		inference:     cfg.Inference,
		summarization: cfg.Summarization,
		logger:        logger,
	}
}

// Create builds a backend from settings
func (f *Factory) Create(settings *domain.BackendSettings) (driven.SummarizationBackend, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: backend settings are required", domain.ErrInvalidInput)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	switch settings.Provider {
	case domain.AIProviderHuggingFace:
		return NewHuggingFace(HuggingFaceConfig{
			APIKey:        settings.APIKey,
			BaseURL:       settings.BaseURL,
			TextModel:     settings.Model,
			SummaryModel:  settings.SummaryModel,
			Inference:     f.inference,
			Summarization: f.summarization,
			Logger:        f.logger,
		})
	case domain.AIProviderOpenAI:
		return NewOpenAI(settings.APIKey, settings.EffectiveModel(), settings.BaseURL)
	case domain.AIProviderAnthropic:
		return NewAnthropic(settings.APIKey, settings.EffectiveModel(), settings.BaseURL)
	case domain.AIProviderOllama:
		return NewOllama(settings.BaseURL, settings.EffectiveModel())
	case domain.AIProviderGemini:
		return NewGemini(context.Background(), settings.APIKey, settings.EffectiveModel())
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}

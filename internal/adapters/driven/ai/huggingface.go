package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/lectern/internal/adapters/driven/transport"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// DefaultHuggingFaceBaseURL is the hosted inference API.
const DefaultHuggingFaceBaseURL = "https://api-inference.huggingface.co"

const (
	inferenceTimeout     = 60 * time.Second
	summarizationTimeout = 90 * time.Second

	// minSummaryWords rejects degenerate BART outputs
	minSummaryWords = 10
)

// Ensure HuggingFace implements SummarizationBackend
var _ driven.SummarizationBackend = (*HuggingFace)(nil)

// HuggingFaceConfig holds configuration for the HuggingFace backend.
type HuggingFaceConfig struct {
	APIKey       string
	BaseURL      string
	TextModel    string
	SummaryModel string

	// Inference and Summarization carry the retry policy for each call kind.
	// nil builds a transport client with the matching policy.
	Inference     driven.Doer
	Summarization driven.Doer

	Logger *slog.Logger
}

// HuggingFace calls the hosted inference API over raw HTTP: a BART model
// for summarization and an instruction model for free text.
type HuggingFace struct {
	apiKey        string
	baseURL       string
	textModel     string
	summaryModel  string
	inference     driven.Doer
	summarization driven.Doer
	logger        *slog.Logger
}

// NewHuggingFace creates a new HuggingFace backend.
func NewHuggingFace(cfg HuggingFaceConfig) (*HuggingFace, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: huggingface api key is required", domain.ErrInvalidInput)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultHuggingFaceBaseURL
	}
	textModel := cfg.TextModel
	if textModel == "" {
		textModel = domain.DefaultHuggingFaceTextModel
	}
	summaryModel := cfg.SummaryModel
	if summaryModel == "" {
		summaryModel = domain.DefaultHuggingFaceSummaryModel
	}

	inference := cfg.Inference
	if inference == nil {
		inference = transport.NewClient(transport.Config{
			Policy:  huggingFacePolicy(transport.InferencePolicy),
			Timeout: inferenceTimeout,
			Logger:  logger,
		})
	}
	summarization := cfg.Summarization
	if summarization == nil {
		summarization = transport.NewClient(transport.Config{
			Policy:  huggingFacePolicy(transport.SummarizationPolicy),
			Timeout: summarizationTimeout,
			Logger:  logger,
		})
	}

	return &HuggingFace{
		apiKey:        cfg.APIKey,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		textModel:     textModel,
		summaryModel:  summaryModel,
		inference:     inference,
		summarization: summarization,
		logger:        logger,
	}, nil
}

// huggingFacePolicy retries everything except auth failures, including
// 404 which the API returns while a model is still loading.
func huggingFacePolicy(base transport.RetryPolicy) transport.RetryPolicy {
	base.Retryable = func(status int, err error) bool {
		if err != nil {
			return transport.DefaultRetryable(status, err)
		}
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return false
		}
		return status == http.StatusNotFound || status == http.StatusTooManyRequests || status >= 500
	}
	return base
}

type generationParams struct {
	MaxNewTokens      int     `json:"max_new_tokens"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p,omitempty"`
	DoSample          bool    `json:"do_sample"`
	RepetitionPenalty float64 `json:"repetition_penalty,omitempty"`
	LengthPenalty     float64 `json:"length_penalty,omitempty"`
}

var (
	primaryGeneration = generationParams{
		MaxNewTokens:      1000,
		Temperature:       0.3,
		TopP:              0.9,
		DoSample:          true,
		RepetitionPenalty: 1.2,
		LengthPenalty:     1.0,
	}
	fallbackGeneration = generationParams{
		MaxNewTokens: 500,
		Temperature:  0.1,
		DoSample:     false,
	}
)

type summarizationParams struct {
	MaxLength         int     `json:"max_length"`
	MinLength         int     `json:"min_length"`
	DoSample          bool    `json:"do_sample"`
	NumBeams          int     `json:"num_beams"`
	EarlyStopping     bool    `json:"early_stopping"`
	NoRepeatNgramSize int     `json:"no_repeat_ngram_size"`
	LengthPenalty     float64 `json:"length_penalty"`
}

type inferenceRequest struct {
	Inputs     string `json:"inputs"`
	Parameters any    `json:"parameters,omitempty"`
}

type generationResult struct {
	GeneratedText string `json:"generated_text"`
}

type summarizationResult struct {
	SummaryText string `json:"summary_text"`
}

// Summarize runs the BART summarization model.
func (h *HuggingFace) Summarize(ctx context.Context, text string, targetLen, minLen int) (string, error) {
	params := summarizationParams{
		MaxLength:         targetLen,
		MinLength:         minLen,
		DoSample:          false,
		NumBeams:          4,
		EarlyStopping:     true,
		NoRepeatNgramSize: 3,
		LengthPenalty:     2.0,
	}

	var results []summarizationResult
	if err := h.post(ctx, h.summarization, h.summaryModel, inferenceRequest{Inputs: text, Parameters: params}, &results); err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", emptyOutput(domain.AIProviderHuggingFace)
	}

	summary := strings.TrimSpace(results[0].SummaryText)
	if words := domain.WordCount(summary); words < minSummaryWords {
		return "", fmt.Errorf("%w: huggingface summary has %d words", domain.ErrBackendUnavailable, words)
	}
	return summary, nil
}

// GenerateText runs the instruction model, retrying once with greedy
// decoding when the sampled attempt fails.
func (h *HuggingFace) GenerateText(ctx context.Context, prompt string) (string, error) {
	text, err := h.generate(ctx, prompt, primaryGeneration)
	if err == nil {
		return text, nil
	}

	h.logger.Warn("primary text generation failed, retrying with simpler parameters",
		"model", h.textModel, "error", err)
	return h.generate(ctx, prompt, fallbackGeneration)
}

func (h *HuggingFace) generate(ctx context.Context, prompt string, params generationParams) (string, error) {
	var results []generationResult
	if err := h.post(ctx, h.inference, h.textModel, inferenceRequest{Inputs: prompt, Parameters: params}, &results); err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", emptyOutput(domain.AIProviderHuggingFace)
	}

	text := results[0].GeneratedText
	text = strings.TrimPrefix(text, prompt)
	return nonEmpty(domain.AIProviderHuggingFace, text)
}

func (h *HuggingFace) post(ctx context.Context, doer driven.Doer, model string, payload inferenceRequest, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.modelURL(model), bytes.NewReader(body))
	if err != nil {
		return unavailable(domain.AIProviderHuggingFace, err)
	}
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := doer.Do(req)
	if err != nil {
		return unavailable(domain.AIProviderHuggingFace, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: huggingface %s returned %d: %s",
			domain.ErrBackendUnavailable, model, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode huggingface response: %v", domain.ErrBackendUnavailable, err)
	}
	return nil
}

func (h *HuggingFace) modelURL(model string) string {
	return h.baseURL + "/models/" + model
}

// Model returns the summarization model name.
func (h *HuggingFace) Model() string {
	return h.summaryModel
}

// Ping checks that the summarization model endpoint answers with valid credentials.
func (h *HuggingFace) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.modelURL(h.summaryModel), nil)
	if err != nil {
		return unavailable(domain.AIProviderHuggingFace, err)
	}
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.inference.Do(req)
	if err != nil {
		return unavailable(domain.AIProviderHuggingFace, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden || resp.StatusCode >= 500 {
		return fmt.Errorf("%w: huggingface ping returned %d", domain.ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}

// Close is a no-op; the HTTP clients hold no dedicated resources.
func (h *HuggingFace) Close() error {
	return nil
}

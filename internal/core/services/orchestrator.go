package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/normalisers"
	"github.com/custodia-labs/lectern/internal/postprocessors"
	"github.com/custodia-labs/lectern/internal/runtime"
)

// Ensure orchestrator implements SummaryOrchestrator
var _ driving.SummaryOrchestrator = (*orchestrator)(nil)

// Orchestrator defaults
const (
	DefaultBackendTimeout = 90 * time.Second
	DefaultMaxChunks      = 4
	DefaultShortPathWords = 2000
	DefaultChunkWords     = 1500

	minExtractiveSentenceLen = 20
)

var errNoBackend = errors.New("no summarization backend configured")

// SummaryOrchestratorConfig holds dependencies for the summarization pipeline
type SummaryOrchestratorConfig struct {
	Services *runtime.Services
	Registry driven.NormaliserRegistry
	Chunker  driven.Chunker
	Policies domain.StylePolicies

	// BackendTimeout bounds every backend call
	BackendTimeout time.Duration

	// MaxChunks caps how many chunks are summarized
	MaxChunks int

	// ShortPathWords is the largest text summarized in a single call
	ShortPathWords int

	// ChunkWords is the chunk target on the chunked path
	ChunkWords int

	Logger *slog.Logger
}

type orchestrator struct {
	services       *runtime.Services
	registry       driven.NormaliserRegistry
	chunker        driven.Chunker
	policies       domain.StylePolicies
	backendTimeout time.Duration
	maxChunks      int
	shortPathWords int
	chunkWords     int
	logger         *slog.Logger
}

// NewSummaryOrchestrator creates the summarization pipeline.
// Nil Registry, Chunker and Policies use the defaults.
func NewSummaryOrchestrator(cfg SummaryOrchestratorConfig) driving.SummaryOrchestrator {
	if cfg.Registry == nil {
		cfg.Registry = normalisers.DefaultRegistry()
	}
	if cfg.Chunker == nil {
		cfg.Chunker = postprocessors.NewChunker(postprocessors.DefaultChunkConfig())
	}
	if cfg.Policies == nil {
		cfg.Policies = domain.DefaultStylePolicies()
	}
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = DefaultBackendTimeout
	}
	if cfg.MaxChunks <= 0 {
		cfg.MaxChunks = DefaultMaxChunks
	}
	if cfg.ShortPathWords <= 0 {
		cfg.ShortPathWords = DefaultShortPathWords
	}
	if cfg.ChunkWords <= 0 {
		cfg.ChunkWords = DefaultChunkWords
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &orchestrator{
		services:       cfg.Services,
		registry:       cfg.Registry,
		chunker:        cfg.Chunker,
		policies:       cfg.Policies,
		backendTimeout: cfg.BackendTimeout,
		maxChunks:      cfg.MaxChunks,
		shortPathWords: cfg.ShortPathWords,
		chunkWords:     cfg.ChunkWords,
		logger:         cfg.Logger,
	}
}

// Summarize cleans text and summarizes it in one or two stages
func (o *orchestrator) Summarize(ctx context.Context, text string, style domain.SummaryStyle, language string) domain.SummaryOutcome {
	if strings.TrimSpace(text) == "" {
		o.logger.Info("empty text, returning fallback message", "language", language)
		return domain.SummaryOutcome{
			Text: domain.EmptyTextMessage(language),
			Path: domain.SummaryPathEmpty,
		}
	}

	policy := o.policies.Policy(style)
	instruction := instructionFor(policy, language)

	cleaned := normalisers.Normalise(o.registry, text, normalisers.MIMEBookText)
	words := domain.WordCount(cleaned)
	o.logger.Info("text cleaned",
		"style", policy.Style,
		"raw_words", domain.WordCount(text),
		"clean_words", words,
	)

	if words <= o.shortPathWords {
		return o.shortPath(ctx, cleaned, policy, instruction)
	}
	return o.chunkedPath(ctx, cleaned, policy, instruction)
}

func (o *orchestrator) shortPath(ctx context.Context, cleaned string, policy domain.StylePolicy, instruction string) domain.SummaryOutcome {
	outcome := domain.SummaryOutcome{Path: domain.SummaryPathShort}

	summary, err := o.call(ctx, instruction, cleaned, policy.Final)
	if err != nil {
		o.logger.Warn("single pass summarization failed, using extractive fallback", "error", err)
		outcome.Text = Extractive(cleaned, policy)
		outcome.Extractive = true
		return outcome
	}

	o.logger.Info("single pass summary complete", "summary_words", domain.WordCount(summary))
	outcome.Text = summary
	return outcome
}

func (o *orchestrator) chunkedPath(ctx context.Context, cleaned string, policy domain.StylePolicy, instruction string) domain.SummaryOutcome {
	chunks := o.chunker.Chunk(cleaned, o.chunkWords)
	outcome := domain.SummaryOutcome{
		Path:        domain.SummaryPathChunked,
		ChunksTotal: len(chunks),
	}

	selected := chunks
	if len(selected) > o.maxChunks {
		selected = selected[:o.maxChunks]
	}
	o.logger.Info("text chunked",
		"chunker", o.chunker.Name(),
		"chunks", len(chunks),
		"summarizing", len(selected),
	)

	summaries := make([]string, 0, len(selected))
	for _, chunk := range selected {
		summary, err := o.call(ctx, instruction, chunk.Content, policy.Chunk)
		if err != nil {
			o.logger.Warn("chunk summarization failed",
				"position", chunk.Position,
				"chunk_words", chunk.WordCount,
				"error", err,
			)
			continue
		}
		summaries = append(summaries, summary)
	}
	outcome.ChunksSummarized = len(summaries)

	if len(summaries) == 0 {
		o.logger.Warn("no chunk summarized, using extractive fallback")
		outcome.Text = Extractive(cleaned, policy)
		outcome.Extractive = true
		return outcome
	}

	joined := strings.Join(summaries, "\n\n")
	o.logger.Info("chunk summaries complete",
		"summarized", len(summaries),
		"joined_words", domain.WordCount(joined),
	)

	final, err := o.call(ctx, instruction, joined, policy.Final)
	if err != nil {
		o.logger.Warn("final summarization failed, using extractive fallback", "error", err)
		outcome.Text = Extractive(joined, policy)
		outcome.Extractive = true
		return outcome
	}

	o.logger.Info("final summary complete", "summary_words", domain.WordCount(final))
	outcome.Text = final
	return outcome
}

// call runs one backend summarization under the backend timeout
func (o *orchestrator) call(ctx context.Context, instruction, text string, bounds domain.LengthBounds) (string, error) {
	var backend driven.SummarizationBackend
	if o.services != nil {
		backend = o.services.Backend()
	}
	if backend == nil {
		return "", errNoBackend
	}

	ctx, cancel := context.WithTimeout(ctx, o.backendTimeout)
	defer cancel()

	out, err := backend.Summarize(ctx, instruction+"\n\n"+text, bounds.Target, bounds.Min)
	if err != nil {
		return "", err
	}

	out = cleanOutput(out)
	if out == "" {
		return "", errors.New("backend returned an empty summary")
	}
	return out, nil
}

// instructionFor returns the style instruction with a language directive
// for anything but English
func instructionFor(policy domain.StylePolicy, language string) string {
	if language == "" || strings.EqualFold(language, domain.DefaultLanguage) {
		return policy.Instruction
	}
	return policy.Instruction + " Write the summary in " + domain.LanguageName(language) + "."
}

// cleanOutput trims backend output and drops blank lines
func cleanOutput(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// Extractive builds a summary from the first qualifying sentences of text.
// Sentences shorter than 20 characters or carrying boilerplate are skipped;
// when none qualify the style's fallback message is returned.
func Extractive(text string, policy domain.StylePolicy) string {
	var picked []string
	for _, s := range postprocessors.SplitSentences(text) {
		if len(picked) >= policy.ExtractiveSentences {
			break
		}
		s = strings.Join(strings.Fields(strings.TrimRight(s, ".!? ")), " ")
		if len(s) < minExtractiveSentenceLen || normalisers.IsBoilerplate(s) {
			continue
		}
		picked = append(picked, s)
	}

	if len(picked) == 0 {
		return policy.FallbackMessage
	}
	return strings.Join(picked, ". ") + "."
}

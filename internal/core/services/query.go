package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/runtime"
)

// Ensure queryService implements QueryService
var _ driving.QueryService = (*queryService)(nil)

// DefaultQueryTimeout bounds one query understanding call
const DefaultQueryTimeout = 30 * time.Second

const queryPromptTemplate = `<s>[INST] You are a book search assistant. Extract key information from the user's query to help search for books.

User query: "%s"

Extract the following information in JSON format:
- genre: the book genre if mentioned (e.g., "thriller", "romance", "science fiction")
- theme: the main theme or topic (e.g., "artificial intelligence", "space travel", "medieval")
- keywords: list of important search keywords
- author: author name if mentioned
- title: book title if mentioned

Respond with only valid JSON, no additional text.

Example output:
{"genre": "thriller", "theme": "artificial intelligence", "keywords": ["AI", "technology", "suspense"], "author": null, "title": null}
[/INST]`

type queryService struct {
	services *runtime.Services
	timeout  time.Duration
	logger   *slog.Logger
}

// NewQueryService creates a query understanding service backed by the
// active summarization backend's text generation
func NewQueryService(services *runtime.Services, timeout time.Duration, logger *slog.Logger) driving.QueryService {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &queryService{services: services, timeout: timeout, logger: logger}
}

// Understand asks the backend for structured terms and builds a search query
func (s *queryService) Understand(ctx context.Context, query string) *domain.QueryIntent {
	backend := s.services.Backend()
	if backend == nil {
		return domain.SimpleIntent(query)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := backend.GenerateText(ctx, fmt.Sprintf(queryPromptTemplate, query))
	if err != nil {
		s.logger.Warn("query understanding failed, using simple search", "query", query, "error", err)
		return domain.SimpleIntent(query)
	}

	return domain.NewQueryIntent(query, ParseExtractedTerms(response))
}

// ParseExtractedTerms decodes the JSON object embedded in a model response.
// Anything unparsable yields empty terms.
func ParseExtractedTerms(response string) domain.ExtractedTerms {
	var terms domain.ExtractedTerms

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end < start {
		return terms
	}

	if err := json.Unmarshal([]byte(response[start:end+1]), &terms); err != nil {
		return domain.ExtractedTerms{}
	}
	return terms
}

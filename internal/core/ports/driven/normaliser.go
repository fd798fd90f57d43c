package driven

import "github.com/custodia-labs/lectern/internal/core/domain"

// Normaliser cleans raw text before summarization.
// Implementations are pure and never fail.
type Normaliser interface {
	// Normalise transforms raw content into clean text.
	// The mimeType helps determine the appropriate processing.
	Normalise(content string, mimeType string) string

	// SupportedTypes returns MIME types this normaliser handles.
	// Can include wildcards like "text/*" or specific types like "text/html".
	SupportedTypes() []string

	// Priority returns the normaliser priority (higher = more specific).
	// Priority ranges:
	//   90-100: Source-specific (e.g., public-domain text)
	//   50-89:  Format-specific (HTML)
	//   1-49:   Fallback (whitespace cleanup)
	Priority() int
}

// NormaliserRegistry manages content normalisers.
// When multiple normalisers match a MIME type, the highest priority one is used.
type NormaliserRegistry interface {
	// Get retrieves the best-matching normaliser for a MIME type.
	// Returns nil if no normaliser is registered for the type.
	Get(mimeType string) Normaliser

	// GetAll retrieves all normalisers that match a MIME type, sorted by priority (highest first).
	GetAll(mimeType string) []Normaliser

	// Register registers a normaliser.
	Register(normaliser Normaliser)

	// List returns all registered MIME types.
	List() []string
}

// Chunker splits normalized text into bounded units.
type Chunker interface {
	// Chunk returns non-empty, positioned chunks of roughly targetWords words.
	// Concatenating the chunk words reproduces the input words in order.
	Chunk(text string, targetWords int) []domain.TextChunk

	// Name returns the chunker name for logging.
	Name() string
}

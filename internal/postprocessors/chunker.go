package postprocessors

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Chunker = (*Chunker)(nil)

// ChunkConfig configures the chunker behavior.
type ChunkConfig struct {
	// TargetWords is used when Chunk is called with a non-positive target
	TargetWords int
}

// DefaultChunkConfig returns the summarization chunk size.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		TargetWords: 1500,
	}
}

// Chunker splits text into word-bounded chunks along paragraph and
// sentence boundaries. A sentence is never split, so a single sentence
// longer than the target becomes its own oversized chunk.
type Chunker struct {
	config ChunkConfig
}

// NewChunker creates a new chunker with the given config.
func NewChunker(config ChunkConfig) *Chunker {
	if config.TargetWords <= 0 {
		config.TargetWords = DefaultChunkConfig().TargetWords
	}
	return &Chunker{config: config}
}

// Name returns the chunker name.
func (c *Chunker) Name() string {
	return "word-chunker"
}

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// Chunk splits text into chunks of at most targetWords words.
func (c *Chunker) Chunk(text string, targetWords int) []domain.TextChunk {
	if targetWords <= 0 {
		targetWords = c.config.TargetWords
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	paragraphs := paragraphBreak.Split(text, -1)
	if len(paragraphs) < 2 {
		return wordGroups(strings.Fields(text), targetWords)
	}

	b := &builder{target: targetWords}
	for _, para := range paragraphs {
		words := domain.WordCount(para)
		if words == 0 {
			continue
		}

		if words > targetWords {
			b.flush()
			for _, sentence := range SplitSentences(para) {
				b.add(sentence, domain.WordCount(sentence), " ")
			}
			b.flush()
			continue
		}

		b.add(strings.TrimSpace(para), words, "\n\n")
	}
	b.flush()

	return b.chunks
}

// builder accumulates units into chunks, starting a new chunk when
// the next unit would push the current one past the target.
type builder struct {
	target int
	chunks []domain.TextChunk
	parts  []string
	sep    string
	words  int
}

func (b *builder) add(unit string, words int, sep string) {
	if words == 0 {
		return
	}
	if b.words > 0 && b.words+words > b.target {
		b.flush()
	}
	b.parts = append(b.parts, unit)
	b.sep = sep
	b.words += words
}

func (b *builder) flush() {
	if b.words == 0 {
		return
	}
	b.chunks = append(b.chunks, domain.TextChunk{
		Position:  len(b.chunks),
		Content:   strings.Join(b.parts, b.sep),
		WordCount: b.words,
	})
	b.parts = nil
	b.words = 0
}

// wordGroups splits words into consecutive groups of size words.
func wordGroups(words []string, size int) []domain.TextChunk {
	var chunks []domain.TextChunk
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, domain.TextChunk{
			Position:  len(chunks),
			Content:   strings.Join(words[start:end], " "),
			WordCount: end - start,
		})
	}
	return chunks
}

// SplitSentences splits text after '.', '!' or '?' when followed by
// whitespace. Trailing text without a terminator is the last sentence.
func SplitSentences(text string) []string {
	var sentences []string

	runes := []rune(text)
	start := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

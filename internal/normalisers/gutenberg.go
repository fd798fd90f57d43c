package normalisers

import (
	"regexp"
	"strings"
)

// GutenbergNormaliser strips public-domain license headers and footers,
// production credits and illustration placeholders from book text.
// It is a heuristic: when no start/end window is found the text passes through.
type GutenbergNormaliser struct{}

func (n *GutenbergNormaliser) Normalise(content string, mimeType string) string {
	return Clean(content)
}

func (n *GutenbergNormaliser) SupportedTypes() []string {
	return []string{"text/plain"}
}

func (n *GutenbergNormaliser) Priority() int {
	return 90
}

var (
	startMarker = regexp.MustCompile(`(?i)\*\*\*\s*START OF (THE|THIS) PROJECT GUTENBERG`)
	endMarker   = regexp.MustCompile(`(?i)\*\*\*\s*END OF (THE|THIS) PROJECT GUTENBERG`)

	// CHAPTER 1, Chapter I., BOOK I, BOOK THE FIRST
	chapterHeading = regexp.MustCompile(`^(CHAPTER|Chapter|BOOK [IVXLC]+\b|BOOK THE|Book [IVXLC]+\b)`)

	boilerplatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^produced by`),
		regexp.MustCompile(`(?i)^(e-?text|ebook) (prepared|produced) by`),
		regexp.MustCompile(`(?i)updated editions will replace the previous one`),
		regexp.MustCompile(`(?i)gutenberg\.org`),
		regexp.MustCompile(`(?i)project gutenberg`),
		regexp.MustCompile(`(?i)^\[illustration`),
		regexp.MustCompile(`(?i)distributed proofread(ing|ers)`),
	}
)

// Clean returns the body of a public-domain book without license
// boilerplate. Lines are trimmed and runs of blank lines collapse to one.
func Clean(raw string) string {
	lines := strings.Split(normalizeNewlines(raw), "\n")

	start := -1
	for i, line := range lines {
		if startMarker.MatchString(line) {
			start = i + 1
			break
		}
		if chapterHeading.MatchString(strings.TrimSpace(line)) {
			start = i
			break
		}
	}

	end := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if endMarker.MatchString(lines[i]) {
			end = i
			break
		}
	}

	if start == -1 && end == -1 {
		return raw
	}
	if start == -1 {
		start = 0
	}
	if end == -1 {
		end = len(lines)
	}
	if start >= end {
		return raw
	}

	var b strings.Builder
	blank := true // suppresses leading blank lines
	for _, line := range lines[start:end] {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				b.WriteString("\n")
				blank = true
			}
			continue
		}
		if IsBoilerplate(line) {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
		blank = false
	}

	return strings.TrimSpace(b.String())
}

// IsBoilerplate reports whether a line or sentence carries license or
// production boilerplate.
func IsBoilerplate(s string) bool {
	s = strings.TrimSpace(s)
	for _, p := range boilerplatePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

package domain

import (
	"fmt"
	"strings"
)

// SummaryStyle selects the length and tone policy for a summary
type SummaryStyle string

const (
	SummaryStyleConcise  SummaryStyle = "concise"
	SummaryStyleDetailed SummaryStyle = "detailed"
	SummaryStyleAcademic SummaryStyle = "academic"
	SummaryStyleSimple   SummaryStyle = "simple"
)

// DefaultSummaryStyle is used when a request does not name a style
const DefaultSummaryStyle = SummaryStyleConcise

// AllSummaryStyles returns the closed set of styles
func AllSummaryStyles() []SummaryStyle {
	return []SummaryStyle{SummaryStyleConcise, SummaryStyleDetailed, SummaryStyleAcademic, SummaryStyleSimple}
}

// IsValid returns true if the style is one of the known styles
func (s SummaryStyle) IsValid() bool {
	_, ok := defaultStylePolicies[s]
	return ok
}

// ParseSummaryStyle validates a style name
func ParseSummaryStyle(s string) (SummaryStyle, error) {
	style := SummaryStyle(strings.TrimSpace(s))
	if !style.IsValid() {
		names := make([]string, 0, len(defaultStylePolicies))
		for _, st := range AllSummaryStyles() {
			names = append(names, string(st))
		}
		return "", fmt.Errorf("%w: invalid style %q, valid styles: %s", ErrInvalidInput, s, strings.Join(names, ", "))
	}
	return style, nil
}

// LengthBounds are backend length tokens, roughly proportional to words.
type LengthBounds struct {
	Target int `json:"target"`
	Min    int `json:"min"`
}

// StylePolicy holds everything a style controls in the summarization pipeline.
type StylePolicy struct {
	Style SummaryStyle

	// Final bounds apply to single-pass and final combination calls
	Final LengthBounds

	// Chunk bounds apply to each per-chunk call
	Chunk LengthBounds

	// Instruction is prepended to every text sent to the backend
	Instruction string

	// ExtractiveSentences caps the extractive fallback
	ExtractiveSentences int

	// FallbackMessage is returned when no sentence qualifies for extraction
	FallbackMessage string
}

var defaultStylePolicies = map[SummaryStyle]StylePolicy{
	SummaryStyleConcise: {
		Style:               SummaryStyleConcise,
		Final:               LengthBounds{Target: 800, Min: 200},
		Chunk:               LengthBounds{Target: 150, Min: 40},
		Instruction:         "Write a brief, concise summary focusing on the main points.",
		ExtractiveSentences: 15,
		FallbackMessage:     "A concise summary could not be produced for this text.",
	},
	SummaryStyleDetailed: {
		Style:               SummaryStyleDetailed,
		Final:               LengthBounds{Target: 1500, Min: 400},
		Chunk:               LengthBounds{Target: 300, Min: 80},
		Instruction:         "Write a comprehensive, detailed summary covering all key aspects.",
		ExtractiveSentences: 20,
		FallbackMessage:     "A detailed summary could not be produced because the text contained no usable passages.",
	},
	SummaryStyleAcademic: {
		Style:               SummaryStyleAcademic,
		Final:               LengthBounds{Target: 1300, Min: 350},
		Chunk:               LengthBounds{Target: 250, Min: 70},
		Instruction:         "Write an academic-style summary with formal language.",
		ExtractiveSentences: 18,
		FallbackMessage:     "An academic summary could not be derived from the available source material.",
	},
	SummaryStyleSimple: {
		Style:               SummaryStyleSimple,
		Final:               LengthBounds{Target: 1000, Min: 250},
		Chunk:               LengthBounds{Target: 180, Min: 50},
		Instruction:         "Write a simple, easy-to-understand summary for general readers.",
		ExtractiveSentences: 12,
		FallbackMessage:     "We could not make a simple summary of this book.",
	},
}

// StylePolicies maps every style to its policy
type StylePolicies map[SummaryStyle]StylePolicy

// DefaultStylePolicies returns a copy of the built-in style table
func DefaultStylePolicies() StylePolicies {
	policies := make(StylePolicies, len(defaultStylePolicies))
	for k, v := range defaultStylePolicies {
		policies[k] = v
	}
	return policies
}

// Policy returns the policy for a style, falling back to the default style
func (p StylePolicies) Policy(style SummaryStyle) StylePolicy {
	if policy, ok := p[style]; ok {
		return policy
	}
	return defaultStylePolicies[DefaultSummaryStyle]
}

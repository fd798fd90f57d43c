package ai

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// summaryPrompt asks a chat model for a summary within the given bounds.
// Length hints are in tokens; chat models are asked for roughly that many words.
func summaryPrompt(text string, targetLen, minLen int) string {
	return fmt.Sprintf(
		"Summarize the following text in %d to %d words. Reply with the summary only.\n\n%s",
		minLen, targetLen, text,
	)
}

// maxTokens leaves headroom over the target length for tokenization.
func maxTokens(targetLen int) int {
	if targetLen <= 0 {
		return 1024
	}
	return targetLen*2 + 64
}

func unavailable(provider domain.AIProvider, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrBackendUnavailable, provider, err)
}

func emptyOutput(provider domain.AIProvider) error {
	return fmt.Errorf("%w: %s returned no text", domain.ErrBackendUnavailable, provider)
}

func nonEmpty(provider domain.AIProvider, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", emptyOutput(provider)
	}
	return text, nil
}

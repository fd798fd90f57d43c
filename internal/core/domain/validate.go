package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Query length bounds, in characters after trimming
const (
	MinQueryLength = 2
	MaxQueryLength = 500
)

// ValidateQuery checks a search query or book id for length
func ValidateQuery(query string) error {
	q := strings.TrimSpace(query)
	n := utf8.RuneCountInString(q)
	if n == 0 {
		return fmt.Errorf("%w: query cannot be empty", ErrInvalidInput)
	}
	if n < MinQueryLength {
		return fmt.Errorf("%w: query must be at least %d characters long", ErrInvalidInput, MinQueryLength)
	}
	if n > MaxQueryLength {
		return fmt.Errorf("%w: query cannot exceed %d characters", ErrInvalidInput, MaxQueryLength)
	}
	return nil
}

// ValidateLanguage checks a language code against the supported set
func ValidateLanguage(language string, supported []string) error {
	for _, l := range supported {
		if strings.EqualFold(l, language) {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported language %q, supported languages: %s",
		ErrInvalidInput, language, strings.Join(supported, ", "))
}

// ValidateStyle checks a style name against the closed set
func ValidateStyle(style SummaryStyle) error {
	_, err := ParseSummaryStyle(string(style))
	return err
}

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"ar": "Arabic",
	"hi": "Hindi",
	"ru": "Russian",
}

// LanguageName returns the English name of a language code,
// or the code itself when unknown.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

var emptyTextMessages = map[string]string{
	"en": "No content was available to summarize.",
	"es": "No había contenido disponible para resumir.",
	"fr": "Aucun contenu n'était disponible pour le résumé.",
	"de": "Es war kein Inhalt zum Zusammenfassen verfügbar.",
	"it": "Nessun contenuto disponibile da riassumere.",
	"pt": "Nenhum conteúdo estava disponível para resumir.",
}

// EmptyTextMessage is the summary returned for blank input, localized when possible
func EmptyTextMessage(language string) string {
	if msg, ok := emptyTextMessages[strings.ToLower(language)]; ok {
		return msg
	}
	return emptyTextMessages[DefaultLanguage]
}

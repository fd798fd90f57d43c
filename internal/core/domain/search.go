package domain

import "strings"

// DefaultSearchLimit is used when a search request names no limit
const DefaultSearchLimit = 10

// MaxSearchLimit caps the number of results a single request may ask for
const MaxSearchLimit = 50

// SearchRequest is a free text book search
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// WithDefaults fills the limit when omitted and clamps it to MaxSearchLimit
func (r SearchRequest) WithDefaults() SearchRequest {
	if r.Limit <= 0 {
		r.Limit = DefaultSearchLimit
	}
	if r.Limit > MaxSearchLimit {
		r.Limit = MaxSearchLimit
	}
	return r
}

// SearchResponse is the API representation of a search
type SearchResponse struct {
	Results         []*Book      `json:"results"`
	TotalResults    int          `json:"total_results"`
	QueryUnderstood *QueryIntent `json:"query_understood,omitempty"`
}

// ExtractedTerms are the structured parts of a free text query
type ExtractedTerms struct {
	Genre    string   `json:"genre,omitempty"`
	Theme    string   `json:"theme,omitempty"`
	Keywords []string `json:"keywords"`
	Author   string   `json:"author,omitempty"`
	Title    string   `json:"title,omitempty"`
}

// IsEmpty returns true if nothing was extracted
func (t ExtractedTerms) IsEmpty() bool {
	return t.Genre == "" && t.Theme == "" && t.Author == "" && t.Title == "" && len(t.Keywords) == 0
}

// QueryIntent is the understood form of a search query
type QueryIntent struct {
	OriginalQuery  string         `json:"original_query"`
	ExtractedTerms ExtractedTerms `json:"extracted_terms"`
	SearchQuery    string         `json:"search_query"`
}

// SimpleIntent wraps a query that was not interpreted
func SimpleIntent(query string) *QueryIntent {
	return &QueryIntent{
		OriginalQuery:  query,
		ExtractedTerms: ExtractedTerms{Keywords: []string{}},
		SearchQuery:    query,
	}
}

// NewQueryIntent builds the search query from extracted terms:
// title, author:<author>, genre, theme, then keywords not already present.
// With nothing extracted the original query is used.
func NewQueryIntent(original string, terms ExtractedTerms) *QueryIntent {
	if terms.Keywords == nil {
		terms.Keywords = []string{}
	}

	var parts []string
	if terms.Title != "" {
		parts = append(parts, terms.Title)
	}
	if terms.Author != "" {
		parts = append(parts, "author:"+terms.Author)
	}
	if terms.Genre != "" {
		parts = append(parts, terms.Genre)
	}
	if terms.Theme != "" {
		parts = append(parts, terms.Theme)
	}

	for _, kw := range terms.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if !strings.Contains(strings.Join(parts, " "), kw) {
			parts = append(parts, kw)
		}
	}

	searchQuery := strings.Join(parts, " ")
	if searchQuery == "" {
		searchQuery = original
	}

	return &QueryIntent{
		OriginalQuery:  original,
		ExtractedTerms: terms,
		SearchQuery:    searchQuery,
	}
}

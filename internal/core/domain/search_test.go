package domain

import "testing"

func TestSearchRequest_WithDefaults(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultSearchLimit},
		{-3, DefaultSearchLimit},
		{5, 5},
		{500, MaxSearchLimit},
	}
	for _, tt := range tests {
		got := SearchRequest{Query: "dune", Limit: tt.limit}.WithDefaults()
		if got.Limit != tt.want {
			t.Errorf("limit %d: expected %d, got %d", tt.limit, tt.want, got.Limit)
		}
	}
}

func TestNewQueryIntent(t *testing.T) {
	tests := []struct {
		name  string
		terms ExtractedTerms
		want  string
	}{
		{
			name:  "nothing extracted uses original",
			terms: ExtractedTerms{},
			want:  "books about space",
		},
		{
			name:  "title and author",
			terms: ExtractedTerms{Title: "Dune", Author: "Frank Herbert"},
			want:  "Dune author:Frank Herbert",
		},
		{
			name:  "keywords already contained are skipped",
			terms: ExtractedTerms{Genre: "science fiction", Theme: "desert", Keywords: []string{"science", "spice", " "}},
			want:  "science fiction desert spice",
		},
		{
			name:  "keywords only",
			terms: ExtractedTerms{Keywords: []string{"whales", "sea"}},
			want:  "whales sea",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := NewQueryIntent("books about space", tt.terms)
			if intent.SearchQuery != tt.want {
				t.Errorf("expected %q, got %q", tt.want, intent.SearchQuery)
			}
			if intent.OriginalQuery != "books about space" {
				t.Errorf("original query lost: %q", intent.OriginalQuery)
			}
			if intent.ExtractedTerms.Keywords == nil {
				t.Error("expected non-nil keywords")
			}
		})
	}
}

func TestSimpleIntent(t *testing.T) {
	intent := SimpleIntent("moby dick")
	if intent.SearchQuery != "moby dick" || intent.OriginalQuery != "moby dick" {
		t.Errorf("unexpected intent %+v", intent)
	}
	if !intent.ExtractedTerms.IsEmpty() {
		t.Error("expected empty terms")
	}
}

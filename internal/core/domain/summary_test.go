package domain

import (
	"testing"
	"time"
)

func TestSummaryRequest_WithDefaults(t *testing.T) {
	req := SummaryRequest{}.WithDefaults()

	if req.Language != "en" {
		t.Errorf("expected en, got %s", req.Language)
	}
	if req.Style != SummaryStyleConcise {
		t.Errorf("expected concise, got %s", req.Style)
	}
	if req.EffectiveMaxPages() != 3 {
		t.Errorf("expected max pages 3, got %d", req.EffectiveMaxPages())
	}

	pages := 7
	explicit := SummaryRequest{Language: "fr", Style: SummaryStyleAcademic, MaxPages: &pages}.WithDefaults()
	if explicit.Language != "fr" || explicit.Style != SummaryStyleAcademic || explicit.EffectiveMaxPages() != 7 {
		t.Errorf("explicit values overwritten: %+v", explicit)
	}
}

func TestSummaryCacheKey(t *testing.T) {
	req := SummaryRequest{Language: "en", Style: SummaryStyleDetailed}
	if got := SummaryCacheKey("gutenberg:84", req); got != "summary:gutenberg:84:3:detailed:en" {
		t.Errorf("unexpected key %q", got)
	}

	if got := SearchCacheKey("dune", 10); got != "search:dune:10" {
		t.Errorf("unexpected key %q", got)
	}
	if got := BookCacheKey("google:abc"); got != "book:google:abc" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestSourceHash(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := SourceHash("abc"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"one two\nthree\tfour", 4},
	}
	for _, tt := range tests {
		if got := WordCount(tt.text); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestNewCreateSummary(t *testing.T) {
	book := &Book{ID: "gutenberg:84", Title: "Frankenstein", Authors: []string{"Mary Shelley"}, ISBN: "123"}

	cs := NewCreateSummary(book, "en", SummaryStyleSimple, "A monster story.", "source text")

	if cs.BookID != "gutenberg:84" || cs.BookTitle != "Frankenstein" || cs.BookAuthor != "Mary Shelley" {
		t.Errorf("book fields not copied: %+v", cs)
	}
	if cs.WordCount != 3 {
		t.Errorf("expected word count 3, got %d", cs.WordCount)
	}
	if cs.SourceHash != SourceHash("source text") {
		t.Error("expected hash of source text")
	}
}

func TestSummary_ToResponse(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := &Summary{
		ID:          "id-1",
		BookTitle:   "Dune",
		BookAuthor:  "Frank Herbert",
		ISBN:        "978",
		Language:    "en",
		SummaryText: "Spice.",
		WordCount:   1,
		CreatedAt:   created,
	}

	resp := s.ToResponse()
	if resp.ID != "id-1" || resp.SummaryText != "Spice." || resp.WordCount != 1 {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.BookInfo.Title != "Dune" || resp.BookInfo.Author != "Frank Herbert" || resp.BookInfo.ISBN != "978" {
		t.Errorf("unexpected book info %+v", resp.BookInfo)
	}
	if !resp.CreatedAt.Equal(created) {
		t.Error("created_at not copied")
	}
}

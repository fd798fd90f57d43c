package services

import (
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// SourcePriorities ranks catalogs by trust; higher wins dedup and earns a larger relevance bonus
type SourcePriorities map[domain.BookSource]int

// DefaultSourcePriorities returns gutenberg 3, openlibrary 2, google 1
func DefaultSourcePriorities() SourcePriorities {
	return SourcePriorities{
		domain.BookSourceGutenberg:   3,
		domain.BookSourceOpenLibrary: 2,
		domain.BookSourceGoogle:      1,
	}
}

// CompletenessWeights score how much metadata a book carries
type CompletenessWeights struct {
	Title         int
	Authors       int
	ISBN          int
	Cover         int
	Description   int
	PublishedDate int
	Language      int
	PageCount     int
}

// DefaultCompletenessWeights returns the standard completeness weights
func DefaultCompletenessWeights() CompletenessWeights {
	return CompletenessWeights{
		Title:         3,
		Authors:       3,
		ISBN:          2,
		Cover:         1,
		Description:   2,
		PublishedDate: 1,
		Language:      1,
		PageCount:     1,
	}
}

// Score returns the completeness score of b
func (w CompletenessWeights) Score(b *domain.Book) int {
	score := 0
	if b.Title != "" {
		score += w.Title
	}
	if len(b.Authors) > 0 {
		score += w.Authors
	}
	if b.ISBN != "" {
		score += w.ISBN
	}
	if b.CoverURL != "" {
		score += w.Cover
	}
	if b.Description != "" {
		score += w.Description
	}
	if b.PublishedDate != "" {
		score += w.PublishedDate
	}
	if b.Language != "" {
		score += w.Language
	}
	if b.PageCount > 0 {
		score += w.PageCount
	}
	return score
}

// RelevanceWeights control how search results are ordered
type RelevanceWeights struct {
	TitleContains      float64
	TitleExact         float64
	TitlePrefix        float64
	AuthorContains     float64
	AuthorExact        float64
	DescriptionMatches float64
	HasCover           float64
	HasDescription     float64
	HasISBN            float64
}

// DefaultRelevanceWeights returns the standard relevance weights
func DefaultRelevanceWeights() RelevanceWeights {
	return RelevanceWeights{
		TitleContains:      10,
		TitleExact:         5,
		TitlePrefix:        3,
		AuthorContains:     8,
		AuthorExact:        4,
		DescriptionMatches: 2,
		HasCover:           1,
		HasDescription:     1,
		HasISBN:            0.5,
	}
}

// Ranker deduplicates and orders books
type Ranker struct {
	Relevance    RelevanceWeights
	Completeness CompletenessWeights
	Priorities   SourcePriorities
}

// DefaultRanker returns a ranker with every default weight
func DefaultRanker() Ranker {
	return Ranker{
		Relevance:    DefaultRelevanceWeights(),
		Completeness: DefaultCompletenessWeights(),
		Priorities:   DefaultSourcePriorities(),
	}
}

// NormalizeForDedup case-folds s and keeps only letters and digits
func NormalizeForDedup(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}

// DedupKey identifies the work a book describes.
// Books without a usable title are keyed by their own id.
func DedupKey(b *domain.Book) string {
	title := NormalizeForDedup(b.Title)
	if title == "" {
		return b.ID
	}
	return title + "|" + NormalizeForDedup(b.PrimaryAuthor())
}

// better reports whether a should survive over b
func (r Ranker) better(a, b *domain.Book) bool {
	if pa, pb := r.Priorities[a.Source], r.Priorities[b.Source]; pa != pb {
		return pa > pb
	}
	if ca, cb := r.Completeness.Score(a), r.Completeness.Score(b); ca != cb {
		return ca > cb
	}
	return a.ID < b.ID
}

// Deduplicate keeps one book per dedup key, in order of first appearance.
// The survivor is the most trusted source, then the most complete, then the smallest id.
func (r Ranker) Deduplicate(books []*domain.Book) []*domain.Book {
	index := make(map[string]int, len(books))
	out := make([]*domain.Book, 0, len(books))

	for _, b := range books {
		if b == nil {
			continue
		}
		key := DedupKey(b)
		if i, seen := index[key]; seen {
			if r.better(b, out[i]) {
				out[i] = b
			}
			continue
		}
		index[key] = len(out)
		out = append(out, b)
	}

	return out
}

// Score rates b against query using the relevance weights
func (r Ranker) Score(b *domain.Book, query string) float64 {
	w := r.Relevance
	q := strings.ToLower(strings.TrimSpace(query))
	score := 0.0

	if q != "" {
		title := strings.ToLower(b.Title)
		if strings.Contains(title, q) {
			score += w.TitleContains
			if title == q {
				score += w.TitleExact
			}
			if strings.HasPrefix(title, q) {
				score += w.TitlePrefix
			}
		}

		for _, author := range b.Authors {
			a := strings.ToLower(author)
			if strings.Contains(a, q) {
				score += w.AuthorContains
				if a == q {
					score += w.AuthorExact
				}
			}
		}

		if strings.Contains(strings.ToLower(b.Description), q) {
			score += w.DescriptionMatches
		}
	}

	score += float64(r.Priorities[b.Source])
	if b.CoverURL != "" {
		score += w.HasCover
	}
	if b.Description != "" {
		score += w.HasDescription
	}
	if b.ISBN != "" {
		score += w.HasISBN
	}

	return score
}

// Rank sorts books by descending relevance. Ties are broken by id so the
// order never depends on the input order.
func (r Ranker) Rank(books []*domain.Book, query string) []*domain.Book {
	scores := make(map[*domain.Book]float64, len(books))
	for _, b := range books {
		scores[b] = r.Score(b, query)
	}

	ranked := make([]*domain.Book, len(books))
	copy(ranked, books)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := scores[ranked[i]], scores[ranked[j]]
		if si != sj {
			return si > sj
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}

// sortByID orders merged results so dedup does not depend on which source answered first
func sortByID(books []*domain.Book) {
	sort.SliceStable(books, func(i, j int) bool {
		if books[i].ID != books[j].ID {
			return books[i].ID < books[j].ID
		}
		return books[i].Title < books[j].Title
	})
}

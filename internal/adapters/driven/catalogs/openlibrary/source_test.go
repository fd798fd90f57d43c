package openlibrary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

const searchJSON = `{
  "docs": [
    {
      "key": "/works/OL893415W",
      "title": "Dune",
      "author_name": ["Frank Herbert"],
      "first_publish_year": 1965,
      "isbn": ["9780441013593", "0441013597"],
      "publisher": ["Ace Books", "Chilton"],
      "number_of_pages_median": 528,
      "language": ["eng"],
      "cover_i": 11481354,
      "subject": ["Science fiction", "Deserts", "Ecology", "Politics", "Religion", "Spice"],
      "ia": ["dune00herb"]
    }
  ]
}`

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Doer: srv.Client()})
}

func TestSearch_MapsDocs(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" || r.URL.Query().Get("q") != "dune" || r.URL.Query().Get("limit") != "5" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(searchJSON))
	})

	books, err := s.Search(context.Background(), "dune", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(books))
	}

	b := books[0]
	if b.ID != "openlibrary:/works/OL893415W" {
		t.Errorf("unexpected id %s", b.ID)
	}
	if b.Description != "Science fiction, Deserts, Ecology, Politics, Religion" {
		t.Errorf("expected first five subjects, got %q", b.Description)
	}
	if b.CoverURL != "https://covers.openlibrary.org/b/id/11481354-L.jpg" {
		t.Errorf("unexpected cover %s", b.CoverURL)
	}
	if b.PreviewLink != "https://openlibrary.org/works/OL893415W" {
		t.Errorf("unexpected preview %s", b.PreviewLink)
	}
	if b.ISBN != "9780441013593" || b.Publisher != "Ace Books" || b.PublishedDate != "1965" || b.PageCount != 528 || b.Language != "eng" {
		t.Errorf("unexpected metadata %+v", b)
	}
}

func TestSearch_Unavailable(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := s.Search(context.Background(), "dune", 5); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestGetByID_DescriptionForms(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"key":"/works/OL1W","title":"A","description":"Plain text."}`, "Plain text."},
		{"object", `{"key":"/works/OL1W","title":"A","description":{"type":"/type/text","value":"Typed text."}}`, "Typed text."},
		{"subjects fallback", `{"key":"/works/OL1W","title":"A","subjects":["One","Two"]}`, "One, Two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/works/OL1W.json" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				_, _ = w.Write([]byte(tt.body))
			})

			book, err := s.GetByID(context.Background(), "/works/OL1W")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if book.Description != tt.want {
				t.Errorf("expected %q, got %q", tt.want, book.Description)
			}
		})
	}
}

func TestGetByID_NotFound(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	book, err := s.GetByID(context.Background(), "OL404W")
	if err != nil || book != nil {
		t.Errorf("expected nil, nil; got %v, %v", book, err)
	}
}

func TestArchiveURL(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "key:/works/OL893415W" || q.Get("fields") != "key,ia" || q.Get("limit") != "1" {
			t.Errorf("unexpected archive lookup %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(searchJSON))
	})

	got, err := s.ArchiveURL(context.Background(), "/works/OL893415W")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://archive.org/stream/dune00herb/dune00herb_djvu.txt" {
		t.Errorf("unexpected archive url %s", got)
	}
}

func TestArchiveURL_NoIdentifier(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"docs":[{"key":"/works/OL1W"}]}`))
	})

	got, err := s.ArchiveURL(context.Background(), "/works/OL1W")
	if err != nil || got != "" {
		t.Errorf("expected empty url, got %q, %v", got, err)
	}
}

func TestGetArchivedText(t *testing.T) {
	text := strings.Repeat("scanned words ", 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(text))
	}))
	defer srv.Close()

	s := New(Config{Doer: srv.Client()})
	got, err := s.GetArchivedText(context.Background(), srv.URL+"/stream/x/x_djvu.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != text {
		t.Error("archived text altered")
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"/works/OL1W": "/works/OL1W",
		"works/OL1W":  "/works/OL1W",
		"OL1W":        "/works/OL1W",
		"/books/OL2M": "/books/OL2M",
	}
	for in, want := range tests {
		if got := normalizeKey(in); got != want {
			t.Errorf("normalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

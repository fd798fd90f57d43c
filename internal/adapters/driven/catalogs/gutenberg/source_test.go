package gutenberg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

const booksJSON = `{
  "count": 2,
  "results": [
    {
      "id": 84,
      "title": "Frankenstein; Or, The Modern Prometheus",
      "authors": [{"name": "Shelley, Mary Wollstonecraft"}],
      "subjects": ["Gothic fiction", "Monsters -- Fiction"],
      "languages": ["en"],
      "formats": {"image/png": "https://png", "image/jpeg": "https://jpeg"}
    },
    {
      "id": 42324,
      "title": "Frankenstein",
      "authors": [],
      "subjects": [],
      "languages": [],
      "formats": {"image/png": "https://png-only"}
    }
  ]
}`

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, ContentBaseURL: srv.URL, Doer: srv.Client()})
}

func TestSearch_MapsResults(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/books/" || r.URL.Query().Get("search") != "frankenstein" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(booksJSON))
	})

	books, err := s.Search(context.Background(), "frankenstein", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}

	b := books[0]
	if b.ID != "gutenberg:84" || b.Source != domain.BookSourceGutenberg {
		t.Errorf("unexpected id/source %s/%s", b.ID, b.Source)
	}
	if b.Description != "Gothic fiction; Monsters -- Fiction" {
		t.Errorf("unexpected description %q", b.Description)
	}
	if b.CoverURL != "https://jpeg" {
		t.Errorf("expected jpeg cover, got %s", b.CoverURL)
	}
	if b.Publisher != "Project Gutenberg" || b.PreviewLink != "https://www.gutenberg.org/ebooks/84" || b.Language != "en" {
		t.Errorf("unexpected metadata %+v", b)
	}
	if books[1].CoverURL != "https://png-only" {
		t.Errorf("expected png fallback, got %s", books[1].CoverURL)
	}
}

func TestSearch_TruncatesToLimit(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(booksJSON))
	})

	books, err := s.Search(context.Background(), "frankenstein", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(books) != 1 {
		t.Errorf("expected 1 book, got %d", len(books))
	}
}

func TestGetByID(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/books/84/":
			_, _ = w.Write([]byte(`{"id":84,"title":"Frankenstein","authors":[{"name":"Shelley"}],"subjects":[],"languages":["en"],"formats":{}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	book, err := s.GetByID(context.Background(), "84")
	if err != nil || book == nil || book.Title != "Frankenstein" {
		t.Fatalf("unexpected result %+v, %v", book, err)
	}

	missing, err := s.GetByID(context.Background(), "99999")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for 404; got %+v, %v", missing, err)
	}

	if _, err := s.GetByID(context.Background(), "abc"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for non-numeric id, got %v", err)
	}
}

func TestContentURL(t *testing.T) {
	s := New(Config{})
	if got := s.ContentURL("84"); got != "https://www.gutenberg.org/files/84/84-0.txt" {
		t.Errorf("unexpected content url %s", got)
	}
	if got := s.mirrorURL("84"); got != "https://www.gutenberg.org/cache/epub/84/pg84.txt" {
		t.Errorf("unexpected mirror url %s", got)
	}
}

func TestGetContent_FallsBackToMirror(t *testing.T) {
	text := strings.Repeat("It was a dark and stormy night. ", 50)
	var paths []string
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/cache/epub/84/pg84.txt" {
			_, _ = w.Write([]byte(text))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	got, err := s.GetContent(context.Background(), "84")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != text {
		t.Error("content altered")
	}
	if len(paths) != 2 || paths[0] != "/files/84/84-0.txt" {
		t.Errorf("expected canonical then mirror, got %v", paths)
	}
}

func TestGetContent_NoFallbackOnServerError(t *testing.T) {
	calls := 0
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := s.GetContent(context.Background(), "84")
	if !errors.Is(err, domain.ErrContentUnavailable) {
		t.Errorf("expected ErrContentUnavailable, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single request, got %d", calls)
	}
}

func TestGetContent_TooShort(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tiny"))
	})

	if _, err := s.GetContent(context.Background(), "84"); !errors.Is(err, domain.ErrContentUnavailable) {
		t.Errorf("expected ErrContentUnavailable, got %v", err)
	}
}

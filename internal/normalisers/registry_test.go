package normalisers

import (
	"testing"

	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

type stubNormaliser struct {
	name     string
	types    []string
	priority int
}

func (m *stubNormaliser) Normalise(content string, mimeType string) string {
	return content + "-" + m.name
}

func (m *stubNormaliser) SupportedTypes() []string {
	return m.types
}

func (m *stubNormaliser) Priority() int {
	return m.priority
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{name: "test", types: []string{"text/plain"}, priority: 50})

	if r.Get("text/plain") == nil {
		t.Fatal("expected to find normaliser")
	}
	if r.Get("application/json") != nil {
		t.Error("expected nil for unregistered type")
	}
}

func TestRegistry_Get_PrioritySelection(t *testing.T) {
	r := NewRegistry()

	r.Register(&stubNormaliser{name: "low", types: []string{"text/plain"}, priority: 10})
	r.Register(&stubNormaliser{name: "high", types: []string{"text/plain"}, priority: 90})
	r.Register(&stubNormaliser{name: "medium", types: []string{"text/plain"}, priority: 50})

	n := r.Get("text/plain")
	if n == nil {
		t.Fatal("expected to find normaliser")
	}
	if result := n.Normalise("test", "text/plain"); result != "test-high" {
		t.Errorf("expected high priority normaliser, got %s", result)
	}
}

func TestRegistry_GetAll_StableOnTies(t *testing.T) {
	r := NewRegistry()

	r.Register(&stubNormaliser{name: "first", types: []string{"text/plain"}, priority: 50})
	r.Register(&stubNormaliser{name: "second", types: []string{"text/plain"}, priority: 50})
	r.Register(&stubNormaliser{name: "html", types: []string{"text/html"}, priority: 60})

	all := r.GetAll("text/plain")
	if len(all) != 2 {
		t.Fatalf("expected 2 normalisers, got %d", len(all))
	}
	if got := all[0].Normalise("x", ""); got != "x-first" {
		t.Errorf("expected registration order on ties, got %s", got)
	}
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()

	r.Register(&stubNormaliser{name: "n1", types: []string{"text/plain", "text/csv"}, priority: 50})
	r.Register(&stubNormaliser{name: "n2", types: []string{"text/html"}, priority: 50})

	types := r.List()
	expected := []string{"text/csv", "text/html", "text/plain"}
	if len(types) != len(expected) {
		t.Fatalf("expected %d types, got %d", len(expected), len(types))
	}
	for i, exp := range expected {
		if types[i] != exp {
			t.Errorf("expected type %s at index %d, got %s", exp, i, types[i])
		}
	}
}

func TestMatchesMIMEType(t *testing.T) {
	tests := []struct {
		name      string
		supported []string
		mimeType  string
		expected  bool
	}{
		{"exact match", []string{"text/plain"}, "text/plain", true},
		{"case insensitive", []string{"TEXT/PLAIN"}, "text/plain", true},
		{"with charset", []string{"text/plain"}, "text/plain; charset=utf-8", true},
		{"wildcard subtype", []string{"text/*"}, "text/html", true},
		{"wildcard no match", []string{"text/*"}, "application/json", false},
		{"universal wildcard", []string{"*/*"}, "anything/here", true},
		{"no match", []string{"text/plain"}, "text/html", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesMIMEType(tt.supported, tt.mimeType); got != tt.expected {
				t.Errorf("matchesMIMEType(%v, %s) = %v, want %v", tt.supported, tt.mimeType, got, tt.expected)
			}
		})
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	if _, ok := r.Get(MIMEBookText).(*GutenbergNormaliser); !ok {
		t.Errorf("expected book text normaliser for %s, got %T", MIMEBookText, r.Get(MIMEBookText))
	}
	if _, ok := r.Get(MIMEDescription).(*HTMLNormaliser); !ok {
		t.Errorf("expected HTML normaliser for %s, got %T", MIMEDescription, r.Get(MIMEDescription))
	}
	if _, ok := r.Get("application/pdf").(*PlaintextNormaliser); !ok {
		t.Errorf("expected plaintext fallback, got %T", r.Get("application/pdf"))
	}
}

func TestNormalise(t *testing.T) {
	r := NewRegistry()
	if got := Normalise(r, "raw", "text/plain"); got != "raw" {
		t.Errorf("expected passthrough with no normaliser, got %q", got)
	}
	if got := Normalise(nil, "raw", "text/plain"); got != "raw" {
		t.Errorf("expected passthrough with nil registry, got %q", got)
	}

	r.Register(&stubNormaliser{name: "n", types: []string{"text/plain"}, priority: 1})
	if got := Normalise(r, "raw", "text/plain"); got != "raw-n" {
		t.Errorf("expected normalised text, got %q", got)
	}
}

func TestPlaintextNormaliser(t *testing.T) {
	n := &PlaintextNormaliser{}
	if got := n.Normalise("  a\r\nb\rc  ", "text/plain"); got != "a\nb\nc" {
		t.Errorf("unexpected result %q", got)
	}
	if n.Priority() != 1 {
		t.Errorf("expected fallback priority 1, got %d", n.Priority())
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.NormaliserRegistry = (*Registry)(nil)
	var _ driven.Normaliser = (*PlaintextNormaliser)(nil)
	var _ driven.Normaliser = (*HTMLNormaliser)(nil)
	var _ driven.Normaliser = (*GutenbergNormaliser)(nil)
}

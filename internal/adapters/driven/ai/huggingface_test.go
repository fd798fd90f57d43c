package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/custodia-labs/lectern/internal/adapters/driven/transport"
	"github.com/custodia-labs/lectern/internal/core/domain"
)

type hfRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters"`
}

type hfServer struct {
	mu       sync.Mutex
	requests []hfRequest
	paths    []string
	auth     []string
}

func (s *hfServer) record(r *http.Request) hfRequest {
	var req hfRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	s.paths = append(s.paths, r.URL.Path)
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	return req
}

func newHFBackend(t *testing.T, handler func(s *hfServer, w http.ResponseWriter, r *http.Request)) (*HuggingFace, *hfServer) {
	t.Helper()
	state := &hfServer{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(state, w, r)
	}))
	t.Cleanup(srv.Close)

	hf, err := NewHuggingFace(HuggingFaceConfig{
		APIKey:        "hf_test",
		BaseURL:       srv.URL,
		Inference:     srv.Client(),
		Summarization: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewHuggingFace: %v", err)
	}
	return hf, state
}

func TestNewHuggingFace_RequiresKey(t *testing.T) {
	if _, err := NewHuggingFace(HuggingFaceConfig{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestHuggingFace_Defaults(t *testing.T) {
	hf, err := NewHuggingFace(HuggingFaceConfig{APIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hf.Model() != "facebook/bart-large-cnn" {
		t.Errorf("unexpected summary model %s", hf.Model())
	}
	if hf.textModel != "mistralai/Mistral-7B-Instruct-v0.2" {
		t.Errorf("unexpected text model %s", hf.textModel)
	}
	if hf.baseURL != DefaultHuggingFaceBaseURL {
		t.Errorf("unexpected base url %s", hf.baseURL)
	}
}

func TestHuggingFace_Summarize(t *testing.T) {
	summary := "The creature learns language by watching a family and asks its maker for a companion."
	hf, state := newHFBackend(t, func(s *hfServer, w http.ResponseWriter, r *http.Request) {
		s.record(r)
		_ = json.NewEncoder(w).Encode([]map[string]string{{"summary_text": "  " + summary + "  "}})
	})

	got, err := hf.Summarize(context.Background(), "long text", 800, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != summary {
		t.Errorf("expected trimmed summary, got %q", got)
	}

	if state.paths[0] != "/models/facebook/bart-large-cnn" {
		t.Errorf("unexpected path %s", state.paths[0])
	}
	if state.auth[0] != "Bearer hf_test" {
		t.Errorf("unexpected auth header %s", state.auth[0])
	}

	params := state.requests[0].Parameters
	if params["max_length"] != float64(800) || params["min_length"] != float64(200) {
		t.Errorf("unexpected length params %v", params)
	}
	if params["num_beams"] != float64(4) || params["no_repeat_ngram_size"] != float64(3) || params["length_penalty"] != 2.0 {
		t.Errorf("unexpected beam params %v", params)
	}
	if params["do_sample"] != false || params["early_stopping"] != true {
		t.Errorf("unexpected sampling params %v", params)
	}
}

func TestHuggingFace_SummarizeRejectsShortOutput(t *testing.T) {
	hf, _ := newHFBackend(t, func(s *hfServer, w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"summary_text":"Too short."}]`))
	})

	if _, err := hf.Summarize(context.Background(), "text", 100, 10); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestHuggingFace_SummarizeHTTPError(t *testing.T) {
	hf, _ := newHFBackend(t, func(s *hfServer, w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad token"}`))
	})

	_, err := hf.Summarize(context.Background(), "text", 100, 10)
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad token") {
		t.Errorf("expected error detail in message, got %v", err)
	}
}

func TestHuggingFace_GenerateTextStripsPromptEcho(t *testing.T) {
	hf, state := newHFBackend(t, func(s *hfServer, w http.ResponseWriter, r *http.Request) {
		req := s.record(r)
		_ = json.NewEncoder(w).Encode([]map[string]string{{"generated_text": req.Inputs + "\n {\"genre\":\"horror\"}"}})
	})

	got, err := hf.GenerateText(context.Background(), "Extract terms:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"genre":"horror"}` {
		t.Errorf("expected echo stripped, got %q", got)
	}

	if state.paths[0] != "/models/mistralai/Mistral-7B-Instruct-v0.2" {
		t.Errorf("unexpected path %s", state.paths[0])
	}
	params := state.requests[0].Parameters
	if params["max_new_tokens"] != float64(1000) || params["temperature"] != 0.3 || params["do_sample"] != true {
		t.Errorf("unexpected primary params %v", params)
	}
}

func TestHuggingFace_GenerateTextFallsBackToSimpleParams(t *testing.T) {
	hf, state := newHFBackend(t, func(s *hfServer, w http.ResponseWriter, r *http.Request) {
		req := s.record(r)
		if req.Parameters["do_sample"] == true {
			_, _ = w.Write([]byte(`[{"generated_text":"   "}]`))
			return
		}
		_, _ = w.Write([]byte(`[{"generated_text":"answer"}]`))
	})

	got, err := hf.GenerateText(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "answer" {
		t.Errorf("expected fallback answer, got %q", got)
	}
	if len(state.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(state.requests))
	}
	params := state.requests[1].Parameters
	if params["max_new_tokens"] != float64(500) || params["temperature"] != 0.1 || params["do_sample"] != false {
		t.Errorf("unexpected fallback params %v", params)
	}
}

func TestHuggingFace_Ping(t *testing.T) {
	hf, _ := newHFBackend(t, func(s *hfServer, w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	})
	if err := hf.Ping(context.Background()); err != nil {
		t.Errorf("unexpected ping error: %v", err)
	}

	denied, _ := newHFBackend(t, func(s *hfServer, w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	if err := denied.Ping(context.Background()); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestHuggingFacePolicy(t *testing.T) {
	p := huggingFacePolicy(transport.InferencePolicy)
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusNotFound, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusTooManyRequests, true},
		{http.StatusUnauthorized, false},
		{http.StatusForbidden, false},
		{http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		if got := p.Retryable(tt.status, nil); got != tt.want {
			t.Errorf("status %d: retryable = %v, want %v", tt.status, got, tt.want)
		}
	}
}

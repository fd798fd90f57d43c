package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond}
}

func statusServer(t *testing.T, statuses ...int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		idx := int(n) - 1
		if idx >= len(statuses) {
			idx = len(statuses) - 1
		}
		w.WriteHeader(statuses[idx])
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClient_RetriesServerErrors(t *testing.T) {
	srv, calls := statusServer(t, http.StatusBadGateway, http.StatusOK)
	c := NewClient(Config{Policy: fastPolicy(2)})

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Errorf("expected 2 calls, got %d", got)
	}
}

func TestClient_ReturnsLastResponseWhenExhausted(t *testing.T) {
	srv, calls := statusServer(t, http.StatusTooManyRequests)
	c := NewClient(Config{Policy: fastPolicy(3)})

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(calls); got != 3 {
		t.Errorf("expected 3 calls, got %d", got)
	}
}

func TestClient_DoesNotRetryFinalStatuses(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusBadRequest} {
		srv, calls := statusServer(t, status)
		c := NewClient(Config{Policy: fastPolicy(3)})

		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		resp, err := c.Do(req)
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		resp.Body.Close()

		if got := atomic.LoadInt32(calls); got != 1 {
			t.Errorf("status %d: expected 1 call, got %d", status, got)
		}
	}
}

func TestClient_ReplaysRequestBody(t *testing.T) {
	var bodies []string
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Config{Policy: fastPolicy(2)})
	req, _ := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{"inputs":"x"}`))
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if len(bodies) != 2 || bodies[0] != bodies[1] || bodies[1] != `{"inputs":"x"}` {
		t.Errorf("expected identical bodies on both attempts, got %q", bodies)
	}
}

func TestClient_SetsUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c := NewClient(Config{UserAgent: "lectern-test"})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if ua != "lectern-test" {
		t.Errorf("expected user agent lectern-test, got %q", ua)
	}
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	srv, _ := statusServer(t, http.StatusInternalServerError)
	c := NewClient(Config{Policy: RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour}})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	start := time.Now()
	_, err := c.Do(req)
	if err == nil {
		t.Fatal("expected error after context deadline")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("backoff ignored context cancellation")
	}
}

func TestClient_TransportErrorExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Config{Policy: fastPolicy(2)})
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	if _, err := c.Do(req); err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestDefaultRetryable(t *testing.T) {
	tests := []struct {
		status int
		err    error
		want   bool
	}{
		{http.StatusOK, nil, false},
		{http.StatusTooManyRequests, nil, true},
		{http.StatusInternalServerError, nil, true},
		{http.StatusServiceUnavailable, nil, true},
		{http.StatusUnauthorized, nil, false},
		{http.StatusForbidden, nil, false},
		{http.StatusNotFound, nil, false},
		{0, io.ErrUnexpectedEOF, true},
		{0, context.Canceled, false},
		{0, context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		if got := DefaultRetryable(tt.status, tt.err); got != tt.want {
			t.Errorf("DefaultRetryable(%d, %v) = %v, want %v", tt.status, tt.err, got, tt.want)
		}
	}
}

func TestPolicies(t *testing.T) {
	if CatalogPolicy.MaxAttempts != 2 || CatalogPolicy.BaseDelay != 500*time.Millisecond {
		t.Errorf("unexpected catalog policy %+v", CatalogPolicy)
	}
	if InferencePolicy.MaxAttempts != 3 || InferencePolicy.BaseDelay != time.Second {
		t.Errorf("unexpected inference policy %+v", InferencePolicy)
	}
	if SummarizationPolicy.MaxAttempts != 2 || SummarizationPolicy.BaseDelay != 3*time.Second {
		t.Errorf("unexpected summarization policy %+v", SummarizationPolicy)
	}
	if (RetryPolicy{}).attempts() != 1 {
		t.Error("zero policy should try once")
	}
}

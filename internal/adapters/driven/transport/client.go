package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Doer = (*Client)(nil)

// DefaultUserAgent identifies outbound requests
const DefaultUserAgent = "Lectern/1.0 (+https://github.com/custodia-labs/lectern)"

// RetryPolicy decides how many times a request is tried and how long to wait
// between tries. The wait before attempt n (1-based retries) is BaseDelay*n.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// Retryable reports whether a response status or transport error
	// should be retried. nil uses DefaultRetryable.
	Retryable func(status int, err error) bool
}

// DefaultRetryable retries transport errors, 429 and 5xx. Context
// cancellation, 401, 403 and 404 are final.
func DefaultRetryable(status int, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	case http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

// Policies used by the catalog and backend adapters
var (
	CatalogPolicy       = RetryPolicy{MaxAttempts: 2, BaseDelay: 500 * time.Millisecond}
	InferencePolicy     = RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
	SummarizationPolicy = RetryPolicy{MaxAttempts: 2, BaseDelay: 3 * time.Second}
	NoRetryPolicy       = RetryPolicy{MaxAttempts: 1}
)

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) retryable(status int, err error) bool {
	if p.Retryable != nil {
		return p.Retryable(status, err)
	}
	return DefaultRetryable(status, err)
}

// Config holds configuration for the transport client.
type Config struct {
	Policy    RetryPolicy
	Timeout   time.Duration
	UserAgent string

	// RatePerSecond limits outbound requests; zero disables limiting
	RatePerSecond float64

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements driven.Doer over net/http with retries and rate limiting.
type Client struct {
	httpClient *http.Client
	policy     RetryPolicy
	limiter    *rate.Limiter
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a new transport client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &Client{
		httpClient: httpClient,
		policy:     cfg.Policy,
		limiter:    limiter,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Do sends req, retrying under the client's policy. On a retryable status
// that persists past the last attempt the final response is returned so
// the caller can map its status.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	attempts := c.policy.attempts()
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.policy.BaseDelay * time.Duration(attempt)):
			}

			next, err := rewind(req)
			if err != nil {
				return nil, err
			}
			req = next
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if !c.policy.retryable(0, err) {
				return nil, err
			}
			c.logger.Debug("request failed, retrying",
				"url", req.URL.Redacted(), "attempt", attempt+1, "error", err)
			continue
		}

		if !c.policy.retryable(resp.StatusCode, nil) || attempt == attempts-1 {
			return resp, nil
		}

		c.logger.Debug("retryable status, retrying",
			"url", req.URL.Redacted(), "attempt", attempt+1, "status", resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	return nil, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// rewind returns a copy of req with a fresh body for another attempt.
func rewind(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewind body: %w", err)
	}
	next := req.Clone(req.Context())
	next.Body = body
	return next, nil
}

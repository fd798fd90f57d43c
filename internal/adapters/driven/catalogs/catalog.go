// Package catalogs holds the request helpers shared by the book catalog
// adapters in its subpackages.
package catalogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// MinContentBytes is the smallest body accepted as a book's full text.
const MinContentBytes = 1000

// maxTextBytes caps full-text downloads.
const maxTextBytes = 20 << 20

// GetJSON fetches url and decodes a JSON body into v.
// Returns false, nil when the catalog answers 404.
func GetJSON(ctx context.Context, doer driven.Doer, url string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("%w: build request: %v", domain.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doer.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("%w: decode response: %v", domain.ErrSourceUnavailable, err)
	}
	return true, nil
}

// GetText downloads a plain text body. It returns the response status so
// callers can choose a fallback on 404.
func GetText(ctx context.Context, doer driven.Doer, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("%w: build request: %v", domain.ErrContentUnavailable, err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := doer.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", domain.ErrContentUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", resp.StatusCode, fmt.Errorf("%w: status %d", domain.ErrContentUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTextBytes))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("%w: read body: %v", domain.ErrContentUnavailable, err)
	}
	if len(body) < MinContentBytes {
		return "", resp.StatusCode, fmt.Errorf("%w: body of %d bytes is too short", domain.ErrContentUnavailable, len(body))
	}
	return string(body), resp.StatusCode, nil
}
